// Package arxiv resolves paper source URLs to bibliographic metadata. arXiv
// links get scraped from the abstract page; other URLs fall back to the
// page title or filename.
package arxiv
