package arxiv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"paperflow/internal/paper"
)

const defaultHTTPTimeout = 30 * time.Second

var (
	// Matches abs/pdf links and bare identifiers like 2401.12345 or 2401.12345v2.
	arxivIDPattern   = regexp.MustCompile(`(?:arxiv\.org/(?:abs|pdf)/)(\d{4}\.\d{4,5})(v\d+)?`)
	bareIDPattern    = regexp.MustCompile(`^(\d{4}\.\d{4,5})(v\d+)?$`)
	datelinePattern  = regexp.MustCompile(`(\d{4})`)
	whitespaceRunsRE = regexp.MustCompile(`\s+`)
)

// Metadata is the resolved bibliographic record for a paper.
type Metadata struct {
	Title    string
	Authors  []string
	Year     int
	Abstract string
	PDFURL   string
}

// Resolver fetches and parses paper metadata.
type Resolver struct {
	httpClient *http.Client
	baseURL    string
}

// Option customizes the resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithBaseURL overrides the arXiv host (useful for tests).
func WithBaseURL(base string) Option {
	return func(r *Resolver) {
		r.baseURL = strings.TrimRight(base, "/")
	}
}

// NewResolver constructs a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    "https://arxiv.org",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExtractID pulls the arXiv identifier out of a URL or bare identifier string.
func ExtractID(source string) (string, bool) {
	source = strings.TrimSpace(source)
	if m := bareIDPattern.FindStringSubmatch(source); m != nil {
		return m[1], true
	}
	if m := arxivIDPattern.FindStringSubmatch(source); m != nil {
		return m[1], true
	}
	return "", false
}

// DetectKind infers the source kind for callers that do not name one:
// anything carrying an arXiv identifier resolves as arxiv, a .pdf link as
// pdf, and everything else as a generic page.
func DetectKind(sourceURL string) paper.SourceKind {
	if _, ok := ExtractID(sourceURL); ok {
		return paper.SourceArxiv
	}
	trimmed := strings.ToLower(strings.TrimSpace(sourceURL))
	if strings.HasSuffix(trimmed, ".pdf") {
		return paper.SourcePDF
	}
	return paper.SourceURL
}

// Resolve fetches metadata for a source URL according to its kind.
func (r *Resolver) Resolve(ctx context.Context, sourceURL string, kind paper.SourceKind) (Metadata, error) {
	switch kind {
	case paper.SourceArxiv:
		id, ok := ExtractID(sourceURL)
		if !ok {
			return Metadata{}, fmt.Errorf("resolve: no arXiv id in %q", sourceURL)
		}
		return r.resolveArxiv(ctx, id)
	case paper.SourcePDF:
		return metadataFromFilename(sourceURL), nil
	default:
		return r.resolvePage(ctx, sourceURL)
	}
}

func (r *Resolver) resolveArxiv(ctx context.Context, id string) (Metadata, error) {
	absURL := r.baseURL + "/abs/" + id
	doc, err := r.fetchDocument(ctx, absURL)
	if err != nil {
		return Metadata{}, err
	}

	meta := Metadata{
		PDFURL: r.baseURL + "/pdf/" + id,
	}

	title := doc.Find("h1.title").First().Text()
	meta.Title = cleanText(strings.TrimPrefix(strings.TrimSpace(title), "Title:"))
	if meta.Title == "" {
		return Metadata{}, fmt.Errorf("resolve: abstract page for %s has no title", id)
	}

	doc.Find("div.authors a").Each(func(_ int, sel *goquery.Selection) {
		if name := cleanText(sel.Text()); name != "" {
			meta.Authors = append(meta.Authors, name)
		}
	})

	abstract := doc.Find("blockquote.abstract").First().Text()
	meta.Abstract = cleanText(strings.TrimPrefix(strings.TrimSpace(abstract), "Abstract:"))

	dateline := doc.Find("div.dateline").First().Text()
	if m := datelinePattern.FindStringSubmatch(dateline); m != nil {
		if year, err := strconv.Atoi(m[1]); err == nil {
			meta.Year = year
		}
	}
	if meta.Year == 0 && len(id) >= 2 {
		// Identifier prefix encodes YYMM.
		if yy, err := strconv.Atoi(id[:2]); err == nil {
			meta.Year = 2000 + yy
		}
	}

	return meta, nil
}

func (r *Resolver) resolvePage(ctx context.Context, pageURL string) (Metadata, error) {
	doc, err := r.fetchDocument(ctx, pageURL)
	if err != nil {
		return Metadata{}, err
	}
	meta := Metadata{
		Title:  cleanText(doc.Find("title").First().Text()),
		PDFURL: pageURL,
	}
	if meta.Title == "" {
		meta = metadataFromFilename(pageURL)
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		meta.Abstract = cleanText(desc)
	}
	return meta, nil
}

func (r *Resolver) fetchDocument(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve: new request: %w", err)
	}
	req.Header.Set("User-Agent", "paperflow/1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolve: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolve: fetch %s: http %d", target, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("resolve: parse %s: %w", target, err)
	}
	return doc, nil
}

func metadataFromFilename(sourceURL string) Metadata {
	title := sourceURL
	if parsed, err := url.Parse(sourceURL); err == nil && parsed.Path != "" {
		base := path.Base(parsed.Path)
		base = strings.TrimSuffix(base, path.Ext(base))
		base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
		if cleaned := cleanText(base); cleaned != "" {
			title = cleaned
		}
	}
	return Metadata{Title: title, PDFURL: sourceURL}
}

func cleanText(value string) string {
	return strings.TrimSpace(whitespaceRunsRE.ReplaceAllString(value, " "))
}

// HealthCheck verifies the arXiv host is reachable.
func (r *Resolver) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return errors.New("arxiv host unavailable")
	}
	return nil
}
