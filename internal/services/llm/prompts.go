package llm

// TriagePrompt instructs the model to produce the first-pass assessment of
// a paper from its title and abstract.
const TriagePrompt = `You are a research assistant triaging machine learning papers.
Given a paper's title, abstract, and link, respond with a JSON object:
{
  "summary": "two or three sentence plain-language summary",
  "contributions": ["main contribution", ...],
  "limitations": ["notable limitation", ...],
  "relevance": 1-5 integer, 5 meaning directly relevant to LLM systems research,
  "suggested_action": "deep_read" | "skim" | "drop",
  "suggested_tags": ["short-topic-tag", ...]
}
Respond with JSON only. Keep lists to at most five entries.`

// DeepReadPrompt instructs the model to produce the detailed analysis of a
// paper that was selected for a deep read.
const DeepReadPrompt = `You are a research assistant writing a detailed reading report.
Given a paper's title, abstract, triage summary, and link, respond with a JSON object:
{
  "overview": "several paragraphs describing the problem, method, and results",
  "innovations": ["what is genuinely new here", ...],
  "directions": ["follow-up question or research direction", ...]
}
Respond with JSON only.`
