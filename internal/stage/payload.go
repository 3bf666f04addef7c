package stage

// DecisionPayload is handed to the caller when a run suspends waiting for a
// human decision. It carries everything a notification surface needs to
// render the decision prompt.
type DecisionPayload struct {
	RunKey        string   `json:"run_key"`
	Title         string   `json:"title"`
	SourceURL     string   `json:"source_url"`
	Summary       string   `json:"summary"`
	Contributions []string `json:"contributions"`
	Limitations   []string `json:"limitations"`
	Relevance     int      `json:"relevance"`
	SuggestedTags []string `json:"suggested_tags"`
	Suggested     string   `json:"suggested_action"`
}

// ResumeInput is the external input injected when a suspended run resumes.
type ResumeInput struct {
	Decision string   `json:"decision"`
	Tags     []string `json:"tags,omitempty"`
	Comment  string   `json:"comment,omitempty"`
}
