package research

// Request describes a research job to submit.
type Request struct {
	Query     string `json:"query"`
	MaxDepth  int    `json:"maxDepth,omitempty"`
	TimeLimit int    `json:"timeLimit,omitempty"`
	MaxURLs   int    `json:"maxUrls,omitempty"`
}

// Status is the lifecycle state of a research job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the job will not change state again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Source is a URL the research provider visited and cited.
type Source struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Job is the provider-side state of a research job. Analysis and
// Sources are populated only once the job completes.
type Job struct {
	ID       string
	Status   Status
	Analysis string
	Sources  []Source
	Error    string
}

// startResponse is the wire shape of a job submission response.
type startResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// statusResponse is the wire shape of a job status response.
type statusResponse struct {
	Success bool       `json:"success"`
	Status  Status     `json:"status"`
	Data    statusData `json:"data"`
	Error   string     `json:"error"`
}

// statusData carries the synthesized result of a completed job.
type statusData struct {
	FinalAnalysis string   `json:"finalAnalysis"`
	Sources       []Source `json:"sources"`
}
