package domain

// SubmissionState is the lifecycle of one suggestion submission.
type SubmissionState string

const (
	SubmissionIdle    SubmissionState = "idle"
	SubmissionPending SubmissionState = "pending"
	SubmissionSuccess SubmissionState = "success"
	SubmissionError   SubmissionState = "error"
)

// Suggestion carries the fields collected by the suggest-a-shop form.
// Name, City, and Address are required; Tags follow the multi-cardinality
// toggle (a true set, any number active at once).
type Suggestion struct {
	Name    string   `json:"name"`
	City    string   `json:"city"`
	Address string   `json:"address"`
	Tags    []string `json:"tags"`
	Note    string   `json:"note"`
}
