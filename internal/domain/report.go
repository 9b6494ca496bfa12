package domain

// CandidateError records a per-candidate failure that did not stop the batch.
type CandidateError struct {
	Permalink string `json:"permalink"`
	Reason    string `json:"reason"`
}

// BatchReport summarizes one ingestion run. Lists are keyed by permalink;
// invalid candidates without one fall back to a text snippet.
type BatchReport struct {
	Source     string           `json:"source"`
	Persisted  []string         `json:"persisted"`
	Duplicates []string         `json:"duplicates"`
	Invalid    []string         `json:"invalid"`
	Errors     []CandidateError `json:"errors,omitempty"`
}

// Counts returns the persisted/duplicate/invalid/errored totals.
func (r BatchReport) Counts() (persisted, duplicates, invalid, errored int) {
	return len(r.Persisted), len(r.Duplicates), len(r.Invalid), len(r.Errors)
}

// AllFailed reports whether the run produced nothing but errors. The
// serving layer turns such batches into a server error response.
func (r BatchReport) AllFailed() bool {
	return len(r.Errors) > 0 &&
		len(r.Persisted) == 0 && len(r.Duplicates) == 0 && len(r.Invalid) == 0
}
