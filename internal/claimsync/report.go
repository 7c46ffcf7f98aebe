package claimsync

// Status classifies the outcome of one record's sync.
type Status string

const (
	// StatusUpdated: the cached role differed and was rewritten.
	StatusUpdated Status = "updated"

	// StatusUnchanged: the cached role already matched; nothing written.
	StatusUnchanged Status = "unchanged"

	// StatusSkipped: the profile carries no role; nothing to propagate.
	StatusSkipped Status = "skipped"

	// StatusError: the record's read-modify-write failed upstream.
	StatusError Status = "error"
)

// Result is the outcome of syncing a single user record.
type Result struct {
	ID      string `json:"id"`
	Status  Status `json:"status"`
	OldRole string `json:"old_role,omitempty"`
	NewRole string `json:"new_role,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Report summarizes a bulk sync. It is assembled only after every
// per-record operation has settled; a partial report is never returned.
type Report struct {
	Total     int      `json:"total"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
	Details   []Result `json:"details"`
}

// buildReport folds settled per-record results into a report.
func buildReport(results []Result) *Report {
	report := &Report{
		Total:   len(results),
		Errors:  []string{},
		Details: results,
	}

	for _, r := range results {
		switch r.Status {
		case StatusUpdated:
			report.Updated++
		case StatusUnchanged:
			report.Unchanged++
		case StatusSkipped:
			report.Skipped++
		case StatusError:
			report.Errors = append(report.Errors, r.ID+": "+r.Detail)
		}
	}

	return report
}
