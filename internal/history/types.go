// Package history records coding standard runs in a local SQLite database,
// so standards created by earlier runs can be found again.
package history

import "time"

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one recorded create run.
type Run struct {
	ID            int64         `json:"id"`
	RunID         string        `json:"run_id"`
	StandardID    int64         `json:"standard_id,omitempty"`
	Name          string        `json:"name"`
	Organization  string        `json:"organization"`
	Provider      string        `json:"provider"`
	Source        string        `json:"source"`
	PatternsCount int           `json:"patterns_count"`
	Enabled       int           `json:"enabled"`
	Disabled      int           `json:"disabled"`
	Unmatched     int           `json:"unmatched"`
	Promoted      bool          `json:"promoted"`
	Status        string        `json:"status"`
	Error         string        `json:"error,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	Duration      time.Duration `json:"duration"`
}

// Query filters runs. Zero values match everything.
type Query struct {
	Organization string
	Status       string
	Since        time.Time
	Limit        int
}

// Stats aggregates the recorded runs of an organization.
type Stats struct {
	Total          int64     `json:"total"`
	Succeeded      int64     `json:"succeeded"`
	Failed         int64     `json:"failed"`
	LastRunAt      time.Time `json:"last_run_at,omitempty"`
	LastStandardID int64     `json:"last_standard_id,omitempty"`
}
