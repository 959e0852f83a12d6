package model

import "time"

// Outcome is the terminal state of one organized file.
type Outcome int

const (
	// OutcomeMoved means the file was copied or moved into the output tree.
	OutcomeMoved Outcome = iota

	// OutcomeSkipped means the file lacked metadata and the policy is skip.
	OutcomeSkipped

	// OutcomeDuplicate means the file's identity was already placed.
	OutcomeDuplicate

	// OutcomeFailed means the transfer failed.
	OutcomeFailed
)

// String returns the lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OrganizeResult aggregates the outcomes of one run.
//
// Each file contributes to exactly one counter, so Total equals the number
// of files handed to the organizer.
type OrganizeResult struct {
	Moved      int
	Skipped    int
	Failed     int
	Duplicates int

	// Duration is the wall time spent organizing.
	Duration time.Duration
}

// Add increments the counter that matches the outcome.
func (r *OrganizeResult) Add(o Outcome) {
	switch o {
	case OutcomeMoved:
		r.Moved++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeDuplicate:
		r.Duplicates++
	case OutcomeFailed:
		r.Failed++
	}
}

// Total returns the number of files accounted for.
func (r OrganizeResult) Total() int {
	return r.Moved + r.Skipped + r.Failed + r.Duplicates
}
