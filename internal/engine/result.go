package engine

import "plbatch/internal/enumerate"

// Status is a run's terminal aggregate status.
type Status string

const (
	StatusAllSucceeded   Status = "all-succeeded"
	StatusPartialFailure Status = "partial-failure"
)

// RunResult aggregates one driver run. Failed preserves sequence order so a
// retry pass can re-enumerate exactly the failed keys.
type RunResult struct {
	RunID     string
	Status    Status
	Attempted int
	Skipped   int
	Succeeded int
	Failed    []enumerate.UnitKey
}

func (r *RunResult) merge(other *RunResult) {
	if other == nil {
		return
	}
	r.Attempted += other.Attempted
	r.Skipped += other.Skipped
	r.Succeeded += other.Succeeded
	r.Failed = append(r.Failed, other.Failed...)
	if other.Status == StatusPartialFailure {
		r.Status = StatusPartialFailure
	}
}
