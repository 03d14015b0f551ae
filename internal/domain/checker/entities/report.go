package entities

import "time"

// BatchState is the lifecycle state of a batch run
type BatchState string

const (
	BatchStateRunning   BatchState = "running"
	BatchStateCompleted BatchState = "completed"
)

// AccountResult is the per-account line of a batch report
type AccountResult struct {
	Path     string
	Phone    string // masked
	Status   Status
	Detail   string
	Attempts int
	Duration time.Duration
}

// BatchReport summarizes one batch run
type BatchReport struct {
	ID         string
	State      BatchState
	StartedAt  time.Time
	FinishedAt time.Time
	Counters   map[Status]int
	Results    []AccountResult
}

// Total returns the number of accounts accounted for in the report
func (r *BatchReport) Total() int {
	total := 0
	for _, n := range r.Counters {
		total += n
	}
	return total
}
