package kafka

import (
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// EventTypeBatchCompleted marks a finished account check batch
const EventTypeBatchCompleted = "account_check_completed"

// BatchCompletedEvent is published once per finished batch
type BatchCompletedEvent struct {
	Type       string          `json:"type"`
	BatchID    string          `json:"batch_id"`
	StartedAt  int64           `json:"started_at"`
	FinishedAt int64           `json:"finished_at"`
	Total      int             `json:"total"`
	Counters   map[string]int  `json:"counters"`
	Accounts   []AccountResult `json:"accounts"`
}

// AccountResult is one account line of the event; the phone is always masked
type AccountResult struct {
	Path       string `json:"path"`
	Phone      string `json:"phone"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	Attempts   int    `json:"attempts"`
	DurationMs int64  `json:"duration_ms"`
}

// NewBatchCompletedEvent builds the event for a finished report
func NewBatchCompletedEvent(report *entities.BatchReport) *BatchCompletedEvent {
	counters := make(map[string]int, len(report.Counters))
	for status, n := range report.Counters {
		counters[string(status)] = n
	}

	accounts := make([]AccountResult, 0, len(report.Results))
	for _, r := range report.Results {
		accounts = append(accounts, AccountResult{
			Path:       r.Path,
			Phone:      r.Phone,
			Status:     string(r.Status),
			Detail:     r.Detail,
			Attempts:   r.Attempts,
			DurationMs: r.Duration.Milliseconds(),
		})
	}

	return &BatchCompletedEvent{
		Type:       EventTypeBatchCompleted,
		BatchID:    report.ID,
		StartedAt:  report.StartedAt.Unix(),
		FinishedAt: report.FinishedAt.Unix(),
		Total:      report.Total(),
		Counters:   counters,
		Accounts:   accounts,
	}
}
