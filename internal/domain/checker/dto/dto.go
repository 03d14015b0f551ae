package dto

import (
	"time"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// CreateBatchRequest is the body of POST /api/v1/batches.
// Paths takes precedence over Dir.
type CreateBatchRequest struct {
	Paths []string `json:"paths,omitempty"`
	Dir   string   `json:"dir,omitempty"`
}

// CreateBatchResponse is returned when a batch is accepted
type CreateBatchResponse struct {
	BatchID string `json:"batch_id"`
	Total   int    `json:"total"`
}

// AccountResultResponse is one account line of a batch report
type AccountResultResponse struct {
	Path       string `json:"path"`
	Phone      string `json:"phone"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	Attempts   int    `json:"attempts"`
	DurationMs int64  `json:"duration_ms"`
}

// BatchResponse is the body of GET /api/v1/batches/{id}
type BatchResponse struct {
	BatchID    string                  `json:"batch_id"`
	State      string                  `json:"state"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt *time.Time              `json:"finished_at,omitempty"`
	Total      int                     `json:"total"`
	Counters   map[string]int          `json:"counters"`
	Accounts   []AccountResultResponse `json:"accounts"`
}

// NewBatchResponse converts a report to its API representation
func NewBatchResponse(report *entities.BatchReport) BatchResponse {
	resp := BatchResponse{
		BatchID:   report.ID,
		State:     string(report.State),
		StartedAt: report.StartedAt,
		Total:     report.Total(),
		Counters:  make(map[string]int, len(entities.Statuses)),
		Accounts:  make([]AccountResultResponse, 0, len(report.Results)),
	}
	if !report.FinishedAt.IsZero() {
		finished := report.FinishedAt
		resp.FinishedAt = &finished
	}

	for _, status := range entities.Statuses {
		resp.Counters[string(status)] = report.Counters[status]
	}

	for _, r := range report.Results {
		resp.Accounts = append(resp.Accounts, AccountResultResponse{
			Path:       r.Path,
			Phone:      r.Phone,
			Status:     string(r.Status),
			Detail:     r.Detail,
			Attempts:   r.Attempts,
			DurationMs: r.Duration.Milliseconds(),
		})
	}

	return resp
}
