package entities

import "time"

// BatchRunModel is a GORM model for batch_runs table
type BatchRunModel struct {
	ID                 string    `gorm:"primaryKey;size:36"`
	StartedAt          time.Time `gorm:"not null;index"`
	FinishedAt         time.Time `gorm:"not null"`
	Total              int       `gorm:"not null;default:0"`
	Active             int       `gorm:"not null;default:0"`
	Restricted         int       `gorm:"not null;default:0"`
	Recovered          int       `gorm:"not null;default:0"`
	PermanentlyBlocked int       `gorm:"not null;default:0"`
	NeedsCode          int       `gorm:"not null;default:0"`
	NeedsTwoFactor     int       `gorm:"not null;default:0"`
	InvalidCode        int       `gorm:"not null;default:0"`
	Errors             int       `gorm:"not null;default:0"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
}

func (BatchRunModel) TableName() string {
	return "batch_runs"
}

// AccountCheckModel is a GORM model for account_checks table
type AccountCheckModel struct {
	ID         uint      `gorm:"primaryKey"`
	BatchID    string    `gorm:"not null;size:36;index"`
	Path       string    `gorm:"not null"`
	Phone      string    `gorm:"size:32;default:''"`
	Status     string    `gorm:"not null;size:32;index"`
	Detail     string    `gorm:"default:''"`
	Attempts   int       `gorm:"not null;default:0"`
	DurationMs int64     `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (AccountCheckModel) TableName() string {
	return "account_checks"
}

// NewBatchRunModel converts a finished report to its DB row
func NewBatchRunModel(report *BatchReport) *BatchRunModel {
	c := report.Counters
	return &BatchRunModel{
		ID:                 report.ID,
		StartedAt:          report.StartedAt,
		FinishedAt:         report.FinishedAt,
		Total:              report.Total(),
		Active:             c[StatusActive],
		Restricted:         c[StatusRestricted],
		Recovered:          c[StatusRecovered],
		PermanentlyBlocked: c[StatusPermanentlyBlocked],
		NeedsCode:          c[StatusNeedsCode],
		NeedsTwoFactor:     c[StatusNeedsTwoFactor],
		InvalidCode:        c[StatusInvalidCode],
		Errors:             c[StatusError],
	}
}

// NewAccountCheckModels converts the per-account results of a report to DB rows
func NewAccountCheckModels(report *BatchReport) []AccountCheckModel {
	models := make([]AccountCheckModel, 0, len(report.Results))
	for _, r := range report.Results {
		models = append(models, AccountCheckModel{
			BatchID:    report.ID,
			Path:       r.Path,
			Phone:      r.Phone,
			Status:     string(r.Status),
			Detail:     r.Detail,
			Attempts:   r.Attempts,
			DurationMs: r.Duration.Milliseconds(),
		})
	}
	return models
}
