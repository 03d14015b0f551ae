package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

// insertBatchSize bounds the rows per INSERT for account checks
const insertBatchSize = 500

// Repository implements deps.BatchRepository using PostgreSQL
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a batch history repository. A nil db disables storage.
func NewRepository(db *gorm.DB) deps.BatchRepository {
	if db == nil {
		return noopRepository{}
	}
	return &Repository{db: db}
}

// SaveBatch stores the batch summary and its per-account results in one transaction
func (r *Repository) SaveBatch(ctx context.Context, report *entities.BatchReport) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entities.NewBatchRunModel(report)).Error; err != nil {
			return fmt.Errorf("failed to save batch run: %w", err)
		}

		checks := entities.NewAccountCheckModels(report)
		if len(checks) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(checks, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save account checks: %w", err)
		}
		return nil
	})
}

type noopRepository struct{}

func (noopRepository) SaveBatch(context.Context, *entities.BatchReport) error {
	return nil
}
