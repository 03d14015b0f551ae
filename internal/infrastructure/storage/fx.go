package storage

import (
	"go.uber.org/fx"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
)

// Module provides the record store for fx DI
var Module = fx.Module("storage",
	fx.Provide(
		NewRecordStore,
		func(s *RecordStore) deps.RecordStore {
			return s
		},
	),
)
