package repository

import (
	"context"

	"batteryhub/backend/services/battery-service/internal/models"
)

// BatteryRepository is implemented by every storage backend.
type BatteryRepository interface {
	InsertMany(ctx context.Context, batteries []models.StoredBattery) ([]models.StoredBattery, error)
	FindInPostcodeRange(ctx context.Context, postcode1, postcode2 string, skip, limit int) ([]models.StoredBattery, error)
	StatisticsInPostcodeRange(ctx context.Context, postcode1, postcode2 string) (*models.BatteryStatistics, error)
	// DeleteAll empties the store. Used by tests and maintenance tooling only.
	DeleteAll(ctx context.Context) error
	// EnsureSchema creates the table or collection index on (postcode, lowercase name) if missing.
	EnsureSchema(ctx context.Context) error
}

var (
	_ BatteryRepository = (*MemoryBatteryRepository)(nil)
	_ BatteryRepository = (*PostgresBatteryRepository)(nil)
	_ BatteryRepository = (*MongoBatteryRepository)(nil)
	_ BatteryRepository = (*InstrumentedRepository)(nil)
)
