package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"batteryhub/backend/services/battery-service/internal/models"
)

// MemoryBatteryRepository keeps batteries in process memory. It backs local runs and
// tests; data is lost on restart.
type MemoryBatteryRepository struct {
	mu        sync.RWMutex
	batteries []models.StoredBattery // insertion order
}

// NewMemoryBatteryRepository returns an empty repository.
func NewMemoryBatteryRepository() *MemoryBatteryRepository {
	return &MemoryBatteryRepository{}
}

// EnsureSchema is a no-op for the in-memory store.
func (r *MemoryBatteryRepository) EnsureSchema(ctx context.Context) error {
	return ctx.Err()
}

// InsertMany assigns uuid ids and appends the batteries atomically.
func (r *MemoryBatteryRepository) InsertMany(ctx context.Context, batteries []models.StoredBattery) ([]models.StoredBattery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.StoredBattery, len(batteries))
	for i, b := range batteries {
		b.ID = uuid.NewString()
		out[i] = b
	}

	r.mu.Lock()
	r.batteries = append(r.batteries, out...)
	r.mu.Unlock()

	return out, nil
}

// FindInPostcodeRange returns matches ordered by lowercase name; ties keep insertion order.
func (r *MemoryBatteryRepository) FindInPostcodeRange(ctx context.Context, postcode1, postcode2 string, skip, limit int) ([]models.StoredBattery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := r.inRange(postcode1, postcode2)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].LowercaseName() < matches[j].LowercaseName()
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= len(matches) {
		return []models.StoredBattery{}, nil
	}
	matches = matches[skip:]
	if limit >= 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

// StatisticsInPostcodeRange sums capacity over the range; nil when nothing matches.
func (r *MemoryBatteryRepository) StatisticsInPostcodeRange(ctx context.Context, postcode1, postcode2 string) (*models.BatteryStatistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := r.inRange(postcode1, postcode2)
	if len(matches) == 0 {
		return nil, nil
	}
	stats := &models.BatteryStatistics{BatteryCount: int64(len(matches))}
	for _, b := range matches {
		stats.TotalWattCapacity += b.WattCapacity
	}
	return stats, nil
}

// DeleteAll removes every battery.
func (r *MemoryBatteryRepository) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.batteries = nil
	r.mu.Unlock()
	return nil
}

func (r *MemoryBatteryRepository) inRange(postcode1, postcode2 string) []models.StoredBattery {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.StoredBattery
	for _, b := range r.batteries {
		if b.Postcode >= postcode1 && b.Postcode <= postcode2 {
			out = append(out, b)
		}
	}
	return out
}
