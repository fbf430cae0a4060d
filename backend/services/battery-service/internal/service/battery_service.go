package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"batteryhub/backend/services/battery-service/internal/models"
)

const (
	invalidateTimeout  = 2 * time.Second
	invalidateAttempts = 3
)

const (
	// BatchSize is the maximum number of batteries persisted per storage call.
	BatchSize = 300
	// MaxResultCount caps the battery names returned by a range query.
	MaxResultCount = 50
)

// BatteryRepository is the storage contract used by the service.
type BatteryRepository interface {
	// InsertMany persists batteries and returns them with ids assigned, in input order.
	InsertMany(ctx context.Context, batteries []models.StoredBattery) ([]models.StoredBattery, error)
	// FindInPostcodeRange returns batteries with postcode in [postcode1, postcode2],
	// ordered by lowercase name.
	FindInPostcodeRange(ctx context.Context, postcode1, postcode2 string, skip, limit int) ([]models.StoredBattery, error)
	// StatisticsInPostcodeRange returns nil when no battery lies in the range.
	StatisticsInPostcodeRange(ctx context.Context, postcode1, postcode2 string) (*models.BatteryStatistics, error)
}

// RangeCache stores range query results. Lookup returns the cache generation that a
// subsequent Store must use, so results computed before an Invalidate are never served.
type RangeCache interface {
	Lookup(ctx context.Context, postcode1, postcode2 string) (int64, *models.RangeQueryResult, error)
	Store(ctx context.Context, generation int64, postcode1, postcode2 string, result *models.RangeQueryResult) error
	Invalidate(ctx context.Context) error
}

// BatteryService saves batteries in batches and answers postcode range queries.
type BatteryService struct {
	repo   BatteryRepository
	cache  RangeCache
	logger *zap.Logger
}

// NewBatteryService builds the service. cache may be nil.
func NewBatteryService(repo BatteryRepository, cache RangeCache, logger *zap.Logger) *BatteryService {
	return &BatteryService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// SaveBatteries validates records, persists them in chunks of BatchSize and returns the
// saved views in input order. Chunks written before a storage failure stay persisted.
func (s *BatteryService) SaveBatteries(ctx context.Context, records []models.BatteryRecord) ([]models.SavedBatteryView, error) {
	s.logger.Debug("saveBatteries called", zap.Int("records", len(records)))

	if len(records) == 0 {
		return nil, invalidRequest(msgEmptyBatteryList)
	}
	for _, r := range records {
		if !hasRequiredFields(r) {
			return nil, invalidRequest(msgMissingFields)
		}
		if !hasValidText(r) {
			return nil, invalidRequest(msgInvalidText)
		}
	}

	saved := make([]models.SavedBatteryView, 0, len(records))
	defer func() {
		if len(saved) > 0 {
			s.invalidateCache(ctx)
		}
	}()

	for start := 0; start < len(records); start += BatchSize {
		end := min(start+BatchSize, len(records))

		chunk, err := normalizeAll(records[start:end])
		if errors.Is(err, errInvalidText) {
			return nil, invalidRequest(msgInvalidText)
		}
		if err != nil {
			return nil, invalidRequest(msgMissingFields)
		}

		inserted, err := s.repo.InsertMany(ctx, chunk)
		if err == nil && len(inserted) != len(chunk) {
			err = fmt.Errorf("storage returned %d batteries for %d inserted", len(inserted), len(chunk))
		}
		if err != nil {
			s.logger.Error("failed to persist battery chunk",
				zap.Int("chunk_start", start),
				zap.Int("chunk_size", len(chunk)),
				zap.Int("already_saved", len(saved)),
				zap.Error(err),
			)
			return nil, storageFailure(err)
		}

		for _, b := range inserted {
			saved = append(saved, b.View())
		}
		s.logger.Debug("battery chunk persisted", zap.Int("chunk_start", start), zap.Int("chunk_size", len(chunk)))
	}

	return saved, nil
}

// GetBatteries returns up to MaxResultCount battery names in [postcode1, postcode2] ordered
// case-insensitively, together with capacity statistics over the whole range.
func (s *BatteryService) GetBatteries(ctx context.Context, postcode1, postcode2 string) (*models.RangeQueryResult, error) {
	s.logger.Debug("getBatteries called", zap.String("postcode1", postcode1), zap.String("postcode2", postcode2))

	if isBlank(postcode1) || isBlank(postcode2) || !isValidText(postcode1) || !isValidText(postcode2) || postcode1 > postcode2 {
		return nil, invalidRequest(msgInvalidPostcodes)
	}

	generation, cached, cacheable := s.lookupCache(ctx, postcode1, postcode2)
	if cached != nil {
		return cached, nil
	}

	batteries, err := s.repo.FindInPostcodeRange(ctx, postcode1, postcode2, 0, MaxResultCount)
	if err != nil {
		s.logger.Error("failed to find batteries", zap.Error(err))
		return nil, storageFailure(err)
	}
	stats, err := s.repo.StatisticsInPostcodeRange(ctx, postcode1, postcode2)
	if err != nil {
		s.logger.Error("failed to aggregate batteries", zap.Error(err))
		return nil, storageFailure(err)
	}

	result := buildRangeResult(batteries, stats)
	if cacheable {
		s.storeCache(ctx, generation, postcode1, postcode2, result)
	}
	return result, nil
}

func buildRangeResult(batteries []models.StoredBattery, stats *models.BatteryStatistics) *models.RangeQueryResult {
	names := make([]string, 0, len(batteries))
	for _, b := range batteries {
		names = append(names, b.Name)
	}

	result := &models.RangeQueryResult{BatteryNames: names}
	if stats == nil || stats.BatteryCount == 0 {
		return result
	}

	average := roundHalfUp(stats.TotalWattCapacity / float64(stats.BatteryCount))
	result.TotalWattCapacity = stats.TotalWattCapacity
	result.AverageWattCapacity = &average
	return result
}

// roundHalfUp rounds to the nearest integer, ties towards positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// lookupCache reports cacheable=false when the generation could not be read, in which
// case the freshly computed result must not be stored.
func (s *BatteryService) lookupCache(ctx context.Context, postcode1, postcode2 string) (int64, *models.RangeQueryResult, bool) {
	if s.cache == nil {
		return 0, nil, false
	}
	generation, result, err := s.cache.Lookup(ctx, postcode1, postcode2)
	if err != nil {
		s.logger.Warn("range cache lookup failed", zap.Error(err))
		return 0, nil, false
	}
	return generation, result, true
}

func (s *BatteryService) storeCache(ctx context.Context, generation int64, postcode1, postcode2 string, result *models.RangeQueryResult) {
	if err := s.cache.Store(ctx, generation, postcode1, postcode2, result); err != nil {
		s.logger.Warn("range cache store failed", zap.Error(err))
	}
}

// invalidateCache bumps the cache generation even when the request context is already
// cancelled: chunks committed before the cancellation must not be hidden by cached ranges.
func (s *BatteryService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= invalidateAttempts; attempt++ {
		if err = s.cache.Invalidate(ctx); err == nil {
			return
		}
		s.logger.Warn("range cache invalidation failed", zap.Int("attempt", attempt), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	s.logger.Error("range cache left stale until ttl expiry", zap.Error(err))
}
