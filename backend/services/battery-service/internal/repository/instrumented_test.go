package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batteryhub/backend/services/battery-service/internal/models"
)

type failingRepository struct {
	BatteryRepository
	err error
}

func (f failingRepository) FindInPostcodeRange(context.Context, string, string, int, int) ([]models.StoredBattery, error) {
	return nil, f.err
}

func TestInstrumentedRepositoryRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewStorageMetrics(reg)
	ctx := context.Background()

	repo := Instrument(NewMemoryBatteryRepository(), "memory", metrics)
	_, err := repo.InsertMany(ctx, []models.StoredBattery{
		{Name: "a", Postcode: "1", WattCapacity: 1},
		{Name: "b", Postcode: "2", WattCapacity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("memory", "insert_many", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.inserted.WithLabelValues("memory")))

	broken := Instrument(failingRepository{BatteryRepository: NewMemoryBatteryRepository(), err: errors.New("down")}, "memory", metrics)
	_, err = broken.FindInPostcodeRange(ctx, "1", "2", 0, 50)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("memory", "find_in_range", "error")))
}
