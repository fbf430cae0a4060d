package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batteryhub/backend/services/battery-service/internal/models"
)

func TestMemoryBatteryRepository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) BatteryRepository {
		return NewMemoryBatteryRepository()
	})
}

func TestMemoryBatteryRepositoryKeepsInsertionOrderForEqualNames(t *testing.T) {
	repo := NewMemoryBatteryRepository()
	ctx := context.Background()

	out, err := repo.InsertMany(ctx, []models.StoredBattery{
		{Name: "Same", Postcode: "2000", WattCapacity: 1},
		{Name: "same", Postcode: "2001", WattCapacity: 2},
	})
	require.NoError(t, err)

	got, err := repo.FindInPostcodeRange(ctx, "2000", "2001", 0, 50)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, out[0].ID, got[0].ID)
	assert.Equal(t, out[1].ID, got[1].ID)
}

func TestMemoryBatteryRepositoryHonoursCancellation(t *testing.T) {
	repo := NewMemoryBatteryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.InsertMany(ctx, []models.StoredBattery{{Name: "x", Postcode: "1", WattCapacity: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}
