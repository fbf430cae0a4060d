package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"batteryhub/backend/services/battery-service/internal/models"
)

// runRepositoryContract exercises behaviour every backend must share. newRepo must
// return an empty, schema-ready repository owned by the calling test.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) BatteryRepository) {
	t.Helper()

	t.Run("InsertManyAssignsIDsInOrder", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		in := []models.StoredBattery{
			{Name: "Alpha", Postcode: "6000", WattCapacity: 1},
			{Name: "Beta", Postcode: "6001", WattCapacity: 2},
			{Name: "Gamma", Postcode: "6002", WattCapacity: 3},
		}
		out, err := repo.InsertMany(ctx, in)
		require.NoError(t, err)
		require.Len(t, out, len(in))

		seen := map[string]bool{}
		for i, b := range out {
			assert.NotEmpty(t, b.ID)
			assert.False(t, seen[b.ID], "duplicate id %s", b.ID)
			seen[b.ID] = true
			assert.Equal(t, in[i].Name, b.Name)
			assert.Equal(t, in[i].Postcode, b.Postcode)
			assert.Equal(t, in[i].WattCapacity, b.WattCapacity)
		}
	})

	t.Run("FindOrdersByNameIgnoringCase", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		names := []string{"Bca", "Def", "xac", "Pqr", "acb", "aac"}
		var in []models.StoredBattery
		for i, name := range names {
			in = append(in, models.StoredBattery{Name: name, Postcode: fmt.Sprintf("%d", 2000+i), WattCapacity: 10})
		}
		_, err := repo.InsertMany(ctx, in)
		require.NoError(t, err)

		got, err := repo.FindInPostcodeRange(ctx, "2000", "2004", 0, 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"acb", "Bca", "Def"}, batteryNames(got))
		assert.Equal(t, "2004", got[0].Postcode)

		all, err := repo.FindInPostcodeRange(ctx, "2000", "2004", 0, 50)
		require.NoError(t, err)
		assert.Equal(t, []string{"acb", "Bca", "Def", "Pqr", "xac"}, batteryNames(all))

		page, err := repo.FindInPostcodeRange(ctx, "2000", "2004", 3, 50)
		require.NoError(t, err)
		assert.Equal(t, []string{"Pqr", "xac"}, batteryNames(page))
	})

	t.Run("RangeIsInclusiveAndLexicographic", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.InsertMany(ctx, []models.StoredBattery{
			{Name: "low", Postcode: "1999", WattCapacity: 1},
			{Name: "start", Postcode: "2000", WattCapacity: 1},
			{Name: "end", Postcode: "3000", WattCapacity: 1},
			{Name: "short", Postcode: "25", WattCapacity: 1},
			{Name: "high", Postcode: "3001", WattCapacity: 1},
		})
		require.NoError(t, err)

		got, err := repo.FindInPostcodeRange(ctx, "2000", "3000", 0, 50)
		require.NoError(t, err)
		// "25" sorts between "2000" and "3000" as a string.
		assert.ElementsMatch(t, []string{"start", "end", "short"}, batteryNames(got))
	})

	t.Run("StatisticsCoverWholeRange", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var in []models.StoredBattery
		for i := 0; i < 6; i++ {
			in = append(in, models.StoredBattery{Name: fmt.Sprintf("b%d", i), Postcode: fmt.Sprintf("%d", 2000+i), WattCapacity: 10})
		}
		_, err := repo.InsertMany(ctx, in)
		require.NoError(t, err)

		stats, err := repo.StatisticsInPostcodeRange(ctx, "2000", "2004")
		require.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, 50.0, stats.TotalWattCapacity)
		assert.Equal(t, int64(5), stats.BatteryCount)
	})

	t.Run("StatisticsAbsentForEmptyRange", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.InsertMany(ctx, []models.StoredBattery{{Name: "x", Postcode: "5000", WattCapacity: 4}})
		require.NoError(t, err)

		stats, err := repo.StatisticsInPostcodeRange(ctx, "1000", "2000")
		require.NoError(t, err)
		assert.Nil(t, stats)

		got, err := repo.FindInPostcodeRange(ctx, "1000", "2000", 0, 50)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("DeleteAll", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.InsertMany(ctx, []models.StoredBattery{{Name: "x", Postcode: "5000", WattCapacity: 4}})
		require.NoError(t, err)
		require.NoError(t, repo.DeleteAll(ctx))

		stats, err := repo.StatisticsInPostcodeRange(ctx, "0", "9")
		require.NoError(t, err)
		assert.Nil(t, stats)
	})
}

func batteryNames(batteries []models.StoredBattery) []string {
	out := make([]string, 0, len(batteries))
	for _, b := range batteries {
		out = append(out, b.Name)
	}
	return out
}
