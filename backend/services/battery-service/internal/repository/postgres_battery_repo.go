package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"batteryhub/backend/services/battery-service/internal/models"
)

// DefaultBatteryTable is the table used by the service in production.
const DefaultBatteryTable = "batteries"

// PostgresBatteryRepository stores batteries in Postgres. Text columns used for range
// filtering and ordering are declared COLLATE "C" so comparisons are byte-lexicographic.
type PostgresBatteryRepository struct {
	pool *pgxpool.Pool

	schemaSQL []string
	insertSQL string
	findSQL   string
	statsSQL  string
	deleteSQL string
}

// NewPostgresBatteryRepository returns a repository over DefaultBatteryTable.
func NewPostgresBatteryRepository(pool *pgxpool.Pool) *PostgresBatteryRepository {
	return NewPostgresBatteryRepositoryWithTable(pool, DefaultBatteryTable)
}

// NewPostgresBatteryRepositoryWithTable returns a repository over the given table.
func NewPostgresBatteryRepositoryWithTable(pool *pgxpool.Pool, table string) *PostgresBatteryRepository {
	t := pgx.Identifier{table}.Sanitize()
	idx := pgx.Identifier{table + "_postcode_name_idx"}.Sanitize()

	return &PostgresBatteryRepository{
		pool: pool,
		schemaSQL: []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name TEXT NOT NULL,
					lowercase_name TEXT COLLATE "C" NOT NULL,
					postcode TEXT COLLATE "C" NOT NULL,
					watt_capacity DOUBLE PRECISION NOT NULL
				)`, t),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (postcode, lowercase_name)`, idx, t),
		},
		insertSQL: fmt.Sprintf(`
			INSERT INTO %s (name, lowercase_name, postcode, watt_capacity)
			VALUES ($1, $2, $3, $4)
			RETURNING id::text`, t),
		findSQL: fmt.Sprintf(`
			SELECT id::text, name, postcode, watt_capacity
			FROM %s
			WHERE postcode >= $1 AND postcode <= $2
			ORDER BY lowercase_name ASC, id ASC
			OFFSET $3
			LIMIT $4`, t),
		statsSQL: fmt.Sprintf(`
			SELECT COALESCE(SUM(watt_capacity), 0), COUNT(*)
			FROM %s
			WHERE postcode >= $1 AND postcode <= $2`, t),
		deleteSQL: fmt.Sprintf(`DELETE FROM %s`, t),
	}
}

// EnsureSchema creates the table and its range index if they do not exist.
func (r *PostgresBatteryRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range r.schemaSQL {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure battery schema: %w", err)
		}
	}
	return nil
}

// InsertMany writes all batteries in one transaction using a single pgx batch round trip.
func (r *PostgresBatteryRepository) InsertMany(ctx context.Context, batteries []models.StoredBattery) ([]models.StoredBattery, error) {
	if len(batteries) == 0 {
		return []models.StoredBattery{}, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin battery insert: %w", err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, b := range batteries {
		batch.Queue(r.insertSQL, b.Name, b.LowercaseName(), b.Postcode, b.WattCapacity)
	}

	results := tx.SendBatch(ctx, batch)
	out := make([]models.StoredBattery, 0, len(batteries))
	for _, b := range batteries {
		if err := results.QueryRow().Scan(&b.ID); err != nil {
			results.Close()
			return nil, fmt.Errorf("insert battery %q: %w", b.Name, err)
		}
		out = append(out, b)
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("close battery batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit battery insert: %w", err)
	}
	return out, nil
}

// FindInPostcodeRange returns a page of batteries ordered by lowercase name.
func (r *PostgresBatteryRepository) FindInPostcodeRange(ctx context.Context, postcode1, postcode2 string, skip, limit int) ([]models.StoredBattery, error) {
	rows, err := r.pool.Query(ctx, r.findSQL, postcode1, postcode2, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("find batteries: %w", err)
	}

	batteries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StoredBattery, error) {
		var b models.StoredBattery
		err := row.Scan(&b.ID, &b.Name, &b.Postcode, &b.WattCapacity)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan batteries: %w", err)
	}
	return batteries, nil
}

// StatisticsInPostcodeRange returns nil when no battery lies in the range.
func (r *PostgresBatteryRepository) StatisticsInPostcodeRange(ctx context.Context, postcode1, postcode2 string) (*models.BatteryStatistics, error) {
	var stats models.BatteryStatistics
	err := r.pool.QueryRow(ctx, r.statsSQL, postcode1, postcode2).Scan(&stats.TotalWattCapacity, &stats.BatteryCount)
	if err != nil {
		return nil, fmt.Errorf("aggregate batteries: %w", err)
	}
	if stats.BatteryCount == 0 {
		return nil, nil
	}
	return &stats, nil
}

// DeleteAll removes every battery.
func (r *PostgresBatteryRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, r.deleteSQL); err != nil {
		return fmt.Errorf("delete batteries: %w", err)
	}
	return nil
}
