package repository

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"batteryhub/backend/services/battery-service/internal/models"
)

// StorageMetrics holds the collectors recorded around storage calls.
type StorageMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inserted   *prometheus.CounterVec
}

// NewStorageMetrics creates and registers storage collectors on reg.
func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	m := &StorageMetrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "battery_storage_operations_total",
				Help: "Total number of storage operations by driver, operation and outcome.",
			},
			[]string{"driver", "operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "battery_storage_operation_duration_seconds",
				Help:    "Storage operation latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"driver", "operation"},
		),
		inserted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "battery_storage_inserted_total",
				Help: "Total number of batteries written to storage.",
			},
			[]string{"driver"},
		),
	}
	reg.MustRegister(m.operations, m.duration, m.inserted)
	return m
}

// InstrumentedRepository decorates a BatteryRepository with prometheus metrics.
type InstrumentedRepository struct {
	next    BatteryRepository
	driver  string
	metrics *StorageMetrics
}

// Instrument wraps next so every call is counted and timed under the driver label.
func Instrument(next BatteryRepository, driver string, metrics *StorageMetrics) *InstrumentedRepository {
	return &InstrumentedRepository{next: next, driver: driver, metrics: metrics}
}

func (r *InstrumentedRepository) InsertMany(ctx context.Context, batteries []models.StoredBattery) ([]models.StoredBattery, error) {
	start := time.Now()
	out, err := r.next.InsertMany(ctx, batteries)
	r.observe("insert_many", start, err)
	if err == nil {
		r.metrics.inserted.WithLabelValues(r.driver).Add(float64(len(out)))
	}
	return out, err
}

func (r *InstrumentedRepository) FindInPostcodeRange(ctx context.Context, postcode1, postcode2 string, skip, limit int) ([]models.StoredBattery, error) {
	start := time.Now()
	out, err := r.next.FindInPostcodeRange(ctx, postcode1, postcode2, skip, limit)
	r.observe("find_in_range", start, err)
	return out, err
}

func (r *InstrumentedRepository) StatisticsInPostcodeRange(ctx context.Context, postcode1, postcode2 string) (*models.BatteryStatistics, error) {
	start := time.Now()
	out, err := r.next.StatisticsInPostcodeRange(ctx, postcode1, postcode2)
	r.observe("statistics_in_range", start, err)
	return out, err
}

func (r *InstrumentedRepository) DeleteAll(ctx context.Context) error {
	start := time.Now()
	err := r.next.DeleteAll(ctx)
	r.observe("delete_all", start, err)
	return err
}

func (r *InstrumentedRepository) EnsureSchema(ctx context.Context) error {
	start := time.Now()
	err := r.next.EnsureSchema(ctx)
	r.observe("ensure_schema", start, err)
	return err
}

func (r *InstrumentedRepository) observe(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.metrics.operations.WithLabelValues(r.driver, operation, outcome).Inc()
	r.metrics.duration.WithLabelValues(r.driver, operation).Observe(time.Since(start).Seconds())
}
