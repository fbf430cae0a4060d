package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"batteryhub/backend/services/battery-service/internal/models"
)

const (
	// DefaultBatteryCollection is the collection used by the service in production.
	DefaultBatteryCollection = "battery"

	postcodeNameIndex = "postcode_name_idx"
)

type batteryDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	LowercaseName string             `bson:"lowercaseName"`
	Postcode      string             `bson:"postcode"`
	WattCapacity  float64            `bson:"wattCapacity"`
}

type batteryStatisticsDocument struct {
	TotalWattCapacity float64 `bson:"totalWattCapacity"`
	BatteryCount      int64   `bson:"batteryCount"`
}

// MongoBatteryRepository stores batteries as documents. MongoDB compares strings
// bytewise without a collation, which gives lexicographic postcode ranges.
type MongoBatteryRepository struct {
	collection *mongo.Collection
}

// NewMongoBatteryRepository returns a repository over the given collection.
func NewMongoBatteryRepository(collection *mongo.Collection) *MongoBatteryRepository {
	return &MongoBatteryRepository{collection: collection}
}

// EnsureSchema creates the compound (postcode, lowercaseName) index.
func (r *MongoBatteryRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "postcode", Value: 1}, {Key: "lowercaseName", Value: 1}},
		Options: options.Index().SetName(postcodeNameIndex),
	})
	if err != nil {
		return fmt.Errorf("ensure battery index: %w", err)
	}
	return nil
}

// InsertMany performs one ordered bulk insert. Ids are generated client side so the
// returned batteries line up with the input.
func (r *MongoBatteryRepository) InsertMany(ctx context.Context, batteries []models.StoredBattery) ([]models.StoredBattery, error) {
	if len(batteries) == 0 {
		return []models.StoredBattery{}, nil
	}

	docs := make([]interface{}, len(batteries))
	out := make([]models.StoredBattery, len(batteries))
	for i, b := range batteries {
		id := primitive.NewObjectID()
		docs[i] = batteryDocument{
			ID:            id,
			Name:          b.Name,
			LowercaseName: b.LowercaseName(),
			Postcode:      b.Postcode,
			WattCapacity:  b.WattCapacity,
		}
		b.ID = id.Hex()
		out[i] = b
	}

	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return nil, fmt.Errorf("insert batteries: %w", err)
	}
	return out, nil
}

// FindInPostcodeRange returns a page of batteries ordered by lowercase name.
func (r *MongoBatteryRepository) FindInPostcodeRange(ctx context.Context, postcode1, postcode2 string, skip, limit int) ([]models.StoredBattery, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "lowercaseName", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, postcodeRangeFilter(postcode1, postcode2), opts)
	if err != nil {
		return nil, fmt.Errorf("find batteries: %w", err)
	}

	var docs []batteryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode batteries: %w", err)
	}

	out := make([]models.StoredBattery, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.StoredBattery{
			ID:           d.ID.Hex(),
			Name:         d.Name,
			Postcode:     d.Postcode,
			WattCapacity: d.WattCapacity,
		})
	}
	return out, nil
}

// StatisticsInPostcodeRange groups the range into a single sum/count document. The
// pipeline yields no document for an empty range, reported as nil.
func (r *MongoBatteryRepository) StatisticsInPostcodeRange(ctx context.Context, postcode1, postcode2 string) (*models.BatteryStatistics, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: postcodeRangeFilter(postcode1, postcode2)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: ""},
			{Key: "totalWattCapacity", Value: bson.D{{Key: "$sum", Value: "$wattCapacity"}}},
			{Key: "batteryCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate batteries: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("aggregate batteries: %w", err)
		}
		return nil, nil
	}

	var doc batteryStatisticsDocument
	if err := cursor.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode battery statistics: %w", err)
	}
	if doc.BatteryCount == 0 {
		return nil, errors.New("aggregate batteries: empty group returned")
	}
	return &models.BatteryStatistics{
		TotalWattCapacity: doc.TotalWattCapacity,
		BatteryCount:      doc.BatteryCount,
	}, nil
}

// DeleteAll removes every battery document.
func (r *MongoBatteryRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.collection.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("delete batteries: %w", err)
	}
	return nil
}

func postcodeRangeFilter(postcode1, postcode2 string) bson.D {
	return bson.D{{Key: "postcode", Value: bson.D{
		{Key: "$gte", Value: postcode1},
		{Key: "$lte", Value: postcode2},
	}}}
}
