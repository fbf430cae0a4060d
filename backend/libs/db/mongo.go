package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultMongoMaxPoolSize    = 50
	defaultMongoMinPoolSize    = 5
	defaultMongoConnectTimeout = 10 * time.Second
)

// NewMongoClient connects to MongoDB and validates the connection with a primary ping.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, errors.New("db: empty mongo uri")
	}

	connectCtx, cancel := context.WithTimeout(ctx, defaultMongoConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(defaultMongoMaxPoolSize).
		SetMinPoolSize(defaultMongoMinPoolSize)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("db: connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("db: ping mongo: %w", err)
	}

	return client, nil
}
