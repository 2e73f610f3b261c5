package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"portal/internal/config"
)

// NewMongo builds a client for cfg.URI. The driver connects in the background;
// use MongoPinger with a Manager to know when it is usable.
func NewMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, fmt.Errorf("invalid mongo config: uri and database are required")
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(5 * time.Second).
		SetAppName("portal")
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return client, nil
}

// MongoPinger adapts a client to the Pinger a Manager drives.
func MongoPinger(client *mongo.Client) Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}
