// internal/common/database/mongo.go
package database

import (
	"context"
	"fmt"

	"blood-sea-api/internal/common/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoClient wraps the MongoDB client and the configured database handle.
type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongo creates a new MongoDB client
func NewMongo(cfg config.MongoConfig) (*MongoClient, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(config.GetDuration(cfg.Timeout)).
		SetServerSelectionTimeout(config.GetDuration(cfg.Timeout)))
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}

	return &MongoClient{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

// Ping tests the MongoDB connection
func (c *MongoClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Close disconnects the MongoDB client
func (c *MongoClient) Close(ctx context.Context) error {
	if c.Client != nil {
		return c.Client.Disconnect(ctx)
	}
	return nil
}

// Collection returns a collection handle from the configured database.
func (c *MongoClient) Collection(name string) *mongo.Collection {
	return c.Database.Collection(name)
}
