// Package db holds the MongoDB connection, index bootstrap and the
// repositories behind the service stores.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
)

const (
	usersCollection       = "users"
	requestsCollection    = "requests"
	collectionsCollection = "collections"
	invoicesCollection    = "invoices"

	opTimeout        = 5 * time.Second
	aggregateTimeout = 10 * time.Second
)

// Connect opens a client for uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on, including the
// unique keys that back duplicate detection.
func EnsureIndexes(ctx context.Context, database *mongo.Database, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
			{Keys: bson.D{{Key: "assigned_collector", Value: 1}}},
		},
		requestsCollection: {
			{Keys: bson.D{{Key: "payment_reference", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "resident_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "assigned_collector_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		collectionsCollection: {
			{Keys: bson.D{{Key: "request_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "resident_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		invoicesCollection: {
			{
				Keys:    bson.D{{Key: "resident_id", Value: 1}, {Key: "period_start", Value: 1}, {Key: "period_end", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "resident_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			logger.Error("Failed to create indexes", zap.String("collection", name), zap.Error(err))
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// notFound maps mongo.ErrNoDocuments to apperr.ErrNotFound and any other
// failure to an upstream error.
func notFound(msg string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.ErrNotFound
	}
	return apperr.Upstream(msg, err)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions, msg string) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Upstream(msg, err)
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Upstream(msg, err)
	}
	return out, nil
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, msg string) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, aggregateTimeout)
	defer cancel()

	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperr.Upstream(msg, err)
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Upstream(msg, err)
	}
	return out, nil
}
