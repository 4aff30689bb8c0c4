package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

type LedgerRepository struct {
	collection *mongo.Collection
}

func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{collection: db.Collection(collectionsCollection)}
}

func (r *LedgerRepository) Create(ctx context.Context, entry *models.CollectionEntry) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	entry.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return apperr.Upstream("failed to record collection", err)
	}
	return nil
}

func (r *LedgerRepository) UpsertForRequest(ctx context.Context, entry *models.CollectionEntry) error {
	if entry.RequestID == nil {
		return r.Create(ctx, entry)
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"resident_id":  entry.ResidentID,
			"collector_id": entry.CollectorID,
			"items":        entry.Items,
			"date":         entry.Date,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"request_id": *entry.RequestID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return apperr.Upstream("failed to record collection", err)
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

func (r *LedgerRepository) Recent(ctx context.Context, residentID primitive.ObjectID, n int) ([]models.CollectionEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(n))
	return findAll[models.CollectionEntry](ctx, r.collection, bson.M{"resident_id": residentID}, opts, "failed to fetch collections")
}
