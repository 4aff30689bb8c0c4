package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

type RequestRepository struct {
	collection *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{collection: db.Collection(requestsCollection)}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func (r *RequestRepository) Create(ctx context.Context, req *models.Request) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	req.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, req); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrPaymentReused
		}
		return apperr.Upstream("failed to create request", err)
	}
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var req models.Request
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, notFound("failed to fetch request", err)
	}
	return &req, nil
}

func (r *RequestRepository) ListAll(ctx context.Context) ([]models.Request, error) {
	return findAll[models.Request](ctx, r.collection, bson.M{}, options.Find().SetSort(newestFirst), "failed to fetch requests")
}

func (r *RequestRepository) ListByResident(ctx context.Context, residentID primitive.ObjectID) ([]models.Request, error) {
	return findAll[models.Request](ctx, r.collection, bson.M{"resident_id": residentID}, options.Find().SetSort(newestFirst), "failed to fetch requests")
}

func (r *RequestRepository) ListByCollector(ctx context.Context, collectorID primitive.ObjectID) ([]models.Request, error) {
	return findAll[models.Request](ctx, r.collection, bson.M{"assigned_collector_id": collectorID}, options.Find().SetSort(newestFirst), "failed to fetch requests")
}

// Transition runs a conditional update; the filter carries the expected
// state so a concurrent change makes it match nothing.
func (r *RequestRepository) Transition(ctx context.Context, id primitive.ObjectID, t models.Transition) (*models.Request, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": bson.M{"$in": t.From}}
	if t.OnlyCollector != nil {
		filter["assigned_collector_id"] = *t.OnlyCollector
	}
	set := bson.M{"status": t.To, "updated_at": t.At}
	if t.AssignedCollectorID != nil {
		set["assigned_collector_id"] = *t.AssignedCollectorID
	}
	if t.To == models.StatusCompleted {
		set["completed_at"] = t.At
	}

	var req models.Request
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&req)
	if err == nil {
		return &req, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Upstream("failed to update request", err)
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, apperr.Upstream("failed to update request", err)
	}
	if n == 0 {
		return nil, apperr.ErrNotFound
	}
	return nil, apperr.ErrInvalidState
}

func (r *RequestRepository) DeleteCompleted(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "status": models.StatusCompleted})
	if err != nil {
		return apperr.Upstream("failed to delete request", err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrInvalidState
	}
	return nil
}

func (r *RequestRepository) WeightByWasteType(ctx context.Context) ([]models.WasteTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$items.waste_type",
			"total_weight": bson.M{"$sum": "$items.kilograms"},
		}}},
	}
	return aggregate[models.WasteTotal](ctx, r.collection, pipeline, "failed to aggregate waste totals")
}

func (r *RequestRepository) CountByMonth(ctx context.Context, from, to time.Time) ([]models.MonthCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            bson.M{"$month": "$created_at"},
			"total_requests": bson.M{"$sum": 1},
		}}},
	}
	return aggregate[models.MonthCount](ctx, r.collection, pipeline, "failed to aggregate requests per month")
}
