package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

type InvoiceRepository struct {
	collection *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{collection: db.Collection(invoicesCollection)}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	inv.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, inv); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrAlreadyExists
		}
		return apperr.Upstream("failed to create invoice", err)
	}
	return nil
}

func (r *InvoiceRepository) FindByPeriod(ctx context.Context, residentID primitive.ObjectID, start, end time.Time) (*models.Invoice, error) {
	return r.findOne(ctx, bson.M{"resident_id": residentID, "period_start": start, "period_end": end})
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *InvoiceRepository) findOne(ctx context.Context, filter bson.M) (*models.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var inv models.Invoice
	if err := r.collection.FindOne(ctx, filter).Decode(&inv); err != nil {
		return nil, notFound("failed to fetch invoice", err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) ListByResident(ctx context.Context, residentID primitive.ObjectID) ([]models.Invoice, error) {
	return findAll[models.Invoice](ctx, r.collection, bson.M{"resident_id": residentID}, options.Find().SetSort(newestFirst), "failed to fetch invoices")
}
