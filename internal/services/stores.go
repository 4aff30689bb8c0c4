package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

// Stores report a missing document as apperr.ErrNotFound and failures of
// the backing database as apperr Upstream errors.

type UserStore interface {
	// Create inserts the user and sets its ID. A taken email yields
	// apperr.ErrDuplicateEmail.
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	ListByAssignedCollector(ctx context.Context, collectorID primitive.ObjectID) ([]models.User, error)
	SetAssignedCollector(ctx context.Context, residentID, collectorID primitive.ObjectID, at time.Time) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate, at time.Time) (*models.User, error)
	SetPhotoKey(ctx context.Context, id primitive.ObjectID, key string, at time.Time) error
	CountByAssignedCollector(ctx context.Context) (map[primitive.ObjectID]int, error)
}

type RequestStore interface {
	// Create inserts the request and sets its ID. A payment reference that
	// already backs another request yields apperr.ErrPaymentReused.
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	ListAll(ctx context.Context) ([]models.Request, error)
	// ListByResident returns the resident's requests, newest first.
	ListByResident(ctx context.Context, residentID primitive.ObjectID) ([]models.Request, error)
	ListByCollector(ctx context.Context, collectorID primitive.ObjectID) ([]models.Request, error)
	// Transition applies t only if the request still matches its
	// preconditions, returning the updated request. A request that no longer
	// matches yields apperr.ErrInvalidState.
	Transition(ctx context.Context, id primitive.ObjectID, t models.Transition) (*models.Request, error)
	// DeleteCompleted removes the request only while it is completed.
	DeleteCompleted(ctx context.Context, id primitive.ObjectID) error
	WeightByWasteType(ctx context.Context) ([]models.WasteTotal, error)
	// CountByMonth counts requests created in [from, to) grouped by month.
	CountByMonth(ctx context.Context, from, to time.Time) ([]models.MonthCount, error)
}

type LedgerStore interface {
	Create(ctx context.Context, entry *models.CollectionEntry) error
	// UpsertForRequest writes the entry keyed by its RequestID, so a repeated
	// call for the same request leaves a single entry.
	UpsertForRequest(ctx context.Context, entry *models.CollectionEntry) error
	// Recent returns at most n entries for the resident, newest first.
	Recent(ctx context.Context, residentID primitive.ObjectID, n int) ([]models.CollectionEntry, error)
}

type InvoiceStore interface {
	// Create inserts the invoice. An invoice for the same resident and period
	// yields apperr.ErrAlreadyExists.
	Create(ctx context.Context, inv *models.Invoice) error
	FindByPeriod(ctx context.Context, residentID primitive.ObjectID, start, end time.Time) (*models.Invoice, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error)
	ListByResident(ctx context.Context, residentID primitive.ObjectID) ([]models.Invoice, error)
}
