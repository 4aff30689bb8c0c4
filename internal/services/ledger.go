package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/pricing"
)

// LedgerService records actual collections. Invoices are computed from it.
type LedgerService struct {
	entries LedgerStore
	users   UserStore
	tariff  pricing.Tariff
	now     func() time.Time
	logger  *zap.Logger
}

func NewLedgerService(entries LedgerStore, users UserStore, tariff pricing.Tariff, now func() time.Time, logger *zap.Logger) *LedgerService {
	if now == nil {
		now = time.Now
	}
	return &LedgerService{entries: entries, users: users, tariff: tariff, now: now, logger: logger}
}

// Record stores a collection made by collectorID at a resident assigned to them.
func (s *LedgerService) Record(ctx context.Context, collectorID, residentID primitive.ObjectID, items []models.WasteItem) (*models.CollectionEntry, error) {
	resident, err := s.users.FindByID(ctx, residentID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if resident == nil || resident.Role != models.RoleResident ||
		resident.AssignedCollector == nil || *resident.AssignedCollector != collectorID {
		return nil, apperr.NotFound("User not found or not assigned to you")
	}

	if len(items) == 0 {
		return nil, apperr.Validation("At least one waste item is required")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, apperr.Validation(err.Error())
		}
	}
	priced, _ := s.tariff.PriceAll(items)

	entry := &models.CollectionEntry{
		ResidentID:  residentID,
		CollectorID: collectorID,
		Items:       priced,
		Date:        s.now(),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info("collection recorded",
		zap.String("entry_id", entry.ID.Hex()),
		zap.String("collector_id", collectorID.Hex()),
		zap.String("resident_id", residentID.Hex()),
	)
	return entry, nil
}

// RecordFromRequest writes the ledger entry for a completed request.
func (s *LedgerService) RecordFromRequest(ctx context.Context, req *models.Request) error {
	if req.AssignedCollectorID == nil {
		return apperr.InvalidState("Request has no collector")
	}
	date := s.now()
	if req.CompletedAt != nil {
		date = *req.CompletedAt
	}
	reqID := req.ID
	return s.entries.UpsertForRequest(ctx, &models.CollectionEntry{
		ResidentID:  req.ResidentID,
		CollectorID: *req.AssignedCollectorID,
		RequestID:   &reqID,
		Items:       req.Items,
		Date:        date,
	})
}

// AssignedResidents lists the residents assigned to a collector.
func (s *LedgerService) AssignedResidents(ctx context.Context, collectorID primitive.ObjectID) ([]models.User, error) {
	users, err := s.users.ListByAssignedCollector(ctx, collectorID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Recent returns the resident's n most recent entries, newest first.
func (s *LedgerService) Recent(ctx context.Context, residentID primitive.ObjectID, n int) ([]models.CollectionEntry, error) {
	return s.entries.Recent(ctx, residentID, n)
}
