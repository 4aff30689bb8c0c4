package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/auth"
	"github.com/markjakearzadon/trashmate-gobackend/internal/config"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/pricing"
)

// RequestService drives the pickup lifecycle pending -> assigned -> completed.
type RequestService struct {
	requests RequestStore
	users    UserStore
	ledger   *LedgerService
	payments *PaymentService
	tariff   pricing.Tariff
	policy   config.CompletionPolicy
	now      func() time.Time
	logger   *zap.Logger
}

func NewRequestService(
	requests RequestStore,
	users UserStore,
	ledger *LedgerService,
	payments *PaymentService,
	tariff pricing.Tariff,
	policy config.CompletionPolicy,
	now func() time.Time,
	logger *zap.Logger,
) *RequestService {
	if now == nil {
		now = time.Now
	}
	return &RequestService{
		requests: requests,
		users:    users,
		ledger:   ledger,
		payments: payments,
		tariff:   tariff,
		policy:   policy,
		now:      now,
		logger:   logger,
	}
}

// Create prices items server-side, confirms the payment with the gateway and
// stores a pending, paid request.
func (s *RequestService) Create(ctx context.Context, residentID primitive.ObjectID, items []models.WasteItem, paymentReference string) (*models.Request, error) {
	priced, total, err := priceItems(s.tariff, items)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Confirm(ctx, paymentReference, residentID, total); err != nil {
		return nil, err
	}

	now := s.now()
	req := &models.Request{
		ResidentID:       residentID,
		Items:            priced,
		TotalPrice:       total,
		Status:           models.StatusPending,
		PaymentStatus:    models.PaymentPaid,
		PaymentReference: paymentReference,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("request created",
		zap.String("request_id", req.ID.Hex()),
		zap.String("resident_id", residentID.Hex()),
		zap.Float64("total_price", total),
	)
	return req, nil
}

// Get returns one request.
func (s *RequestService) Get(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	req, err := s.requests.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Request not found")
	}
	return req, err
}

func (s *RequestService) ListAll(ctx context.Context) ([]models.Request, error) {
	return nonNil(s.requests.ListAll(ctx))
}

// ListByResident returns the resident's requests newest first; no requests is
// an empty list.
func (s *RequestService) ListByResident(ctx context.Context, residentID primitive.ObjectID) ([]models.Request, error) {
	return nonNil(s.requests.ListByResident(ctx, residentID))
}

func (s *RequestService) ListByCollector(ctx context.Context, collectorID primitive.ObjectID) ([]models.Request, error) {
	return nonNil(s.requests.ListByCollector(ctx, collectorID))
}

func nonNil(reqs []models.Request, err error) ([]models.Request, error) {
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []models.Request{}
	}
	return reqs, nil
}

// Assign hands a pending request to a collector.
func (s *RequestService) Assign(ctx context.Context, requestID, collectorID primitive.ObjectID) (*models.Request, error) {
	collector, err := s.users.FindByID(ctx, collectorID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if collector == nil || collector.Role != models.RoleCollector {
		return nil, apperr.NotFound("Garbage collector not found")
	}

	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, apperr.InvalidState("Only pending requests can be assigned")
	}

	updated, err := s.requests.Transition(ctx, requestID, models.Transition{
		From:                []models.RequestStatus{models.StatusPending},
		To:                  models.StatusAssigned,
		AssignedCollectorID: &collectorID,
		At:                  s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("request assigned",
		zap.String("request_id", requestID.Hex()),
		zap.String("collector_id", collectorID.Hex()),
	)
	return updated, nil
}

// Complete marks a request completed by the calling collector and records
// the collection in the ledger. Which requests a collector may complete
// depends on the completion policy.
func (s *RequestService) Complete(ctx context.Context, requestID primitive.ObjectID, caller auth.Identity) (*models.Request, error) {
	if !auth.Allowed(caller.Role, models.RoleCollector) {
		return nil, apperr.ErrForbidden
	}
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	collectorID := caller.UserID
	if req.Status == models.StatusCompleted {
		if req.AssignedCollectorID == nil || *req.AssignedCollectorID != collectorID {
			return nil, apperr.InvalidState("Request already completed")
		}
		// A previous completion may have failed after the transition; the
		// ledger upsert is keyed by request id so rerunning it is harmless.
		if err := s.ledger.RecordFromRequest(ctx, req); err != nil {
			s.logger.Error("failed to record collection for completed request",
				zap.String("request_id", requestID.Hex()),
				zap.Error(err),
			)
			return nil, err
		}
		return req, nil
	}

	t := models.Transition{
		To:                  models.StatusCompleted,
		AssignedCollectorID: &collectorID,
		At:                  s.now(),
	}
	switch s.policy {
	case config.CompletionLenient:
		t.From = []models.RequestStatus{models.StatusPending, models.StatusAssigned}
	default:
		if req.Status != models.StatusAssigned {
			return nil, apperr.InvalidState("Only assigned requests can be completed")
		}
		if req.AssignedCollectorID == nil || *req.AssignedCollectorID != collectorID {
			return nil, apperr.Wrap(apperr.ErrForbidden, errors.New("request assigned to another collector"))
		}
		t.From = []models.RequestStatus{models.StatusAssigned}
		t.OnlyCollector = &collectorID
	}

	updated, err := s.requests.Transition(ctx, requestID, t)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.RecordFromRequest(ctx, updated); err != nil {
		s.logger.Error("failed to record collection for completed request",
			zap.String("request_id", requestID.Hex()),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("request completed",
		zap.String("request_id", requestID.Hex()),
		zap.String("collector_id", collectorID.Hex()),
	)
	return updated, nil
}

// Delete removes a completed request. Requests in any other state are kept.
func (s *RequestService) Delete(ctx context.Context, requestID primitive.ObjectID) error {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != models.StatusCompleted {
		return apperr.InvalidState("Only completed requests can be deleted")
	}
	if err := s.requests.DeleteCompleted(ctx, requestID); err != nil {
		return err
	}
	s.logger.Info("request deleted", zap.String("request_id", requestID.Hex()))
	return nil
}
