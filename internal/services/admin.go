package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

// AdminService manages resident to collector assignments.
type AdminService struct {
	users  UserStore
	now    func() time.Time
	logger *zap.Logger
}

func NewAdminService(users UserStore, now func() time.Time, logger *zap.Logger) *AdminService {
	if now == nil {
		now = time.Now
	}
	return &AdminService{users: users, now: now, logger: logger}
}

// ListResidents returns every resident with their collector's name resolved.
func (s *AdminService) ListResidents(ctx context.Context) ([]models.ResidentView, error) {
	residents, err := s.users.ListByRole(ctx, models.RoleResident)
	if err != nil {
		return nil, err
	}
	collectors, err := s.users.ListByRole(ctx, models.RoleCollector)
	if err != nil {
		return nil, err
	}
	names := make(map[primitive.ObjectID]string, len(collectors))
	for _, c := range collectors {
		names[c.ID] = c.Name
	}

	out := make([]models.ResidentView, 0, len(residents))
	for _, r := range residents {
		v := models.ResidentView{User: r}
		if r.AssignedCollector != nil {
			v.AssignedCollectorName = names[*r.AssignedCollector]
		}
		out = append(out, v)
	}
	return out, nil
}

// AssignCollector makes collectorID responsible for a resident.
func (s *AdminService) AssignCollector(ctx context.Context, residentID, collectorID primitive.ObjectID) error {
	if err := s.expectRole(ctx, residentID, models.RoleResident, "User not found"); err != nil {
		return err
	}
	if err := s.expectRole(ctx, collectorID, models.RoleCollector, "Garbage collector not found"); err != nil {
		return err
	}
	if err := s.users.SetAssignedCollector(ctx, residentID, collectorID, s.now()); err != nil {
		return err
	}
	s.logger.Info("collector assigned",
		zap.String("resident_id", residentID.Hex()),
		zap.String("collector_id", collectorID.Hex()),
	)
	return nil
}

func (s *AdminService) expectRole(ctx context.Context, id primitive.ObjectID, role models.Role, msg string) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if u == nil || u.Role != role {
		return apperr.NotFound(msg)
	}
	return nil
}
