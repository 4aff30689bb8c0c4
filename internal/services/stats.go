package services

import (
	"context"
	"sort"
	"time"

	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/pricing"
)

// StatsService serves read-only aggregates for the admin dashboard.
type StatsService struct {
	requests RequestStore
	users    UserStore
	now      func() time.Time
}

func NewStatsService(requests RequestStore, users UserStore, now func() time.Time) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{requests: requests, users: users, now: now}
}

// WasteTotals returns the requested kilograms per waste type, sorted by type.
func (s *StatsService) WasteTotals(ctx context.Context) ([]models.WasteTotal, error) {
	totals, err := s.requests.WeightByWasteType(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.WasteTotal, 0, len(totals))
	for _, t := range totals {
		t.TotalWeight = pricing.Round2(t.TotalWeight)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WasteType < out[j].WasteType })
	return out, nil
}

// CategoryCounts returns the non-zero waste totals, heaviest first.
func (s *StatsService) CategoryCounts(ctx context.Context) ([]models.WasteTotal, error) {
	totals, err := s.WasteTotals(ctx)
	if err != nil {
		return nil, err
	}
	out := totals[:0]
	for _, t := range totals {
		if t.TotalWeight > 0 {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalWeight > out[j].TotalWeight })
	return out, nil
}

// RequestsPerMonth returns twelve buckets for the current UTC calendar year,
// January first, with months without requests set to zero.
func (s *StatsService) RequestsPerMonth(ctx context.Context) ([]models.MonthCount, error) {
	now := s.now().UTC()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	counts, err := s.requests.CountByMonth(ctx, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	out := make([]models.MonthCount, 12)
	for i := range out {
		out[i].Month = i + 1
	}
	for _, c := range counts {
		if c.Month >= 1 && c.Month <= 12 {
			out[c.Month-1].TotalRequests += c.TotalRequests
		}
	}
	return out, nil
}

// CollectorAssignments returns how many residents each collector serves,
// including collectors with none, busiest first.
func (s *StatsService) CollectorAssignments(ctx context.Context) ([]models.CollectorAssignment, error) {
	collectors, err := s.users.ListByRole(ctx, models.RoleCollector)
	if err != nil {
		return nil, err
	}
	counts, err := s.users.CountByAssignedCollector(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.CollectorAssignment, 0, len(collectors))
	for _, c := range collectors {
		out = append(out, models.CollectorAssignment{
			CollectorID:   c.ID,
			CollectorName: c.Name,
			AssignedUsers: counts[c.ID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AssignedUsers > out[j].AssignedUsers })
	return out, nil
}
