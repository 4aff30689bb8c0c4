package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

// Users is an in-memory user store.
type Users struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{byID: map[primitive.ObjectID]models.User{}}
}

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, user.Email) {
			return apperr.ErrDuplicateEmail
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.byID[user.ID] = *user
	return nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

func (s *Users) list(keep func(models.User) bool) []models.User {
	var out []models.User
	for _, u := range s.byID {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Users) ListByRole(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(u models.User) bool { return u.Role == role }), nil
}

func (s *Users) ListByAssignedCollector(_ context.Context, collectorID primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(u models.User) bool {
		return u.Role == models.RoleResident && u.AssignedCollector != nil && *u.AssignedCollector == collectorID
	}), nil
}

func (s *Users) SetAssignedCollector(_ context.Context, residentID, collectorID primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[residentID]
	if !ok {
		return apperr.ErrNotFound
	}
	u.AssignedCollector = &collectorID
	u.UpdatedAt = at
	s.byID[residentID] = u
	return nil
}

func (s *Users) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Address != nil {
		u.Address = *update.Address
	}
	if update.PhoneNumber != nil {
		u.PhoneNumber = *update.PhoneNumber
	}
	u.UpdatedAt = at
	s.byID[id] = u
	return &u, nil
}

func (s *Users) SetPhotoKey(_ context.Context, id primitive.ObjectID, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.PhotoKey = key
	u.UpdatedAt = at
	s.byID[id] = u
	return nil
}

func (s *Users) CountByAssignedCollector(context.Context) (map[primitive.ObjectID]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[primitive.ObjectID]int{}
	for _, u := range s.byID {
		if u.Role == models.RoleResident && u.AssignedCollector != nil {
			out[*u.AssignedCollector]++
		}
	}
	return out, nil
}

// Requests is an in-memory request store.
type Requests struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]models.Request
}

func NewRequests() *Requests {
	return &Requests{byID: map[primitive.ObjectID]models.Request{}}
}

func (s *Requests) Create(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.PaymentReference != "" {
		for _, r := range s.byID {
			if r.PaymentReference == req.PaymentReference {
				return apperr.ErrPaymentReused
			}
		}
	}
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	s.byID[req.ID] = *req
	return nil
}

func (s *Requests) FindByID(_ context.Context, id primitive.ObjectID) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &r, nil
}

func (s *Requests) list(keep func(models.Request) bool) []models.Request {
	var out []models.Request
	for _, r := range s.byID {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Requests) ListAll(context.Context) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(models.Request) bool { return true }), nil
}

func (s *Requests) ListByResident(_ context.Context, residentID primitive.ObjectID) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(r models.Request) bool { return r.ResidentID == residentID }), nil
}

func (s *Requests) ListByCollector(_ context.Context, collectorID primitive.ObjectID) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(r models.Request) bool {
		return r.AssignedCollectorID != nil && *r.AssignedCollectorID == collectorID
	}), nil
}

func (s *Requests) Transition(_ context.Context, id primitive.ObjectID, t models.Transition) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	matched := false
	for _, from := range t.From {
		if r.Status == from {
			matched = true
		}
	}
	if t.OnlyCollector != nil && (r.AssignedCollectorID == nil || *r.AssignedCollectorID != *t.OnlyCollector) {
		matched = false
	}
	if !matched {
		return nil, apperr.ErrInvalidState
	}
	r.Status = t.To
	if t.AssignedCollectorID != nil {
		cid := *t.AssignedCollectorID
		r.AssignedCollectorID = &cid
	}
	r.UpdatedAt = t.At
	if t.To == models.StatusCompleted {
		at := t.At
		r.CompletedAt = &at
	}
	s.byID[id] = r
	return &r, nil
}

func (s *Requests) DeleteCompleted(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok || r.Status != models.StatusCompleted {
		return apperr.ErrInvalidState
	}
	delete(s.byID, id)
	return nil
}

func (s *Requests) WeightByWasteType(context.Context) ([]models.WasteTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sums := map[models.WasteType]float64{}
	for _, r := range s.byID {
		for _, item := range r.Items {
			sums[item.WasteType] += item.Kilograms
		}
	}
	var out []models.WasteTotal
	for wt, kg := range sums {
		out = append(out, models.WasteTotal{WasteType: wt, TotalWeight: kg})
	}
	return out, nil
}

func (s *Requests) CountByMonth(_ context.Context, from, to time.Time) ([]models.MonthCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[int]int{}
	for _, r := range s.byID {
		if !r.CreatedAt.Before(from) && r.CreatedAt.Before(to) {
			counts[int(r.CreatedAt.UTC().Month())]++
		}
	}
	var out []models.MonthCount
	for m, n := range counts {
		out = append(out, models.MonthCount{Month: m, TotalRequests: n})
	}
	return out, nil
}

// Ledger is an in-memory collection ledger.
type Ledger struct {
	mu      sync.Mutex
	entries []models.CollectionEntry
}

func NewLedger() *Ledger { return &Ledger{} }

func (s *Ledger) Create(_ context.Context, entry *models.CollectionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *Ledger) UpsertForRequest(_ context.Context, entry *models.CollectionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.RequestID != nil && entry.RequestID != nil && *e.RequestID == *entry.RequestID {
			entry.ID = e.ID
			s.entries[i] = *entry
			return nil
		}
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *Ledger) Recent(_ context.Context, residentID primitive.ObjectID, n int) ([]models.CollectionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CollectionEntry
	for _, e := range s.entries {
		if e.ResidentID == residentID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// All returns every entry in insertion order.
func (s *Ledger) All() []models.CollectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CollectionEntry(nil), s.entries...)
}

// Invoices is an in-memory invoice store.
type Invoices struct {
	mu   sync.Mutex
	list []models.Invoice
}

func NewInvoices() *Invoices { return &Invoices{} }

func (s *Invoices) Create(_ context.Context, inv *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.list {
		if i.ResidentID == inv.ResidentID && i.PeriodStart.Equal(inv.PeriodStart) && i.PeriodEnd.Equal(inv.PeriodEnd) {
			return apperr.ErrAlreadyExists
		}
	}
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	s.list = append(s.list, *inv)
	return nil
}

func (s *Invoices) FindByPeriod(_ context.Context, residentID primitive.ObjectID, start, end time.Time) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.list {
		if i.ResidentID == residentID && i.PeriodStart.Equal(start) && i.PeriodEnd.Equal(end) {
			return &i, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *Invoices) FindByID(_ context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range s.list {
		if i.ID == id {
			return &i, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *Invoices) ListByResident(_ context.Context, residentID primitive.ObjectID) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Invoice
	for _, i := range s.list {
		if i.ResidentID == residentID {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

// Count returns the number of stored invoices.
func (s *Invoices) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}
