package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/pricing"
)

// InvoiceService bills residents over their most recent collections.
type InvoiceService struct {
	invoices InvoiceStore
	users    UserStore
	ledger   *LedgerService
	rates    pricing.RateTable
	window   int
	now      func() time.Time
	logger   *zap.Logger
}

func NewInvoiceService(invoices InvoiceStore, users UserStore, ledger *LedgerService, rates pricing.RateTable, window int, now func() time.Time, logger *zap.Logger) *InvoiceService {
	if now == nil {
		now = time.Now
	}
	return &InvoiceService{
		invoices: invoices,
		users:    users,
		ledger:   ledger,
		rates:    rates,
		window:   window,
		now:      now,
		logger:   logger,
	}
}

// Generate bills the resident's last window collections. Calling it again
// for the same collections returns the invoice already issued, with created
// set to false.
func (s *InvoiceService) Generate(ctx context.Context, residentID primitive.ObjectID) (inv *models.Invoice, created bool, err error) {
	user, err := s.users.FindByID(ctx, residentID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}
	if user == nil || user.Role != models.RoleResident {
		return nil, false, apperr.NotFound("User not found")
	}

	entries, err := s.ledger.Recent(ctx, residentID, s.window)
	if err != nil {
		return nil, false, err
	}
	if len(entries) < s.window {
		return nil, false, apperr.ErrInsufficientHistory
	}

	lines, total := BillLines(entries, s.rates)
	periodEnd := entries[0].Date
	periodStart := entries[len(entries)-1].Date

	existing, err := s.invoices.FindByPeriod(ctx, residentID, periodStart, periodEnd)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	inv = &models.Invoice{
		Number:      "INV-" + ulid.Make().String(),
		ResidentID:  residentID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		LineItems:   lines,
		TotalAmount: total,
		CreatedAt:   s.now(),
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			existing, ferr := s.invoices.FindByPeriod(ctx, residentID, periodStart, periodEnd)
			if ferr != nil {
				return nil, false, ferr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	s.logger.Info("invoice generated",
		zap.String("invoice_id", inv.ID.Hex()),
		zap.String("number", inv.Number),
		zap.String("resident_id", residentID.Hex()),
		zap.Float64("total_amount", total),
	)
	return inv, true, nil
}

// BillLines groups the entries' weights by waste type and prices them with
// rates. Lines follow models.WasteTypes order; unknown types bill at 0 and
// sort after the known ones.
func BillLines(entries []models.CollectionEntry, rates pricing.RateTable) ([]models.InvoiceLine, float64) {
	weights := map[models.WasteType]float64{}
	for _, e := range entries {
		for _, item := range e.Items {
			weights[item.WasteType] += item.Kilograms
		}
	}

	order := make([]models.WasteType, 0, len(weights))
	for _, wt := range models.WasteTypes {
		if _, ok := weights[wt]; ok {
			order = append(order, wt)
		}
	}
	var unknown []models.WasteType
	for wt := range weights {
		if !wt.Valid() {
			unknown = append(unknown, wt)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	order = append(order, unknown...)

	lines := make([]models.InvoiceLine, 0, len(order))
	var total float64
	for _, wt := range order {
		rate := rates.Rate(wt)
		amount := pricing.Round2(weights[wt] * rate)
		lines = append(lines, models.InvoiceLine{
			WasteType:   wt,
			TotalWeight: weights[wt],
			RatePerKg:   rate,
			Amount:      amount,
		})
		total += amount
	}
	return lines, pricing.Round2(total)
}

// ListForResident returns the resident's invoices, newest first.
func (s *InvoiceService) ListForResident(ctx context.Context, residentID primitive.ObjectID) ([]models.Invoice, error) {
	invoices, err := s.invoices.ListByResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	return invoices, nil
}

// Get returns one invoice.
func (s *InvoiceService) Get(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("Invoice not found")
	}
	return inv, err
}
