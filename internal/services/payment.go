package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/pricing"
)

// ChargeSucceeded is the gateway status of a captured charge.
const ChargeSucceeded = "succeeded"

// Authorization is a charge the client can now confirm with ClientSecret.
type Authorization struct {
	Reference    string `json:"paymentReference"`
	ClientSecret string `json:"clientSecret"`
	AmountMinor  int64  `json:"-"`
	Currency     string `json:"currency"`
}

// ChargeStatus is the gateway's view of a charge.
type ChargeStatus struct {
	Reference   string
	Status      string
	AmountMinor int64
	Currency    string
	Metadata    map[string]string
}

// PaymentGateway authorizes charges and reports their status.
type PaymentGateway interface {
	AuthorizeCharge(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Authorization, error)
	Charge(ctx context.Context, reference string) (*ChargeStatus, error)
}

// Intent is returned to the client to complete payment before creating a request.
type Intent struct {
	ClientSecret     string  `json:"clientSecret"`
	PaymentReference string  `json:"paymentReference"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
}

type PaymentService struct {
	gateway  PaymentGateway
	tariff   pricing.Tariff
	currency string
	logger   *zap.Logger
}

func NewPaymentService(gateway PaymentGateway, tariff pricing.Tariff, currency string, logger *zap.Logger) *PaymentService {
	return &PaymentService{gateway: gateway, tariff: tariff, currency: currency, logger: logger}
}

// CreateIntent prices items and authorizes a charge for the total.
func (s *PaymentService) CreateIntent(ctx context.Context, residentID primitive.ObjectID, items []models.WasteItem) (*Intent, error) {
	_, total, err := priceItems(s.tariff, items)
	if err != nil {
		return nil, err
	}
	auth, err := s.gateway.AuthorizeCharge(ctx, pricing.MinorUnits(total), s.currency, map[string]string{
		"userId": residentID.Hex(),
	})
	if err != nil {
		return nil, err
	}
	return &Intent{
		ClientSecret:     auth.ClientSecret,
		PaymentReference: auth.Reference,
		Amount:           total,
		Currency:         s.currency,
	}, nil
}

// Confirm checks with the gateway that reference is a succeeded charge for
// exactly total, paid by the resident.
func (s *PaymentService) Confirm(ctx context.Context, reference string, residentID primitive.ObjectID, total float64) error {
	if strings.TrimSpace(reference) == "" {
		return apperr.Wrap(apperr.ErrPaymentNotConfirmed, errors.New("no payment reference"))
	}
	charge, err := s.gateway.Charge(ctx, reference)
	if err != nil {
		return err
	}

	var reason string
	switch {
	case charge.Status != ChargeSucceeded:
		reason = "status " + charge.Status
	case !strings.EqualFold(charge.Currency, s.currency):
		reason = "currency " + charge.Currency
	case charge.AmountMinor != pricing.MinorUnits(total):
		reason = fmt.Sprintf("amount %d, expected %d", charge.AmountMinor, pricing.MinorUnits(total))
	case charge.Metadata["userId"] == "":
		reason = "charge has no owner"
	case charge.Metadata["userId"] != residentID.Hex():
		reason = "charge belongs to another user"
	}
	if reason != "" {
		s.logger.Warn("payment not confirmed",
			zap.String("payment_reference", reference),
			zap.String("resident_id", residentID.Hex()),
			zap.String("reason", reason),
		)
		return apperr.Wrap(apperr.ErrPaymentNotConfirmed, errors.New(reason))
	}
	return nil
}

// priceItems validates and prices a set of items. At least one item must
// carry a positive price.
func priceItems(tariff pricing.Tariff, items []models.WasteItem) ([]models.WasteItem, float64, error) {
	if len(items) == 0 {
		return nil, 0, apperr.Validation("At least one waste item is required")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, 0, apperr.Validation(err.Error())
		}
	}
	priced, total := tariff.PriceAll(items)
	if total <= 0 {
		return nil, 0, apperr.Validation("Total price must be greater than zero")
	}
	return priced, total, nil
}
