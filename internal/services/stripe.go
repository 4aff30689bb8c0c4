package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
)

// StripeGateway talks to the Stripe PaymentIntents API.
type StripeGateway struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

type paymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewStripeGateway(baseURL, secretKey string, logger *zap.Logger) *StripeGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetAuthToken(secretKey).
		SetHeader("Accept", "application/json")

	return &StripeGateway{httpClient: client, logger: logger}
}

func (g *StripeGateway) AuthorizeCharge(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Authorization, error) {
	form := map[string]string{
		"amount":                             strconv.FormatInt(amountMinor, 10),
		"currency":                           currency,
		"automatic_payment_methods[enabled]": "true",
	}
	for k, v := range metadata {
		form["metadata["+k+"]"] = v
	}

	var pi paymentIntent
	var apiErr stripeError
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetFormData(form).
		SetResult(&pi).
		SetError(&apiErr).
		Post("/v1/payment_intents")
	if err != nil {
		g.logger.Error("Stripe create payment intent failed", zap.Error(err))
		return nil, apperr.Upstream("failed to create payment intent", err)
	}
	if resp.IsError() {
		g.logger.Error("Stripe returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("type", apiErr.Error.Type),
			zap.String("msg", apiErr.Error.Message),
		)
		return nil, apperr.Upstream("failed to create payment intent",
			fmt.Errorf("stripe: %s (status: %d)", apiErr.Error.Message, resp.StatusCode()))
	}

	g.logger.Info("payment intent created",
		zap.String("payment_reference", pi.ID),
		zap.Int64("amount", pi.Amount),
		zap.String("currency", pi.Currency),
	)
	return &Authorization{
		Reference:    pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     pi.Currency,
	}, nil
}

func (g *StripeGateway) Charge(ctx context.Context, reference string) (*ChargeStatus, error) {
	var pi paymentIntent
	var apiErr stripeError
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetPathParam("id", reference).
		SetResult(&pi).
		SetError(&apiErr).
		Get("/v1/payment_intents/{id}")
	if err != nil {
		g.logger.Error("Stripe retrieve payment intent failed", zap.Error(err))
		return nil, apperr.Upstream("failed to verify payment", err)
	}
	if resp.StatusCode() == 404 {
		return nil, apperr.Wrap(apperr.ErrPaymentNotConfirmed, fmt.Errorf("unknown payment intent %q", reference))
	}
	if resp.IsError() {
		g.logger.Error("Stripe returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("type", apiErr.Error.Type),
			zap.String("msg", apiErr.Error.Message),
		)
		return nil, apperr.Upstream("failed to verify payment",
			fmt.Errorf("stripe: %s (status: %d)", apiErr.Error.Message, resp.StatusCode()))
	}

	return &ChargeStatus{
		Reference:   pi.ID,
		Status:      pi.Status,
		AmountMinor: pi.Amount,
		Currency:    pi.Currency,
		Metadata:    pi.Metadata,
	}, nil
}
