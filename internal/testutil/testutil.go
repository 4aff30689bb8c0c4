// Package testutil provides in-memory stores, fakes and wiring helpers for
// tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/auth"
	"github.com/markjakearzadon/trashmate-gobackend/internal/config"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/pricing"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
)

// Clock is a settable time source.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// GetTestConfig returns a configuration with default pricing.
func GetTestConfig() config.Config {
	cfg := config.Config{
		Port:             8080,
		MongoDB:          "wastecollect_test",
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
		Currency:         "lkr",
		CompletionPolicy: config.CompletionStrict,
		InvoiceWindow:    4,
		Tariff:           pricing.DefaultTariff(),
		InvoiceRates:     pricing.DefaultInvoiceRates(),
	}
	cfg.Photos.Bucket = "photos-test"
	cfg.Photos.URLTTL = 5 * time.Minute
	return cfg
}

// Gateway is a fake payment gateway. Charges start unconfirmed; Succeed
// captures one.
type Gateway struct {
	mu      sync.Mutex
	charges map[string]services.ChargeStatus
	seq     int
}

func NewGateway() *Gateway {
	return &Gateway{charges: map[string]services.ChargeStatus{}}
}

func (g *Gateway) AuthorizeCharge(_ context.Context, amountMinor int64, currency string, metadata map[string]string) (*services.Authorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	ref := fmt.Sprintf("pi_test_%d", g.seq)
	g.charges[ref] = services.ChargeStatus{
		Reference:   ref,
		Status:      "requires_payment_method",
		AmountMinor: amountMinor,
		Currency:    currency,
		Metadata:    metadata,
	}
	return &services.Authorization{
		Reference:    ref,
		ClientSecret: ref + "_secret",
		AmountMinor:  amountMinor,
		Currency:     currency,
	}, nil
}

func (g *Gateway) Charge(_ context.Context, reference string) (*services.ChargeStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.charges[reference]
	if !ok {
		return nil, apperr.Wrap(apperr.ErrPaymentNotConfirmed, fmt.Errorf("unknown payment intent %q", reference))
	}
	return &c, nil
}

// Succeed marks a charge as captured.
func (g *Gateway) Succeed(reference string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.charges[reference]
	c.Status = services.ChargeSucceeded
	g.charges[reference] = c
}

// Paid authorizes and captures a charge in one step.
func (g *Gateway) Paid(amountMinor int64, residentID primitive.ObjectID) string {
	a, _ := g.AuthorizeCharge(context.Background(), amountMinor, "lkr", map[string]string{"userId": residentID.Hex()})
	g.Succeed(a.Reference)
	return a.Reference
}

// Presigner is a fake S3 presigner recording its last input.
type Presigner struct {
	mu   sync.Mutex
	Last *s3.PutObjectInput
	TTL  time.Duration
}

func (p *Presigner) PresignPutObject(_ context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	p.Last = params
	p.TTL = opts.Expires
	return &v4.PresignedHTTPRequest{
		URL:    "https://" + *params.Bucket + ".s3.test/" + *params.Key,
		Method: http.MethodPut,
	}, nil
}

// Env wires every service over in-memory stores.
type Env struct {
	Config   config.Config
	Clock    *Clock
	Users    *Users
	Requests *Requests
	Ledger   *Ledger
	Invoices *Invoices
	Gateway  *Gateway
	Photos   *Presigner
	Tokens   *auth.Tokens

	Auth       *services.AuthService
	RequestSvc *services.RequestService
	LedgerSvc  *services.LedgerService
	InvoiceSvc *services.InvoiceService
	AdminSvc   *services.AdminService
	StatsSvc   *services.StatsService
	PaymentSvc *services.PaymentService
	PhotoSvc   *services.PhotoService
	Logger     *zap.Logger
}

// NewEnv builds an Env from cfg at a fixed start time.
func NewEnv(cfg config.Config) *Env {
	e := &Env{
		Config:   cfg,
		Clock:    NewClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		Users:    NewUsers(),
		Requests: NewRequests(),
		Ledger:   NewLedger(),
		Invoices: NewInvoices(),
		Gateway:  NewGateway(),
		Photos:   &Presigner{},
		Logger:   zap.NewNop(),
	}
	now := e.Clock.Now
	e.Tokens = auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL, now)
	e.Auth = services.NewAuthService(e.Users, e.Tokens, nil, now, e.Logger)
	e.PaymentSvc = services.NewPaymentService(e.Gateway, cfg.Tariff, cfg.Currency, e.Logger)
	e.LedgerSvc = services.NewLedgerService(e.Ledger, e.Users, cfg.Tariff, now, e.Logger)
	e.RequestSvc = services.NewRequestService(e.Requests, e.Users, e.LedgerSvc, e.PaymentSvc, cfg.Tariff, cfg.CompletionPolicy, now, e.Logger)
	e.InvoiceSvc = services.NewInvoiceService(e.Invoices, e.Users, e.LedgerSvc, cfg.InvoiceRates, cfg.InvoiceWindow, now, e.Logger)
	e.AdminSvc = services.NewAdminService(e.Users, now, e.Logger)
	e.StatsSvc = services.NewStatsService(e.Requests, e.Users, now)
	e.PhotoSvc = services.NewPhotoService(e.Users, e.Photos, cfg.Photos.Bucket, cfg.Photos.URLTTL, now, e.Logger)
	return e
}

// CreateTestUser stores a user with password "password" and returns it.
func (e *Env) CreateTestUser(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	u := &models.User{
		Name:      name,
		Email:     services.NormalizeEmail(name + "@example.com"),
		HPassword: hash,
		Role:      role,
		CreatedAt: e.Clock.Now(),
		UpdatedAt: e.Clock.Now(),
	}
	if err := e.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return u
}

// TokenFor issues a session token for u.
func (e *Env) TokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := e.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return tok
}

// Weight builds a by-weight item.
func Weight(wt models.WasteType, kg float64) models.WasteItem {
	return models.WasteItem{WasteType: wt, ByWeight: &models.WeightMeasure{Kg: kg}}
}

// Package builds a by-package item.
func Package(wt models.WasteType, size models.PackageSize, qty int) models.WasteItem {
	return models.WasteItem{WasteType: wt, ByPackage: &models.PackageMeasure{Size: size, Quantity: qty}}
}

// MakeRequest creates an HTTP request with an optional JSON body.
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// Bearer returns an Authorization header map for token.
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
