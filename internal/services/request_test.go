package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/auth"
	"github.com/markjakearzadon/trashmate-gobackend/internal/config"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/pricing"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
	"github.com/markjakearzadon/trashmate-gobackend/internal/testutil"
)

func identity(u *models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role}
}

func createPaid(t *testing.T, env *testutil.Env, resident *models.User, items ...models.WasteItem) *models.Request {
	t.Helper()
	_, total := env.Config.Tariff.PriceAll(items)
	ref := env.Gateway.Paid(pricing.MinorUnits(total), resident.ID)
	req, err := env.RequestSvc.Create(context.Background(), resident.ID, items, ref)
	require.NoError(t, err)
	return req
}

func TestCreateRequestPricesItems(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)

	req := createPaid(t, env, alice,
		testutil.Weight(models.WasteFood, 2),
		testutil.Weight(models.WasteCardboard, 1.5),
		testutil.Package(models.WastePolythene, models.PackageSmall, 1),
	)

	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, models.PaymentPaid, req.PaymentStatus)
	assert.Equal(t, 100.0+150.0+300.0, req.TotalPrice)

	var sum float64
	for _, item := range req.Items {
		sum += item.LineTotal
	}
	assert.Equal(t, req.TotalPrice, sum)
}

func TestCreateRequestRejectsBadInput(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	ctx := context.Background()
	ref := env.Gateway.Paid(100, alice.ID)

	cases := map[string][]models.WasteItem{
		"empty":         nil,
		"unknown type":  {testutil.Weight("glass", 1)},
		"negative":      {testutil.Weight(models.WasteFood, -1)},
		"zero quantity": {testutil.Package(models.WasteFood, models.PackageLarge, 0)},
		"zero total":    {testutil.Weight(models.WasteFood, 0)},
	}
	for name, items := range cases {
		_, err := env.RequestSvc.Create(ctx, alice.ID, items, ref)
		assert.Equal(t, 400, apperr.HTTPStatus(err), name)
	}
}

func TestCreateRequestVerifiesPayment(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	mallory := env.CreateTestUser(t, "mallory", models.RoleResident)
	ctx := context.Background()
	items := []models.WasteItem{testutil.Weight(models.WasteFood, 2)}

	unpaid, err := env.Gateway.AuthorizeCharge(ctx, 10000, "lkr", map[string]string{"userId": alice.ID.Hex()})
	require.NoError(t, err)

	cases := map[string]string{
		"no reference":   "",
		"unknown":        "pi_missing",
		"not captured":   unpaid.Reference,
		"wrong amount":   env.Gateway.Paid(5000, alice.ID),
		"someone else's": env.Gateway.Paid(10000, mallory.ID),
	}
	for name, ref := range cases {
		_, err := env.RequestSvc.Create(ctx, alice.ID, items, ref)
		assert.True(t, errors.Is(err, apperr.ErrPaymentNotConfirmed), name)
	}

	all, err := env.RequestSvc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRequestRejectsReusedPayment(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	ctx := context.Background()
	items := []models.WasteItem{testutil.Weight(models.WasteFood, 2)}

	ref := env.Gateway.Paid(10000, alice.ID)
	_, err := env.RequestSvc.Create(ctx, alice.ID, items, ref)
	require.NoError(t, err)

	_, err = env.RequestSvc.Create(ctx, alice.ID, items, ref)
	assert.True(t, errors.Is(err, apperr.ErrPaymentReused))
}

func TestAssignRequest(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	bob := env.CreateTestUser(t, "bob", models.RoleCollector)
	ctx := context.Background()
	req := createPaid(t, env, alice, testutil.Weight(models.WasteFood, 2))

	_, err := env.RequestSvc.Assign(ctx, req.ID, alice.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = env.RequestSvc.Assign(ctx, primitive.NewObjectID(), bob.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	assigned, err := env.RequestSvc.Assign(ctx, req.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, assigned.Status)
	require.NotNil(t, assigned.AssignedCollectorID)
	assert.Equal(t, bob.ID, *assigned.AssignedCollectorID)

	_, err = env.RequestSvc.Assign(ctx, req.ID, bob.ID)
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))

	mine, err := env.RequestSvc.ListByCollector(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, req.ID, mine[0].ID)
}

func TestCompleteStrictPolicy(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	bob := env.CreateTestUser(t, "bob", models.RoleCollector)
	carol := env.CreateTestUser(t, "carol", models.RoleCollector)
	ctx := context.Background()
	req := createPaid(t, env, alice, testutil.Weight(models.WasteFood, 2))

	_, err := env.RequestSvc.Complete(ctx, req.ID, identity(bob))
	assert.True(t, errors.Is(err, apperr.ErrInvalidState), "pending cannot be completed")

	_, err = env.RequestSvc.Assign(ctx, req.ID, bob.ID)
	require.NoError(t, err)

	_, err = env.RequestSvc.Complete(ctx, req.ID, identity(carol))
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	done, err := env.RequestSvc.Complete(ctx, req.ID, identity(bob))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	_, err = env.RequestSvc.Complete(ctx, req.ID, identity(carol))
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))

	again, err := env.RequestSvc.Complete(ctx, req.ID, identity(bob))
	require.NoError(t, err)
	assert.Equal(t, done.CompletedAt, again.CompletedAt)

	entries := env.Ledger.All()
	require.Len(t, entries, 1)
	assert.Equal(t, req.ID, *entries[0].RequestID)
	assert.Equal(t, bob.ID, entries[0].CollectorID)
	assert.Equal(t, alice.ID, entries[0].ResidentID)
	assert.Equal(t, 2.0, entries[0].Items[0].Kilograms)
}

func TestCompleteLenientPolicy(t *testing.T) {
	cfg := testutil.GetTestConfig()
	cfg.CompletionPolicy = config.CompletionLenient
	env := testutil.NewEnv(cfg)
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	bob := env.CreateTestUser(t, "bob", models.RoleCollector)
	ctx := context.Background()
	req := createPaid(t, env, alice, testutil.Weight(models.WasteFood, 2))

	done, err := env.RequestSvc.Complete(ctx, req.ID, identity(bob))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, bob.ID, *done.AssignedCollectorID)

	carol := env.CreateTestUser(t, "carol", models.RoleCollector)
	_, err = env.RequestSvc.Complete(ctx, req.ID, identity(carol))
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))
	assert.Len(t, env.Ledger.All(), 1)
}

// failingLedger fails the first UpsertForRequest and delegates afterwards.
type failingLedger struct {
	*testutil.Ledger
	failures int
}

func (l *failingLedger) UpsertForRequest(ctx context.Context, entry *models.CollectionEntry) error {
	if l.failures > 0 {
		l.failures--
		return apperr.Upstream("failed to record collection", errors.New("store down"))
	}
	return l.Ledger.UpsertForRequest(ctx, entry)
}

func TestCompleteRetryRecordsLedgerAfterFailure(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	bob := env.CreateTestUser(t, "bob", models.RoleCollector)
	ctx := context.Background()

	ledger := &failingLedger{Ledger: env.Ledger, failures: 1}
	ledgerSvc := services.NewLedgerService(ledger, env.Users, env.Config.Tariff, env.Clock.Now, env.Logger)
	requestSvc := services.NewRequestService(env.Requests, env.Users, ledgerSvc, env.PaymentSvc,
		env.Config.Tariff, env.Config.CompletionPolicy, env.Clock.Now, env.Logger)

	req := createPaid(t, env, alice, testutil.Weight(models.WasteFood, 2))
	_, err := requestSvc.Assign(ctx, req.ID, bob.ID)
	require.NoError(t, err)

	_, err = requestSvc.Complete(ctx, req.ID, identity(bob))
	require.Error(t, err)
	assert.Empty(t, env.Ledger.All())

	done, err := requestSvc.Complete(ctx, req.ID, identity(bob))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	entries := env.Ledger.All()
	require.Len(t, entries, 1)
	assert.Equal(t, req.ID, *entries[0].RequestID)
	assert.Equal(t, bob.ID, entries[0].CollectorID)
}

func TestCompleteRequiresCollector(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	req := createPaid(t, env, alice, testutil.Weight(models.WasteFood, 2))

	_, err := env.RequestSvc.Complete(context.Background(), req.ID, identity(alice))
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestDeleteOnlyCompleted(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	bob := env.CreateTestUser(t, "bob", models.RoleCollector)
	ctx := context.Background()
	req := createPaid(t, env, alice, testutil.Weight(models.WasteFood, 2))

	err := env.RequestSvc.Delete(ctx, req.ID)
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))

	_, err = env.RequestSvc.Assign(ctx, req.ID, bob.ID)
	require.NoError(t, err)
	err = env.RequestSvc.Delete(ctx, req.ID)
	assert.True(t, errors.Is(err, apperr.ErrInvalidState))

	still, err := env.RequestSvc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, still.Status)

	_, err = env.RequestSvc.Complete(ctx, req.ID, identity(bob))
	require.NoError(t, err)
	require.NoError(t, env.RequestSvc.Delete(ctx, req.ID))

	_, err = env.RequestSvc.Get(ctx, req.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListByResident(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	ctx := context.Background()

	none, err := env.RequestSvc.ListByResident(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	first := createPaid(t, env, alice, testutil.Weight(models.WasteFood, 1))
	env.Clock.Advance(1)
	second := createPaid(t, env, alice, testutil.Weight(models.WasteFood, 2))

	mine, err := env.RequestSvc.ListByResident(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}
