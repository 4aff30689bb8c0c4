package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/auth"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
	"github.com/markjakearzadon/trashmate-gobackend/internal/testutil"
)

func TestRegisterLoginVerify(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	ctx := context.Background()

	tok, err := env.Auth.Register(ctx, services.Registration{
		Name:     "Alice",
		Email:    " Alice@Example.com ",
		Password: "secret1",
	})
	require.NoError(t, err)

	regID, err := env.Auth.Verify(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, models.RoleResident, regID.Role)

	user, err := env.Users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.HPassword)

	tok, err = env.Auth.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	id, err := env.Auth.Verify(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, models.RoleResident, id.Role)

	env.Clock.Advance(59 * time.Minute)
	_, err = env.Auth.Verify(ctx, tok)
	assert.NoError(t, err)

	env.Clock.Advance(2 * time.Minute)
	_, err = env.Auth.Verify(ctx, tok)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))
}

func TestRegisterDuplicateEmailIgnoresCase(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	ctx := context.Background()

	_, err := env.Auth.Register(ctx, services.Registration{Name: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = env.Auth.Register(ctx, services.Registration{Name: "Alice 2", Email: "ALICE@example.com", Password: "secret2"})
	assert.True(t, errors.Is(err, apperr.ErrDuplicateEmail))
}

func TestRegisterValidation(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	ctx := context.Background()

	cases := map[string]services.Registration{
		"missing name":   {Email: "a@example.com", Password: "secret1"},
		"bad email":      {Name: "A", Email: "nope", Password: "secret1"},
		"short password": {Name: "A", Email: "a@example.com", Password: "123"},
		"unknown role":   {Name: "A", Email: "a@example.com", Password: "secret1", Role: "janitor"},
	}
	for name, in := range cases {
		_, err := env.Auth.Register(ctx, in)
		assert.Equal(t, 400, apperr.HTTPStatus(err), name)
	}
}

func TestRegisterAcceptsLegacyRoleNames(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	ctx := context.Background()

	tok, err := env.Auth.Register(ctx, services.Registration{
		Name: "Bob", Email: "bob@example.com", Password: "secret1", Role: "garbageCollector",
	})
	require.NoError(t, err)
	id, err := env.Auth.Verify(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCollector, id.Role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	env.CreateTestUser(t, "alice", models.RoleResident)
	ctx := context.Background()

	_, err := env.Auth.Login(ctx, "alice@example.com", "wrong")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))

	_, err = env.Auth.Login(ctx, "nobody@example.com", "password")
	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
}

func TestLogoutRevokesToken(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := services.NewAuthService(env.Users, env.Tokens, auth.NewRedisRevoker(client, env.Clock.Now), env.Clock.Now, zap.NewNop())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	ctx := context.Background()

	tok, err := svc.Login(ctx, alice.Email, "password")
	require.NoError(t, err)
	id, err := svc.Verify(ctx, tok)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, id))
	_, err = svc.Verify(ctx, tok)
	assert.True(t, errors.Is(err, apperr.ErrInvalidToken))

	other, err := svc.Login(ctx, alice.Email, "password")
	require.NoError(t, err)
	_, err = svc.Verify(ctx, other)
	assert.NoError(t, err)
}

func TestProfileAndCollectors(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	bob := env.CreateTestUser(t, "bob", models.RoleCollector)
	ctx := context.Background()

	name := "Alice Smith"
	addr := "12 Main St"
	updated, err := env.Auth.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Name: &name, Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, "12 Main St", updated.Address)

	blank := " "
	_, err = env.Auth.UpdateProfile(ctx, alice.ID, models.ProfileUpdate{Name: &blank})
	assert.Equal(t, 400, apperr.HTTPStatus(err))

	got, err := env.Auth.Profile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", got.Name)

	collectors, err := env.Auth.Collectors(ctx)
	require.NoError(t, err)
	require.Len(t, collectors, 1)
	assert.Equal(t, bob.ID, collectors[0].ID)
}
