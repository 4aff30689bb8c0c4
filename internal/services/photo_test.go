package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/services"
	"github.com/markjakearzadon/trashmate-gobackend/internal/testutil"
)

func TestPhotoUploadURL(t *testing.T) {
	env := testutil.NewEnv(testutil.GetTestConfig())
	alice := env.CreateTestUser(t, "alice", models.RoleResident)
	ctx := context.Background()

	_, err := env.PhotoSvc.UploadURL(ctx, alice.ID, "application/pdf")
	assert.Equal(t, 400, apperr.HTTPStatus(err))

	up, err := env.PhotoSvc.UploadURL(ctx, alice.ID, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.Key, "profile-photos/"+alice.ID.Hex()+"/"))
	assert.Equal(t, "https://photos-test.s3.test/"+up.Key, up.URL)
	assert.Equal(t, 5*time.Minute, env.Photos.TTL)
	assert.Equal(t, "image/png", *env.Photos.Last.ContentType)

	user, err := env.Users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, up.Key, user.PhotoKey)
}

func TestPhotoServiceDisabledWithoutBucket(t *testing.T) {
	assert.Nil(t, services.NewPhotoService(testutil.NewUsers(), &testutil.Presigner{}, "", time.Minute, nil, zap.NewNop()))
}
