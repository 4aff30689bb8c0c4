package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/markjakearzadon/trashmate-gobackend/internal/auth"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
	"github.com/markjakearzadon/trashmate-gobackend/internal/testutil"
)

func TestWithRecovery(t *testing.T) {
	h := WithRecovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server error"}`, w.Body.String())
}

func TestWithRequestIDKeepsClientID(t *testing.T) {
	var seen string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRequireRoles(t *testing.T) {
	called := false
	h := RequireRoles(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)

	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{Role: models.RoleCollector}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)

	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{Role: models.RoleAdmin}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestRouterLogsPanickedRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	env := testutil.NewEnv(testutil.GetTestConfig())
	router := NewRouter(Services{Auth: env.Auth}, zap.New(core))
	router.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	assert.EqualValues(t, http.StatusInternalServerError, completed[0].ContextMap()["status"])
}
