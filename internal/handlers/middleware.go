package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/auth"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFrom returns the id assigned by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestID tags each request with an id, reusing the client's
// X-Request-ID when present.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// WithLogging logs the start and completion of each request.
func WithLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := RequestIDFrom(r.Context())

			logger.Debug("request started",
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
			)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info("request completed",
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// WithRecovery turns a panic into a generic 500.
func WithRecovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error("panic serving request",
						zap.String("request_id", RequestIDFrom(r.Context())),
						zap.Any("panic", p),
						zap.Stack("stack"),
					)
					JSONResponse(w, http.StatusInternalServerError, MessageResponse{Message: "Server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// TokenVerifier resolves a bearer token to its caller.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

// Authenticate requires a valid bearer token and stores the caller on the
// request context.
func Authenticate(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				JSONResponse(w, http.StatusUnauthorized, MessageResponse{Message: "Authorization header missing, authorization denied"})
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			token = strings.TrimSpace(token)
			if header == "Bearer" || (ok && token == "") {
				JSONResponse(w, http.StatusUnauthorized, MessageResponse{Message: "No token provided, authorization denied"})
				return
			}
			if !ok {
				JSONResponse(w, http.StatusUnauthorized, MessageResponse{Message: apperr.ErrInvalidToken.Message})
				return
			}
			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if !errors.Is(err, apperr.ErrInvalidToken) {
					ErrorResponse(w, r, logger, err)
					return
				}
				JSONResponse(w, http.StatusUnauthorized, MessageResponse{Message: apperr.ErrInvalidToken.Message})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRoles rejects callers whose role is not listed. It runs after
// Authenticate and before the handler body.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromContext(r.Context())
			if !ok || !auth.Allowed(id.Role, roles...) {
				JSONResponse(w, http.StatusForbidden, MessageResponse{Message: apperr.ErrForbidden.Message})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
