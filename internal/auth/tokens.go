// Package auth issues and verifies session tokens, hashes passwords and
// decides role capabilities.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

// Claims is the JWT payload.
type Claims struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the verified caller behind a token.
type Identity struct {
	UserID    primitive.ObjectID
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

// Tokens signs and parses HS256 tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token codec. now may be nil to use time.Now.
func NewTokens(secret string, ttl time.Duration, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue signs a token for the user that expires after the configured TTL.
func (t *Tokens) Issue(userID primitive.ObjectID, role models.Role) (string, error) {
	iat := t.now()
	claims := Claims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies the signature, expiry and payload of a token.
func (t *Tokens) Parse(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, apperr.Wrap(apperr.ErrInvalidToken, errors.New("no token"))
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.ErrInvalidToken, err)
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.ErrInvalidToken, err)
	}
	if !claims.Role.Valid() {
		return Identity{}, apperr.Wrap(apperr.ErrInvalidToken, errors.New("unknown role "+string(claims.Role)))
	}
	return Identity{
		UserID:    userID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

type ctxKey struct{}

// WithIdentity stores the verified caller on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
