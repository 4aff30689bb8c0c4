package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/markjakearzadon/trashmate-gobackend/internal/apperr"
	"github.com/markjakearzadon/trashmate-gobackend/internal/auth"
	"github.com/markjakearzadon/trashmate-gobackend/internal/models"
)

const minPasswordLength = 6

// Registration is the input to Register.
type Registration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

// AuthService owns accounts and sessions.
type AuthService struct {
	users   UserStore
	tokens  *auth.Tokens
	revoker auth.Revoker
	now     func() time.Time
	logger  *zap.Logger
}

func NewAuthService(users UserStore, tokens *auth.Tokens, revoker auth.Revoker, now func() time.Time, logger *zap.Logger) *AuthService {
	if revoker == nil {
		revoker = auth.NopRevoker{}
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{users: users, tokens: tokens, revoker: revoker, now: now, logger: logger}
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, in Registration) (string, error) {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return "", apperr.Validation("Name, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return "", apperr.Validation("Invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return "", apperr.Validation("Password must be at least 6 characters")
	}
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return "", apperr.Validation("Invalid role")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", apperr.ErrDuplicateEmail
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", apperr.Upstream("failed to hash password", err)
	}

	now := s.now()
	user := &models.User{
		Name:        name,
		Email:       email,
		HPassword:   hash,
		Role:        role,
		Address:     strings.TrimSpace(in.Address),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", err
	}
	s.logger.Info("user registered",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", string(role)),
	)
	return s.issue(user)
}

// Login checks credentials and returns a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.ErrInvalidCredentials
		}
		return "", err
	}
	if !auth.CheckPassword(user.HPassword, password) {
		return "", apperr.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (string, error) {
	tok, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", apperr.Upstream("failed to sign token", err)
	}
	return tok, nil
}

// Verify resolves a token to the caller it was issued for.
func (s *AuthService) Verify(ctx context.Context, token string) (auth.Identity, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Identity{}, err
	}
	revoked, err := s.revoker.Revoked(ctx, id.TokenID)
	if err != nil {
		return auth.Identity{}, apperr.Upstream("failed to check token", err)
	}
	if revoked {
		return auth.Identity{}, apperr.Wrap(apperr.ErrInvalidToken, errors.New("token revoked"))
	}
	return id, nil
}

// Logout revokes the caller's token until it expires.
func (s *AuthService) Logout(ctx context.Context, id auth.Identity) error {
	if err := s.revoker.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return apperr.Upstream("failed to revoke token", err)
	}
	return nil
}

// Profile returns the caller's account.
func (s *AuthService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	return user, err
}

// UpdateProfile changes the self-editable fields of the caller's account.
func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperr.Validation("Name must not be empty")
		}
		update.Name = &name
	}
	user, err := s.users.UpdateProfile(ctx, userID, update, s.now())
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	return user, err
}

// Collectors lists every collector account.
func (s *AuthService) Collectors(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.users.ListByRole(ctx, models.RoleCollector)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out, nil
}
