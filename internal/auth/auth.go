package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", repository.ErrUnauthorized)

const DefaultSessionTTL = 30 * 24 * time.Hour

type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	ttl      time.Duration
	cost     int
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(users repository.UserRepository, sessions repository.SessionRepository, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) SignUp(ctx context.Context, req models.SignUpRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		var validationErr validator.ValidationErrors
		if errors.As(err, &validationErr) && validationErr[0].Field() == "Email" {
			return nil, fmt.Errorf("%w: invalid email format", repository.ErrInvalidInput)
		}
		return nil, fmt.Errorf("%w: email and password are required", repository.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", user.UserID)
	return user, nil
}

func (s *Service) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if err := s.validate.Struct(creds); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidInput) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.UserID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", "user_id", user.UserID)
	return session, nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	if _, err := uuid.Parse(token); err != nil {
		return repository.ErrUnauthorized
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to its user id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if _, err := uuid.Parse(token); err != nil {
		return "", repository.ErrUnauthorized
	}

	session, err := s.sessions.GetValid(ctx, token, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", repository.ErrUnauthorized
		}
		return "", err
	}

	return session.UserID, nil
}

// PurgeExpired deletes sessions that can no longer authenticate.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", "count", n)
	}
	return n, nil
}

type ctxKey struct{}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
