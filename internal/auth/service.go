package auth

import (
	"context"
	stdErrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/identity"
)

// Service is the token service: it logs users in and turns bearer tokens
// back into principals.
type Service struct {
	users          UserStore
	tokenGenerator TokenGenerator
	metrics        LoginRecorder
	logger         *slog.Logger
}

func NewService(users UserStore, tokenGen TokenGenerator, metrics LoginRecorder, logger *slog.Logger) *Service {
	if metrics == nil {
		metrics = noopLoginRecorder{}
	}
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		metrics:        metrics,
		logger:         logger,
	}
}

func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.Verify(ctx, dto.Email, dto.Password)
	if err != nil {
		if stdErrors.Is(err, errors.ErrInvalidCredentials) {
			s.metrics.LoginAttempt(LoginResultInvalidCredentials)
			s.logger.Info("login rejected", "reason", "invalid_credentials")
			return nil, errors.ErrInvalidCredentials
		}
		s.metrics.LoginAttempt(LoginResultError)
		return nil, err
	}

	token, err := s.tokenGenerator.GenerateAccessToken(u.Principal())
	if err != nil {
		s.metrics.LoginAttempt(LoginResultError)
		s.logger.Error("failed to sign access token", "error", err, "user_id", u.ID)
		return nil, errors.NewInternalError("failed to issue token", err)
	}

	s.metrics.LoginAttempt(LoginResultSuccess)
	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)

	return &LoginResponse{AccessToken: token, User: u}, nil
}

// Authenticate validates a bearer token and resolves it against the current
// user record. A token whose role no longer matches the stored role, or whose
// user is gone, is rejected as invalid.
func (s *Service) Authenticate(ctx context.Context, token string) (identity.Principal, error) {
	if token == "" {
		return identity.Principal{}, errors.ErrMissingToken
	}

	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return identity.Principal{}, err
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if stdErrors.Is(err, errors.ErrUserNotFound) {
			s.logger.Warn("token references unknown user", "user_id", claims.UserID)
			return identity.Principal{}, errors.ErrInvalidToken
		}
		return identity.Principal{}, err
	}

	if u.Role.String() != claims.Role {
		s.logger.Warn("token role does not match stored role",
			"user_id", u.ID,
			"token_role", claims.Role,
			"stored_role", u.Role)
		return identity.Principal{}, errors.ErrInvalidToken
	}

	return u.Principal(), nil
}
