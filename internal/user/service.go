package user

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"sync"

	errors "github.com/frahmantamala/leave-management/internal"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// Service is the credential store.
type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	dto.Normalize()
	role, err := dto.Validate()
	if err != nil {
		s.logger.Debug("registration validation failed", "error", err)
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	switch {
	case err == nil && existing != nil:
		s.logger.Warn("registration rejected: email already registered", "email", dto.Email)
		return nil, errors.ErrEmailTaken
	case err != nil && !stdErrors.Is(err, errors.ErrUserNotFound):
		s.logger.Error("failed to look up email", "error", err)
		return nil, errors.NewInternalError("failed to register user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if stdErrors.Is(err, errors.ErrEmailTaken) {
			return nil, errors.ErrEmailTaken
		}
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, errors.NewInternalError("failed to register user", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Verify returns the user owning the credentials. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials after a bcrypt comparison.
func (s *Service) Verify(ctx context.Context, email, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !stdErrors.Is(err, errors.ErrUserNotFound) {
			s.logger.Error("failed to look up user for login", "error", err)
			return nil, errors.NewInternalError("failed to verify credentials", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, errors.ErrUserNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.NewInternalError("failed to get user", err)
	}
	return u, nil
}

func (s *Service) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to prepare dummy hash", "error", err)
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
