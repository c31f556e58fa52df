package auth

import (
	"context"

	"github.com/frahmantamala/leave-management/internal/core/identity"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenGenerator issues and parses session tokens.
type TokenGenerator interface {
	GenerateAccessToken(p identity.Principal) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// UserStore is the part of the credential store the token service needs.
type UserStore interface {
	Verify(ctx context.Context, email, password string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// LoginRecorder observes login outcomes.
type LoginRecorder interface {
	LoginAttempt(result string)
}

const (
	LoginResultSuccess            = "success"
	LoginResultInvalidCredentials = "invalid_credentials"
	LoginResultError              = "error"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error)
	Authenticate(ctx context.Context, token string) (identity.Principal, error)
}

type noopLoginRecorder struct{}

func (noopLoginRecorder) LoginAttempt(string) {}
