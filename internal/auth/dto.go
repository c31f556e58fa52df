package auth

import (
	"strings"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/user"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string     `json:"access_token"`
	User        *user.User `json:"user"`
}

func (d LoginDTO) Validate() error {
	if strings.TrimSpace(d.Email) == "" || d.Password == "" {
		return errors.NewValidationError("Missing email or password", errors.ErrCodeValidationFailed)
	}
	return nil
}
