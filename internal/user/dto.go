package user

import (
	"strings"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	"github.com/frahmantamala/leave-management/internal/core/identity"
)

const (
	MaxNameLength     = 100
	MaxEmailLength    = 120
	MaxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
)

type RegisterDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *RegisterDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = NormalizeEmail(d.Email)
	d.Role = strings.TrimSpace(d.Role)
}

// Validate checks the normalized DTO and resolves the requested role.
// An omitted role registers an employee.
func (d RegisterDTO) Validate() (identity.Role, error) {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(MaxNameLength)
	v.Field("email", d.Email).Required().MaxLength(MaxEmailLength).Email()
	v.Field("password", d.Password).Required().MaxBytes(MaxPasswordLength)
	if appErr := v.Validate(); appErr != nil {
		return "", appErr
	}

	if d.Role == "" {
		return identity.RoleEmployee, nil
	}
	role, ok := identity.ParseRole(d.Role)
	if !ok {
		return "", errors.NewValidationFieldError("role", "Invalid role. Must be employee or admin", errors.ErrCodeInvalidRole)
	}
	return role, nil
}
