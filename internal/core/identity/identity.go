// Package identity holds the role enumeration and the authenticated
// principal shared by the credential store, the token service and the
// authorization guard.
package identity

import "strings"

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// ParseRole accepts the two known roles, case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleEmployee:
		return RoleEmployee, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Principal is the identity derived from a validated token.
type Principal struct {
	UserID int64
	Name   string
	Email  string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Scope bounds which leave requests a principal may read.
type Scope struct {
	All     bool
	OwnerID int64
}

func AllRecords() Scope {
	return Scope{All: true}
}

func OwnedBy(userID int64) Scope {
	return Scope{OwnerID: userID}
}
