package auth

import (
	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/identity"
)

type Action string

const (
	ActionCreateLeaveRequest       Action = "create_leave_request"
	ActionListLeaveRequests        Action = "list_leave_requests"
	ActionUpdateLeaveRequestStatus Action = "update_leave_request_status"
)

// Authorize decides from the principal's role alone. Ownership is enforced
// through ListScope and by taking the owner from the principal on create.
func Authorize(p identity.Principal, action Action) bool {
	switch p.Role {
	case identity.RoleAdmin:
		switch action {
		case ActionCreateLeaveRequest, ActionListLeaveRequests, ActionUpdateLeaveRequestStatus:
			return true
		}
	case identity.RoleEmployee:
		switch action {
		case ActionCreateLeaveRequest, ActionListLeaveRequests:
			return true
		}
	}
	return false
}

func ListScope(p identity.Principal) identity.Scope {
	switch p.Role {
	case identity.RoleAdmin:
		return identity.AllRecords()
	default:
		return identity.OwnedBy(p.UserID)
	}
}

// DeniedError is the error returned when Authorize refuses the action.
func DeniedError(action Action) error {
	if action == ActionUpdateLeaveRequestStatus {
		return errors.ErrAdminRequired
	}
	return errors.ErrActionNotPermitted
}
