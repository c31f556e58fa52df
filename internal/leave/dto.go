package leave

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

const MaxReasonLength = 1000

type CreateLeaveDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// ParsedLeave is a CreateLeaveDTO that passed validation.
type ParsedLeave struct {
	StartDate Date
	EndDate   Date
	Reason    string
}

// Validate checks the request against today's date. Past start dates are
// rejected only when rejectPast is set.
func (d CreateLeaveDTO) Validate(today time.Time, rejectPast bool) (*ParsedLeave, error) {
	v := validation.NewValidator()
	v.Field("start_date", d.StartDate).Required().Date()
	v.Field("end_date", d.EndDate).Required().Date()
	v.Field("reason", d.Reason).Required().MaxLength(MaxReasonLength)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	start, appErr := validation.ParseDate("start_date", d.StartDate)
	if appErr != nil {
		return nil, appErr
	}
	end, appErr := validation.ParseDate("end_date", d.EndDate)
	if appErr != nil {
		return nil, appErr
	}

	if end.Before(start) {
		return nil, errors.NewValidationFieldError("end_date", "End date must be after start date", errors.ErrCodeInvalidDateRange)
	}
	if rejectPast && start.Before(NewDate(today).Time) {
		return nil, errors.NewValidationFieldError("start_date", "Start date cannot be in the past", errors.ErrCodeInvalidDateRange)
	}

	return &ParsedLeave{
		StartDate: NewDate(start),
		EndDate:   NewDate(end),
		Reason:    strings.TrimSpace(d.Reason),
	}, nil
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

// Decision returns the requested terminal status.
func (d UpdateStatusDTO) Decision() (Status, error) {
	raw := strings.ToLower(strings.TrimSpace(d.Status))
	if raw == "" {
		return "", errors.NewValidationError("Status is required", errors.ErrCodeInvalidStatus)
	}
	status, ok := ParseStatus(raw)
	if !ok || !status.IsTerminal() {
		return "", errors.ErrInvalidStatus
	}
	return status, nil
}

type ListResponse struct {
	LeaveRequests []*LeaveRequest `json:"leave_requests"`
}

// MutationResponse wraps the record returned by create and status update.
type MutationResponse struct {
	Message      string        `json:"message"`
	LeaveRequest *LeaveRequest `json:"leave_request"`
}
