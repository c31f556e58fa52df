package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveCreated       = "leave.created"
	EventTypeLeaveStatusChanged = "leave.status_changed"
)

type LeaveCreatedEvent struct {
	BaseEvent
	LeaveRequestID int64 `json:"leave_request_id"`
	UserID         int64 `json:"user_id"`
}

func NewLeaveCreatedEvent(leaveRequestID, userID int64, startDate, endDate string) *LeaveCreatedEvent {
	return &LeaveCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"leave_request_id": leaveRequestID,
				"user_id":          userID,
				"start_date":       startDate,
				"end_date":         endDate,
			},
		},
		LeaveRequestID: leaveRequestID,
		UserID:         userID,
	}
}

// LeaveStatusChangedEvent records a decision on a pending request.
type LeaveStatusChangedEvent struct {
	BaseEvent
	LeaveRequestID int64  `json:"leave_request_id"`
	OwnerID        int64  `json:"owner_id"`
	DecidedBy      int64  `json:"decided_by"`
	Status         string `json:"status"`
}

func NewLeaveStatusChangedEvent(leaveRequestID, ownerID, decidedBy int64, status string) *LeaveStatusChangedEvent {
	return &LeaveStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"leave_request_id": leaveRequestID,
				"owner_id":         ownerID,
				"decided_by":       decidedBy,
				"status":           status,
			},
		},
		LeaveRequestID: leaveRequestID,
		OwnerID:        ownerID,
		DecidedBy:      decidedBy,
		Status:         status,
	}
}
