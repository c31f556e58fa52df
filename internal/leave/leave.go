package leave

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus accepts the three known statuses.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), true
	}
	return "", false
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether the state machine allows from -> to.
// Only pending requests move, and only to a terminal status.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to.IsTerminal()
}

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(validation.DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(validation.DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

type LeaveRequest struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	UserName  string     `json:"user_name"`
	StartDate Date       `json:"start_date"`
	EndDate   Date       `json:"end_date"`
	Reason    string     `json:"reason"`
	Status    Status     `json:"status"`
	DecidedBy *int64     `json:"decided_by,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"-"`
}

func ToDataModel(lr *LeaveRequest) *leaveDatamodel.LeaveRequest {
	return &leaveDatamodel.LeaveRequest{
		ID:        lr.ID,
		UserID:    lr.UserID,
		UserName:  lr.UserName,
		StartDate: lr.StartDate.Time,
		EndDate:   lr.EndDate.Time,
		Reason:    lr.Reason,
		Status:    string(lr.Status),
		DecidedBy: lr.DecidedBy,
		DecidedAt: lr.DecidedAt,
		CreatedAt: lr.CreatedAt,
		UpdatedAt: lr.UpdatedAt,
	}
}

func FromDataModel(m *leaveDatamodel.LeaveRequest) *LeaveRequest {
	return &LeaveRequest{
		ID:        m.ID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		StartDate: NewDate(m.StartDate),
		EndDate:   NewDate(m.EndDate),
		Reason:    m.Reason,
		Status:    Status(m.Status),
		DecidedBy: m.DecidedBy,
		DecidedAt: m.DecidedAt,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
