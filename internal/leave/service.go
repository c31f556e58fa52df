package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/core/identity"
)

// Repository interface defines the data access methods for leave requests
type Repository interface {
	Create(ctx context.Context, lr *LeaveRequest) error
	List(ctx context.Context, scope identity.Scope) ([]*LeaveRequest, error)
	GetByID(ctx context.Context, id int64) (*LeaveRequest, error)
	// TransitionStatus moves a request from one status to another in a single
	// conditional write. It returns ErrLeaveNotFound or ErrLeaveNotPending
	// when no row matched.
	TransitionStatus(ctx context.Context, id int64, from, to Status, decidedBy int64, decidedAt time.Time) (*LeaveRequest, error)
}

type Options struct {
	RejectPastStartDates bool
	Now                  func() time.Time
}

// Service handles the leave request lifecycle
type Service struct {
	repo       Repository
	events     events.Publisher
	logger     *slog.Logger
	now        func() time.Time
	rejectPast bool
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:       repo,
		events:     publisher,
		logger:     logger,
		now:        now,
		rejectPast: opts.RejectPastStartDates,
	}
}

// Create files a pending request owned by the principal.
func (s *Service) Create(ctx context.Context, owner identity.Principal, dto CreateLeaveDTO) (*LeaveRequest, error) {
	if !auth.Authorize(owner, auth.ActionCreateLeaveRequest) {
		s.logger.Warn("create leave request denied", "user_id", owner.UserID, "role", owner.Role)
		return nil, auth.DeniedError(auth.ActionCreateLeaveRequest)
	}

	parsed, err := dto.Validate(s.now(), s.rejectPast)
	if err != nil {
		s.logger.Debug("leave request validation failed", "error", err, "user_id", owner.UserID)
		return nil, err
	}

	lr := &LeaveRequest{
		UserID:    owner.UserID,
		UserName:  owner.Name,
		StartDate: parsed.StartDate,
		EndDate:   parsed.EndDate,
		Reason:    parsed.Reason,
		Status:    StatusPending,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, lr); err != nil {
		s.logger.Error("failed to create leave request", "error", err, "user_id", owner.UserID)
		return nil, err
	}

	s.logger.Info("leave request created",
		"leave_request_id", lr.ID,
		"user_id", owner.UserID,
		"start_date", lr.StartDate.String(),
		"end_date", lr.EndDate.String())

	s.publish(ctx, events.NewLeaveCreatedEvent(lr.ID, lr.UserID, lr.StartDate.String(), lr.EndDate.String()))

	return lr, nil
}

// List returns the requests visible to the principal, newest first.
func (s *Service) List(ctx context.Context, p identity.Principal) ([]*LeaveRequest, error) {
	if !auth.Authorize(p, auth.ActionListLeaveRequests) {
		s.logger.Warn("list leave requests denied", "user_id", p.UserID, "role", p.Role)
		return nil, auth.DeniedError(auth.ActionListLeaveRequests)
	}

	requests, err := s.repo.List(ctx, auth.ListScope(p))
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err, "user_id", p.UserID)
		return nil, err
	}

	return requests, nil
}

// SetStatus decides a pending request. Racing decisions on the same request
// produce exactly one winner; the others see ErrLeaveNotPending.
func (s *Service) SetStatus(ctx context.Context, id int64, dto UpdateStatusDTO, actor identity.Principal) (*LeaveRequest, error) {
	if !auth.Authorize(actor, auth.ActionUpdateLeaveRequestStatus) {
		s.logger.Warn("status update denied: admin required",
			"leave_request_id", id,
			"user_id", actor.UserID,
			"role", actor.Role)
		return nil, auth.DeniedError(auth.ActionUpdateLeaveRequestStatus)
	}

	status, err := dto.Decision()
	if err != nil {
		return nil, err
	}

	lr, err := s.repo.TransitionStatus(ctx, id, StatusPending, status, actor.UserID, s.now().UTC())
	if err != nil {
		s.logger.Warn("leave request status update failed",
			"leave_request_id", id,
			"requested_status", status,
			"error", err)
		return nil, err
	}

	s.logger.Info("leave request decided",
		"leave_request_id", lr.ID,
		"status", lr.Status,
		"decided_by", actor.UserID)

	s.publish(ctx, events.NewLeaveStatusChangedEvent(lr.ID, lr.UserID, actor.UserID, string(lr.Status)))

	return lr, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
