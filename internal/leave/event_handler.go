package leave

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal/core/events"
)

// Recorder receives lifecycle counts from the event subscribers.
type Recorder interface {
	LeaveCreated()
	LeaveStatusChanged(status string)
}

// EventHandler subscribes to the leave lifecycle events. It writes an audit
// log line per event and feeds the metrics recorder.
type EventHandler struct {
	recorder Recorder
	logger   *slog.Logger
}

func NewEventHandler(recorder Recorder, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		recorder: recorder,
		logger:   logger,
	}
}

func (h *EventHandler) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeLeaveCreated, h.HandleLeaveCreated)
	bus.Subscribe(events.EventTypeLeaveStatusChanged, h.HandleLeaveStatusChanged)
}

func (h *EventHandler) HandleLeaveCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	h.logger.Info("audit: leave request created",
		"event_id", e.EventID(),
		"leave_request_id", e.LeaveRequestID,
		"user_id", e.UserID)

	if h.recorder != nil {
		h.recorder.LeaveCreated()
	}
	return nil
}

func (h *EventHandler) HandleLeaveStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	h.logger.Info("audit: leave request decided",
		"event_id", e.EventID(),
		"leave_request_id", e.LeaveRequestID,
		"owner_id", e.OwnerID,
		"decided_by", e.DecidedBy,
		"status", e.Status)

	if h.recorder != nil {
		h.recorder.LeaveStatusChanged(e.Status)
	}
	return nil
}
