package leave

import (
	"context"
	"io"
	"log/slog"

	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type countingRecorder struct {
	created int
	changed map[string]int
}

func (c *countingRecorder) LeaveCreated() {
	c.created++
}

func (c *countingRecorder) LeaveStatusChanged(status string) {
	if c.changed == nil {
		c.changed = map[string]int{}
	}
	c.changed[status]++
}

var _ = ginkgo.Describe("EventHandler", func() {
	var (
		recorder *countingRecorder
		handler  *EventHandler
		bus      *events.EventBus
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		recorder = &countingRecorder{}
		handler = NewEventHandler(recorder, lg)
		bus = events.NewEventBus(lg)
		handler.Register(bus)
		ctx = context.Background()
	})

	ginkgo.It("records created and decided requests", func() {
		gomega.Expect(bus.PublishSync(ctx, events.NewLeaveCreatedEvent(1, 2, "2024-01-10", "2024-01-12"))).To(gomega.Succeed())
		gomega.Expect(bus.PublishSync(ctx, events.NewLeaveStatusChangedEvent(1, 2, 1, "approved"))).To(gomega.Succeed())

		gomega.Expect(recorder.created).To(gomega.Equal(1))
		gomega.Expect(recorder.changed).To(gomega.HaveKeyWithValue("approved", 1))
	})

	ginkgo.It("rejects events of the wrong shape", func() {
		wrong := events.BaseEvent{ID: "x", Type: events.EventTypeLeaveCreated}

		gomega.Expect(handler.HandleLeaveCreated(ctx, wrong)).NotTo(gomega.Succeed())
		gomega.Expect(recorder.created).To(gomega.BeZero())
	})
})
