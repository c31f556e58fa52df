package leave

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/core/identity"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestLeave(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Leave Module Suite")
}

// Mock Repository with the same compare-and-swap semantics as the gorm one
type mockRepository struct {
	mu     sync.Mutex
	rows   map[int64]LeaveRequest
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: map[int64]LeaveRequest{}}
}

func (m *mockRepository) Create(ctx context.Context, lr *LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	lr.ID = m.nextID
	m.rows[lr.ID] = *lr
	return nil
}

func (m *mockRepository) List(ctx context.Context, scope identity.Scope) ([]*LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*LeaveRequest{}
	for _, row := range m.rows {
		if scope.All || row.UserID == scope.OwnerID {
			cp := row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, errors.ErrLeaveNotFound
	}
	return &row, nil
}

func (m *mockRepository) TransitionStatus(ctx context.Context, id int64, from, to Status, decidedBy int64, decidedAt time.Time) (*LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, errors.ErrLeaveNotFound
	}
	if row.Status != from {
		return nil, errors.ErrLeaveNotPending
	}
	row.Status = to
	row.DecidedBy = &decidedBy
	row.DecidedAt = &decidedAt
	m.rows[id] = row
	return &row, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturingPublisher) Publish(ctx context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

var _ = ginkgo.Describe("Leave Service", func() {
	var (
		repo      *mockRepository
		publisher *capturingPublisher
		service   *Service
		ctx       context.Context
		now       time.Time

		alice = identity.Principal{UserID: 1, Name: "alice", Email: "alice@x.com", Role: identity.RoleAdmin}
		bob   = identity.Principal{UserID: 2, Name: "bob", Email: "bob@x.com", Role: identity.RoleEmployee}
		carol = identity.Principal{UserID: 3, Name: "carol", Email: "carol@x.com", Role: identity.RoleEmployee}
	)

	newService := func(rejectPast bool) *Service {
		return NewService(repo, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
			RejectPastStartDates: rejectPast,
			Now: func() time.Time {
				now = now.Add(time.Second)
				return now
			},
		})
	}

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		publisher = &capturingPublisher{}
		now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		service = newService(false)
		ctx = context.Background()
	})

	vacation := CreateLeaveDTO{StartDate: "2024-01-10", EndDate: "2024-01-12", Reason: "  vacation "}

	ginkgo.Describe("Create", func() {
		ginkgo.It("creates a pending request owned by the caller", func() {
			lr, err := service.Create(ctx, bob, vacation)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(lr.Status).To(gomega.Equal(StatusPending))
			gomega.Expect(lr.UserID).To(gomega.Equal(bob.UserID))
			gomega.Expect(lr.UserName).To(gomega.Equal("bob"))
			gomega.Expect(lr.Reason).To(gomega.Equal("vacation"))
			gomega.Expect(lr.StartDate.String()).To(gomega.Equal("2024-01-10"))
			gomega.Expect(lr.CreatedAt.IsZero()).To(gomega.BeFalse())

			gomega.Expect(publisher.events).To(gomega.HaveLen(1))
			gomega.Expect(publisher.events[0].EventType()).To(gomega.Equal(events.EventTypeLeaveCreated))
		})

		ginkgo.It("accepts a single-day request", func() {
			_, err := service.Create(ctx, bob, CreateLeaveDTO{StartDate: "2024-01-10", EndDate: "2024-01-10", Reason: "dentist"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.DescribeTable("rejects invalid requests without persisting anything",
			func(dto CreateLeaveDTO, message string) {
				_, err := service.Create(ctx, bob, dto)

				appErr, ok := errors.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(errors.ErrorTypeValidation))
				gomega.Expect(appErr.GetDetailedMessage()).To(gomega.ContainSubstring(message))
				gomega.Expect(repo.rows).To(gomega.BeEmpty())
				gomega.Expect(publisher.events).To(gomega.BeEmpty())
			},
			ginkgo.Entry("end before start", CreateLeaveDTO{StartDate: "2024-01-12", EndDate: "2024-01-10", Reason: "x"}, "End date must be after start date"),
			ginkgo.Entry("blank reason", CreateLeaveDTO{StartDate: "2024-01-10", EndDate: "2024-01-12", Reason: "   "}, "reason is required"),
			ginkgo.Entry("missing start date", CreateLeaveDTO{EndDate: "2024-01-12", Reason: "x"}, "start_date is required"),
			ginkgo.Entry("malformed date", CreateLeaveDTO{StartDate: "10/01/2024", EndDate: "2024-01-12", Reason: "x"}, "Invalid date format. Use YYYY-MM-DD"),
			ginkgo.Entry("impossible date", CreateLeaveDTO{StartDate: "2024-02-30", EndDate: "2024-03-01", Reason: "x"}, "Invalid date format"),
		)

		ginkgo.It("rejects past start dates only when configured to", func() {
			past := CreateLeaveDTO{StartDate: "2023-12-01", EndDate: "2023-12-02", Reason: "late"}

			_, err := service.Create(ctx, bob, past)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			strict := newService(true)
			_, err = strict.Create(ctx, bob, past)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.Equal("Start date cannot be in the past"))
		})
	})

	ginkgo.Describe("List", func() {
		ginkgo.BeforeEach(func() {
			for _, p := range []identity.Principal{bob, carol, bob} {
				_, err := service.Create(ctx, p, vacation)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
			}
		})

		ginkgo.It("shows employees only their own requests", func() {
			requests, err := service.List(ctx, bob)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(requests).To(gomega.HaveLen(2))
			for _, lr := range requests {
				gomega.Expect(lr.UserID).To(gomega.Equal(bob.UserID))
			}
		})

		ginkgo.It("shows admins every request, newest first", func() {
			requests, err := service.List(ctx, alice)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(requests).To(gomega.HaveLen(3))
			gomega.Expect(requests[0].ID).To(gomega.Equal(int64(3)))
			gomega.Expect(requests[2].ID).To(gomega.Equal(int64(1)))
		})
	})

	ginkgo.Describe("SetStatus", func() {
		var pending *LeaveRequest

		ginkgo.BeforeEach(func() {
			var err error
			pending, err = service.Create(ctx, bob, vacation)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			publisher.events = nil
		})

		ginkgo.It("lets an admin approve a pending request", func() {
			lr, err := service.SetStatus(ctx, pending.ID, UpdateStatusDTO{Status: "approved"}, alice)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(lr.Status).To(gomega.Equal(StatusApproved))
			gomega.Expect(*lr.DecidedBy).To(gomega.Equal(alice.UserID))

			gomega.Expect(publisher.events).To(gomega.HaveLen(1))
			changed, ok := publisher.events[0].(*events.LeaveStatusChangedEvent)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(changed.Status).To(gomega.Equal("approved"))
		})

		ginkgo.It("forbids employees, even on their own request", func() {
			_, err := service.SetStatus(ctx, pending.ID, UpdateStatusDTO{Status: "approved"}, bob)

			gomega.Expect(err).To(gomega.MatchError(errors.ErrAdminRequired))
			stored, _ := repo.GetByID(ctx, pending.ID)
			gomega.Expect(stored.Status).To(gomega.Equal(StatusPending))
		})

		ginkgo.It("treats decided requests as terminal", func() {
			_, err := service.SetStatus(ctx, pending.ID, UpdateStatusDTO{Status: "approved"}, alice)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.SetStatus(ctx, pending.ID, UpdateStatusDTO{Status: "rejected"}, alice)

			gomega.Expect(err).To(gomega.MatchError(errors.ErrLeaveNotPending))
			stored, _ := repo.GetByID(ctx, pending.ID)
			gomega.Expect(stored.Status).To(gomega.Equal(StatusApproved))
		})

		ginkgo.DescribeTable("validates the requested status",
			func(status, message string) {
				_, err := service.SetStatus(ctx, pending.ID, UpdateStatusDTO{Status: status}, alice)

				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.Equal(message))
			},
			ginkgo.Entry("missing", "", "Status is required"),
			ginkgo.Entry("unknown", "cancelled", "Invalid status"),
			ginkgo.Entry("back to pending", "pending", "Invalid status"),
		)

		ginkgo.It("reports unknown ids as not found", func() {
			_, err := service.SetStatus(ctx, 999, UpdateStatusDTO{Status: "rejected"}, alice)
			gomega.Expect(err).To(gomega.MatchError(errors.ErrLeaveNotFound))
		})
	})
})

var _ = ginkgo.Describe("State machine", func() {
	ginkgo.DescribeTable("CanTransition",
		func(from, to Status, allowed bool) {
			gomega.Expect(CanTransition(from, to)).To(gomega.Equal(allowed))
		},
		ginkgo.Entry("pending to approved", StatusPending, StatusApproved, true),
		ginkgo.Entry("pending to rejected", StatusPending, StatusRejected, true),
		ginkgo.Entry("pending to pending", StatusPending, StatusPending, false),
		ginkgo.Entry("approved to rejected", StatusApproved, StatusRejected, false),
		ginkgo.Entry("rejected to approved", StatusRejected, StatusApproved, false),
		ginkgo.Entry("approved to pending", StatusApproved, StatusPending, false),
	)
})
