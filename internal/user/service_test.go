package user

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/identity"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockRepository struct {
	mu      sync.Mutex
	byID    map[int64]*User
	nextID  int64
	failErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{byID: map[int64]*User{}}
}

func (m *mockRepository) Create(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return errors.ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, errors.ErrUserNotFound
}

var _ = ginkgo.Describe("Credential Service", func() {
	var (
		repo    *mockRepository
		service *Service
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		service = NewService(repo, bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)))
		ctx = context.Background()
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("stores a bcrypt hash and never the password", func() {
			u, err := service.Register(ctx, RegisterDTO{Name: "bob", Email: "bob@x.com", Password: "s3cret", Role: "employee"})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(u.ID).To(gomega.BeNumerically(">", 0))
			gomega.Expect(u.PasswordHash).NotTo(gomega.Equal("s3cret"))
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret"))).To(gomega.Succeed())
		})

		ginkgo.It("normalizes email and defaults the role to employee", func() {
			u, err := service.Register(ctx, RegisterDTO{Name: "  Carol ", Email: "  Carol@X.com ", Password: "pw"})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(u.Email).To(gomega.Equal("carol@x.com"))
			gomega.Expect(u.Name).To(gomega.Equal("Carol"))
			gomega.Expect(u.Role).To(gomega.Equal(identity.RoleEmployee))
		})

		ginkgo.It("rejects an email that differs only in case", func() {
			_, err := service.Register(ctx, RegisterDTO{Name: "alice", Email: "alice@x.com", Password: "pw", Role: "admin"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.Register(ctx, RegisterDTO{Name: "alice2", Email: "ALICE@x.com", Password: "pw"})

			gomega.Expect(err).To(gomega.MatchError(errors.ErrEmailTaken))
		})

		ginkgo.DescribeTable("rejects malformed input",
			func(dto RegisterDTO, message string) {
				_, err := service.Register(ctx, dto)

				appErr, ok := errors.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(errors.ErrorTypeValidation))
				gomega.Expect(appErr.GetDetailedMessage()).To(gomega.ContainSubstring(message))
				gomega.Expect(repo.byID).To(gomega.BeEmpty())
			},
			ginkgo.Entry("missing name", RegisterDTO{Email: "a@x.com", Password: "pw"}, "name is required"),
			ginkgo.Entry("missing email", RegisterDTO{Name: "a", Password: "pw"}, "email is required"),
			ginkgo.Entry("missing password", RegisterDTO{Name: "a", Email: "a@x.com"}, "password is required"),
			ginkgo.Entry("malformed email", RegisterDTO{Name: "a", Email: "not-an-email", Password: "pw"}, "valid email"),
			ginkgo.Entry("unknown role", RegisterDTO{Name: "a", Email: "a@x.com", Password: "pw", Role: "manager"}, "Invalid role"),
			ginkgo.Entry("password over the bcrypt limit", RegisterDTO{Name: "a", Email: "a@x.com", Password: string(make([]byte, 73))}, "bytes"),
		)
	})

	ginkgo.Describe("Verify", func() {
		ginkgo.BeforeEach(func() {
			_, err := service.Register(ctx, RegisterDTO{Name: "bob", Email: "bob@x.com", Password: "s3cret"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("returns the user for correct credentials regardless of email case", func() {
			u, err := service.Verify(ctx, "BOB@x.com", "s3cret")

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(u.Name).To(gomega.Equal("bob"))
		})

		ginkgo.It("fails identically for wrong password and unknown email", func() {
			_, wrongPassword := service.Verify(ctx, "bob@x.com", "nope")
			_, unknownEmail := service.Verify(ctx, "nobody@x.com", "s3cret")

			gomega.Expect(wrongPassword).To(gomega.MatchError(errors.ErrInvalidCredentials))
			gomega.Expect(unknownEmail).To(gomega.MatchError(errors.ErrInvalidCredentials))
			gomega.Expect(wrongPassword.Error()).To(gomega.Equal(unknownEmail.Error()))
		})
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("returns ErrUserNotFound for unknown ids", func() {
			_, err := service.GetByID(ctx, 42)

			gomega.Expect(err).To(gomega.MatchError(errors.ErrUserNotFound))
		})
	})
})
