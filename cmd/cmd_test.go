package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/frahmantamala/leave-management/db"
	"github.com/frahmantamala/leave-management/internal/core/identity"
	"github.com/frahmantamala/leave-management/internal/user"
	userPostgres "github.com/frahmantamala/leave-management/internal/user/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

const sampleConfig = `
http_server:
  port: 8080
  allowed_origins: "http://localhost:3000, http://example.com"
database:
  driver: sqlite
  source: "%s"
security:
  jwt_secret: "0123456789abcdef0123456789abcdef"
  access_token_duration: 2h
  bcrypt_cost: 4
seed:
  admin_email: root@example.com
  admin_password: secret
`

func writeConfig(dir, source string) {
	body := fmt.Sprintf(sampleConfig, source)
	Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600)).To(Succeed())
}

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		writeConfig(dir, filepath.Join(dir, "leave.db"))
	})

	It("reads the file and fills in defaults", func() {
		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Server.Origins()).To(Equal([]string{"http://localhost:3000", "http://example.com"}))
		Expect(cfg.Server.ValidateRequests).To(BeTrue())
		Expect(cfg.Security.AccessTokenDuration).To(Equal(2 * time.Hour))
		Expect(cfg.Database.MaxOpenConns).To(Equal(25))
		Expect(cfg.Leave.RejectPastStartDates).To(BeFalse())
		Expect(cfg.Observability.Metrics.Path).To(Equal("/metrics"))
	})

	It("lets ENV_ variables override the file", func() {
		Expect(os.Setenv("ENV_SECURITY_BCRYPT_COST", "6")).To(Succeed())
		DeferCleanup(os.Unsetenv, "ENV_SECURITY_BCRYPT_COST")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Security.BCryptCost).To(Equal(6))
	})

	It("rejects a short jwt secret", func() {
		Expect(os.Setenv("ENV_SECURITY_JWT_SECRET", "short")).To(Succeed())
		DeferCleanup(os.Unsetenv, "ENV_SECURITY_JWT_SECRET")

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("jwt_secret")))
	})

	It("fails without a config file", func() {
		_, err := loadConfig(GinkgoT().TempDir())
		Expect(err).To(HaveOccurred())
	})
})

type countingRegistrar struct {
	calls int
	inner registrar
}

func (c *countingRegistrar) Register(ctx context.Context, dto user.RegisterDTO) (*user.User, error) {
	c.calls++
	return c.inner.Register(ctx, dto)
}

var _ = Describe("seedAdmin", func() {
	It("creates the administrator once and tolerates reruns", func() {
		dir := GinkgoT().TempDir()
		writeConfig(dir, filepath.Join(dir, "seed.db"))
		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())

		database, err := initDB(cfg.Database)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(database.Close)

		ctx := context.Background()
		Expect(db.Up(ctx, database.DB(), cfg.Database.Driver)).To(Succeed())

		svc := user.NewService(userPostgres.NewUserRepository(database.Gorm), bcrypt.MinCost, logger.L())
		reg := &countingRegistrar{inner: svc}
		admin := user.RegisterDTO{
			Name:     "Root",
			Email:    cfg.Seed.AdminEmail,
			Password: cfg.Seed.AdminPassword,
			Role:     identity.RoleAdmin.String(),
		}

		Expect(seedAdmin(ctx, reg, admin)).To(Succeed())
		Expect(seedAdmin(ctx, reg, admin)).To(Succeed())
		Expect(reg.calls).To(Equal(2))

		u, err := svc.Verify(ctx, "root@example.com", "secret")
		Expect(err).NotTo(HaveOccurred())
		Expect(u.Role).To(Equal(identity.RoleAdmin))
	})
})
