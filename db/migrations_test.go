package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrations(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Migrations Suite")
}

var _ = Describe("Migrations", func() {
	var (
		gdb   *gorm.DB
		sqlDB *sql.DB
		ctx   context.Context
	)

	BeforeEach(func() {
		var err error
		gdb, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err = gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		ctx = context.Background()
	})

	AfterEach(func() {
		_ = sqlDB.Close()
	})

	It("creates the users and leave_requests tables", func() {
		Expect(Up(ctx, sqlDB, "sqlite")).To(Succeed())

		Expect(gdb.Migrator().HasTable("users")).To(BeTrue())
		Expect(gdb.Migrator().HasTable("leave_requests")).To(BeTrue())

		version, err := Version(ctx, sqlDB, "sqlite")
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(int64(2)))
	})

	It("is idempotent", func() {
		Expect(Up(ctx, sqlDB, "sqlite")).To(Succeed())
		Expect(Up(ctx, sqlDB, "sqlite")).To(Succeed())
	})

	It("enforces unique emails and the date range", func() {
		Expect(Up(ctx, sqlDB, "sqlite")).To(Succeed())

		now := time.Now().UTC()
		insertUser := `INSERT INTO users (email, name, password_hash, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
		_, err := sqlDB.ExecContext(ctx, insertUser, "alice@x.com", "Alice", "hash", "employee", now, now)
		Expect(err).NotTo(HaveOccurred())
		_, err = sqlDB.ExecContext(ctx, insertUser, "alice@x.com", "Alice", "hash", "employee", now, now)
		Expect(err).To(HaveOccurred())

		_, err = sqlDB.ExecContext(ctx,
			`INSERT INTO leave_requests (user_id, user_name, start_date, end_date, reason) VALUES (1, 'Alice', '2024-01-12', '2024-01-10', 'vacation')`)
		Expect(err).To(HaveOccurred())
	})

	It("rolls back the latest migration", func() {
		Expect(Up(ctx, sqlDB, "sqlite")).To(Succeed())
		Expect(Down(ctx, sqlDB, "sqlite")).To(Succeed())

		Expect(gdb.Migrator().HasTable("leave_requests")).To(BeFalse())
		Expect(gdb.Migrator().HasTable("users")).To(BeTrue())
	})

	It("refuses unknown drivers", func() {
		Expect(Up(ctx, sqlDB, "mysql")).To(MatchError(ContainSubstring("no migrations")))
	})
})
