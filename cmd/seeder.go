package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log"

	errors "github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/identity"
	"github.com/frahmantamala/leave-management/internal/user"
	userPostgres "github.com/frahmantamala/leave-management/internal/user/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	seedName     string
	seedEmail    string
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default administrator account",
	Long:  `Create the administrator account from the seed config section. Running it again is a no-op.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		database, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer database.Close()

		admin := user.RegisterDTO{
			Name:     firstNonEmpty(seedName, cfg.Seed.AdminName, "Administrator"),
			Email:    firstNonEmpty(seedEmail, cfg.Seed.AdminEmail),
			Password: firstNonEmpty(seedPassword, cfg.Seed.AdminPassword),
			Role:     identity.RoleAdmin.String(),
		}
		if admin.Email == "" || admin.Password == "" {
			log.Fatal("seed: admin email and password must be configured")
		}

		svc := user.NewService(userPostgres.NewUserRepository(database.Gorm), cfg.Security.BCryptCost, logger.L())
		if err := seedAdmin(context.Background(), svc, admin); err != nil {
			log.Fatalf("seed: %v", err)
		}
	},
}

type registrar interface {
	Register(ctx context.Context, dto user.RegisterDTO) (*user.User, error)
}

func seedAdmin(ctx context.Context, svc registrar, admin user.RegisterDTO) error {
	u, err := svc.Register(ctx, admin)
	if stdErrors.Is(err, errors.ErrEmailTaken) {
		fmt.Println("admin user already exists:", admin.Email)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("Seeded admin user:", u.Email)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	seedCmd.Flags().StringVar(&seedName, "name", "", "administrator display name (overrides seed.admin_name)")
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "administrator email (overrides seed.admin_email)")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "administrator password (overrides seed.admin_password)")
}
