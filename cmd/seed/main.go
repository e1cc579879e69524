// seed inserts the permissions, the Admin role and four test accounts for local development.
// Idempotent: existing permissions, roles and users are left in place.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"servease/backend/internal/config"
	"servease/backend/internal/db"
	"servease/backend/internal/logger"
	roledomain "servease/backend/internal/role/domain"
	rolerepo "servease/backend/internal/role/repository"
	roleservice "servease/backend/internal/role/service"
	"servease/backend/internal/security"
	userdomain "servease/backend/internal/user/domain"
	userrepo "servease/backend/internal/user/repository"
)

const (
	testPassword  = "Test123!@#"
	adminRoleName = "Admin"
)

var permissionDescriptions = map[string]string{
	roledomain.PermUserRead:       "Read user information",
	roledomain.PermUserWrite:      "Create and update users",
	roledomain.PermKYCApprove:     "Approve or reject KYC submissions",
	roledomain.PermSystemSecurity: "Manage system security settings",
}

type testUser struct {
	email       string
	name        string
	accountType userdomain.AccountType
	admin       bool
}

var testUsers = []testUser{
	{"admin@servease.com", "Admin User", userdomain.AccountTypeAdmin, true},
	{"customer@servease.com", "John Customer", userdomain.AccountTypeCustomer, false},
	{"provider.independent@servease.com", "Jane Provider", userdomain.AccountTypeProviderIndependent, false},
	{"provider.business@servease.com", "Business Corp", userdomain.AccountTypeProviderBusiness, false},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer sqlDB.Close()
	conn := db.Wrap(sqlDB)
	ctx := context.Background()

	roles := rolerepo.NewPostgresRepository(conn)
	permIDs := make([]string, 0, len(roledomain.AllPermissions))
	for _, name := range roledomain.AllPermissions {
		id, err := roles.EnsurePermission(ctx, name, permissionDescriptions[name])
		if err != nil {
			log.Fatal("ensure permission", zap.String("permission", name), zap.Error(err))
		}
		permIDs = append(permIDs, id)
	}
	log.Info("permissions ready", zap.Int("count", len(permIDs)))

	adminRole, err := roles.GetByName(ctx, adminRoleName)
	if err != nil {
		log.Fatal("load admin role", zap.Error(err))
	}
	if adminRole == nil {
		adminRole, err = roleservice.NewRoleService(roles).CreateRole(ctx, adminRoleName, "Administrator with full system access", permIDs)
		if err != nil {
			log.Fatal("create admin role", zap.Error(err))
		}
		log.Info("admin role created", zap.String("id", adminRole.ID))
	}

	hasher := security.NewHasher(cfg.Argon2MemoryKiB, cfg.Argon2Iterations, cfg.Argon2Parallelism)
	hash, err := hasher.Hash([]byte(testPassword))
	if err != nil {
		log.Fatal("hash password", zap.Error(err))
	}

	users := userrepo.NewPostgresRepository(conn)
	now := time.Now().UTC()
	for _, tu := range testUsers {
		existing, err := users.GetByEmail(ctx, tu.email)
		if err != nil {
			log.Fatal("load user", zap.String("email", tu.email), zap.Error(err))
		}
		if existing != nil {
			log.Info("user exists", zap.String("email", tu.email))
			continue
		}
		u := &userdomain.User{
			ID:            uuid.New().String(),
			Email:         tu.email,
			Name:          tu.name,
			PasswordHash:  hash,
			AccountType:   tu.accountType,
			AccountStatus: userdomain.AccountStatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if tu.admin {
			u.RoleID = adminRole.ID
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatal("create user", zap.String("email", tu.email), zap.Error(err))
		}
		log.Info("user created", zap.String("email", tu.email), zap.String("type", string(tu.accountType)))
	}

	log.Info("seed completed")
	fmt.Printf("Password for all test accounts: %s\n", testPassword)
	for _, tu := range testUsers {
		fmt.Printf("  %-36s %s\n", tu.email, tu.accountType)
	}
}
