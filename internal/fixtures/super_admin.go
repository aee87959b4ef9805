package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

// SuperAdminSeed describes the platform operator account created on first start.
type SuperAdminSeed struct {
	Name     string
	Email    string
	Password string
}

// SeedSuperAdmin creates the super admin when no admin with that email
// exists yet. An existing account is left untouched. It reports whether an
// account was created.
func SeedSuperAdmin(ctx context.Context, admins admin.AdminRepository, seed SuperAdminSeed) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	if email == "" {
		return false, nil
	}
	if len(seed.Password) < 8 {
		return false, fmt.Errorf("super admin password must be at least 8 characters")
	}

	_, err := admins.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, admin.ErrAdminNotFound) {
		return false, fmt.Errorf("failed to look up super admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash super admin password: %w", err)
	}
	hashStr := string(hash)

	name := seed.Name
	if name == "" {
		name = "Super Admin"
	}

	created, err := admins.Create(ctx, admin.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: &hashStr,
		Role:         user.RoleSuperAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("failed to create super admin: %w", err)
	}

	slog.Info("Seeded super admin", "admin_id", created.ID, "email", created.Email)
	return true, nil
}
