package fixtures

import (
	"context"
	"testing"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedSuperAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates once", func(t *testing.T) {
		admins := memory.New().Admins()
		seed := SuperAdminSeed{Email: " Root@SecurePass.test ", Password: "change-me-now"}

		created, err := SeedSuperAdmin(ctx, admins, seed)
		require.NoError(t, err)
		assert.True(t, created)

		got, err := admins.GetByEmail(ctx, "root@securepass.test")
		require.NoError(t, err)
		assert.Equal(t, user.RoleSuperAdmin, got.Role)
		assert.Nil(t, got.CompanyID)
		assert.Equal(t, "Super Admin", got.Name)
		require.NotNil(t, got.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*got.PasswordHash), []byte("change-me-now")))

		created, err = SeedSuperAdmin(ctx, admins, seed)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("empty email is a no-op", func(t *testing.T) {
		created, err := SeedSuperAdmin(ctx, memory.New().Admins(), SuperAdminSeed{})
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := SeedSuperAdmin(ctx, memory.New().Admins(), SuperAdminSeed{Email: "root@securepass.test", Password: "short"})
		assert.Error(t, err)
	})
}
