package admin

import (
	"context"
	"testing"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var superAdmin = user.Principal{SubjectID: "super-1", Role: user.RoleSuperAdmin}

func TestAdminService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewAdminService(store.Admins(), store.Companies())

	acme, err := store.Companies().Create(ctx, company.Company{Name: "Acme"})
	require.NoError(t, err)

	created, err := svc.Create(ctx, superAdmin, admin.CreateAdminRequest{
		CompanyID: acme.ID, Name: "Alice", Email: "Alice@Acme.test", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@acme.test", created.Email)
	assert.Equal(t, string(user.RoleAdmin), created.Role)
	require.NotNil(t, created.CompanyName)
	assert.Equal(t, "Acme", *created.CompanyName)

	_, err = svc.Create(ctx, superAdmin, admin.CreateAdminRequest{
		CompanyID: acme.ID, Name: "Alice 2", Email: "alice@acme.test", Password: "password123",
	})
	assert.ErrorIs(t, err, admin.ErrAdminEmailExists)

	admins, err := svc.List(ctx, superAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	companyAdmin := user.Principal{SubjectID: created.ID, Role: user.RoleAdmin, CompanyID: &acme.ID}
	_, err = svc.List(ctx, companyAdmin)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestAdminService_Create_UnknownCompany(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewAdminService(store.Admins(), store.Companies())

	_, err := svc.Create(ctx, superAdmin, admin.CreateAdminRequest{
		CompanyID: "00000000-0000-0000-0000-000000000000", Name: "Alice", Email: "alice@acme.test", Password: "password123",
	})
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
}

func TestAdminService_Profile(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewAdminService(store.Admins(), store.Companies())

	acme, err := store.Companies().Create(ctx, company.Company{Name: "Acme"})
	require.NoError(t, err)
	created, err := svc.Create(ctx, superAdmin, admin.CreateAdminRequest{
		CompanyID: acme.ID, Name: "Alice", Email: "alice@acme.test", Password: "password123",
	})
	require.NoError(t, err)

	me := user.Principal{SubjectID: created.ID, Role: user.RoleAdmin, CompanyID: &acme.ID}
	profile, err := svc.GetProfile(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)

	name, password := "Alice Smith", "another-password"
	updated, err := svc.UpdateProfile(ctx, me, admin.UpdateProfileRequest{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	stored, err := store.Admins().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte(password)))

	_, err = svc.UpdateProfile(ctx, me, admin.UpdateProfileRequest{})
	assert.ErrorIs(t, err, admin.ErrNoFieldsToUpdate)

	doorUser := user.Principal{SubjectID: "u-1", Role: user.RoleUser, CompanyID: &acme.ID}
	_, err = svc.GetProfile(ctx, doorUser)
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}
