package company

import (
	"context"
	"testing"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var superAdmin = user.Principal{SubjectID: "super-1", Role: user.RoleSuperAdmin}

func adminOf(companyID string) user.Principal {
	return user.Principal{SubjectID: "admin-1", Role: user.RoleAdmin, CompanyID: &companyID}
}

// ===== COMPANY SERVICE TESTS =====

func TestCompanyService_Create_Success(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyService := NewCompanyService(store.Companies())

	address := "1 Main St"
	created, err := companyService.Create(ctx, superAdmin, company.CreateCompanyRequest{Name: "Acme", Address: &address})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Acme", created.Name)
	require.NotNil(t, created.Address)
	assert.Equal(t, address, *created.Address)
}

func TestCompanyService_Create_RequiresSuperAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyService := NewCompanyService(store.Companies())

	_, err := companyService.Create(ctx, adminOf("c1"), company.CreateCompanyRequest{Name: "Acme"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestCompanyService_Create_MissingName(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyService := NewCompanyService(store.Companies())

	_, err := companyService.Create(ctx, superAdmin, company.CreateCompanyRequest{})
	assert.Error(t, err)
}

func TestCompanyService_GetByID(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyService := NewCompanyService(store.Companies())

	created, err := companyService.Create(ctx, superAdmin, company.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)

	got, err := companyService.GetByID(ctx, adminOf(created.ID), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	_, err = companyService.GetByID(ctx, adminOf("another-company"), created.ID)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = companyService.GetByID(ctx, superAdmin, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
}

func TestCompanyService_Update_PartialFields(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyService := NewCompanyService(store.Companies())

	created, err := companyService.Create(ctx, superAdmin, company.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)

	newName := "Updated Only Name"
	updated, err := companyService.Update(ctx, superAdmin, created.ID, company.UpdateCompanyRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Nil(t, updated.Address)
}

func TestCompanyService_Update_NoFields(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyService := NewCompanyService(store.Companies())

	created, err := companyService.Create(ctx, superAdmin, company.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)

	_, err = companyService.Update(ctx, superAdmin, created.ID, company.UpdateCompanyRequest{})
	assert.ErrorIs(t, err, company.ErrNoFieldsToUpdate)
}

func TestCompanyService_List(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyService := NewCompanyService(store.Companies())

	for _, name := range []string{"Globex", "Acme"} {
		_, err := companyService.Create(ctx, superAdmin, company.CreateCompanyRequest{Name: name})
		require.NoError(t, err)
	}

	companies, err := companyService.List(ctx, superAdmin)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Acme", companies[0].Name)
}

func TestCompanyService_Delete_CascadesDoors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	companyService := NewCompanyService(store.Companies())

	created, err := companyService.Create(ctx, superAdmin, company.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)
	d, err := store.Doors().Create(ctx, door.Door{CompanyID: created.ID, DoorCode: "D1", RoomName: "Lab", Location: "Acme", Status: door.StatusActive})
	require.NoError(t, err)

	require.NoError(t, companyService.Delete(ctx, superAdmin, created.ID))

	_, err = store.Doors().GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, door.ErrDoorNotFound)

	err = companyService.Delete(ctx, superAdmin, created.ID)
	assert.ErrorIs(t, err, company.ErrCompanyNotFound)
}
