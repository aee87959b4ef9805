package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
)

type adminRepositoryImpl struct {
	db *database.DB
}

func NewAdminRepository(db *database.DB) admin.AdminRepository {
	return &adminRepositoryImpl{db: db}
}

const adminSelect = `
	SELECT a.id, a.company_id, a.name, a.email, a.password_hash, a.role,
		   a.oauth_provider, a.oauth_provider_id, a.created_at, a.updated_at,
		   c.name AS company_name
	FROM admin_users a
	LEFT JOIN companies c ON c.id = a.company_id`

func scanAdmin(row rowScanner) (admin.Admin, error) {
	var a admin.Admin
	var role string
	err := row.Scan(
		&a.ID,
		&a.CompanyID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&role,
		&a.OAuthProvider,
		&a.OAuthProviderID,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.CompanyName,
	)
	a.Role = user.Role(role)
	return a, err
}

// Create implements admin.AdminRepository.
func (r *adminRepositoryImpl) Create(ctx context.Context, newAdmin admin.Admin) (admin.Admin, error) {
	q := GetQuerier(ctx, r.db)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO admin_users (company_id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, newAdmin.CompanyID, newAdmin.Name, newAdmin.Email, newAdmin.PasswordHash, string(newAdmin.Role)).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "uq_admin_users_email") {
			return admin.Admin{}, admin.ErrAdminEmailExists
		}
		return admin.Admin{}, fmt.Errorf("failed to create admin: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements admin.AdminRepository.
func (r *adminRepositoryImpl) GetByID(ctx context.Context, id string) (admin.Admin, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanAdmin(q.QueryRow(ctx, adminSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return admin.Admin{}, admin.ErrAdminNotFound
		}
		return admin.Admin{}, err
	}
	return found, nil
}

// GetByEmail implements admin.AdminRepository.
func (r *adminRepositoryImpl) GetByEmail(ctx context.Context, email string) (admin.Admin, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanAdmin(q.QueryRow(ctx, adminSelect+` WHERE a.email = $1`, email))
	if err != nil {
		if isNoRows(err) {
			return admin.Admin{}, admin.ErrAdminNotFound
		}
		return admin.Admin{}, err
	}
	return found, nil
}

// List implements admin.AdminRepository.
func (r *adminRepositoryImpl) List(ctx context.Context, companyID *string) ([]admin.Admin, error) {
	q := GetQuerier(ctx, r.db)

	query := adminSelect
	args := []interface{}{}
	if companyID != nil {
		query += ` WHERE a.company_id = $1`
		args = append(args, *companyID)
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := make([]admin.Admin, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// Update implements admin.AdminRepository.
func (r *adminRepositoryImpl) Update(ctx context.Context, id string, req admin.UpdateProfileRequest) (admin.Admin, error) {
	q := GetQuerier(ctx, r.db)

	updates := make([]string, 0)
	args := make([]interface{}, 0)
	argIdx := 1

	if req.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *req.Name)
		argIdx++
	}
	if req.Email != nil {
		updates = append(updates, fmt.Sprintf("email = $%d", argIdx))
		args = append(args, *req.Email)
		argIdx++
	}
	if req.PasswordHash != nil {
		updates = append(updates, fmt.Sprintf("password_hash = $%d", argIdx))
		args = append(args, *req.PasswordHash)
		argIdx++
	}

	if len(updates) == 0 {
		return admin.Admin{}, admin.ErrNoFieldsToUpdate
	}
	updates = append(updates, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE admin_users SET %s WHERE id = $%d", strings.Join(updates, ", "), argIdx)
	args = append(args, id)

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, "uq_admin_users_email") {
			return admin.Admin{}, admin.ErrAdminEmailExists
		}
		return admin.Admin{}, err
	}
	if tag.RowsAffected() == 0 {
		return admin.Admin{}, admin.ErrAdminNotFound
	}
	return r.GetByID(ctx, id)
}

// LinkGoogleAccount implements admin.AdminRepository.
func (r *adminRepositoryImpl) LinkGoogleAccount(ctx context.Context, id string, googleID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE admin_users
		SET oauth_provider = 'google', oauth_provider_id = $1, updated_at = NOW()
		WHERE id = $2
	`, googleID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return admin.ErrAdminNotFound
	}
	return nil
}
