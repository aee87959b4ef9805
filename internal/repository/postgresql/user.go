package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, company_id, admin_id, first_name, last_name, user_code, email, password_hash,
		profile_picture, face_count, created_at, updated_at`

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.CompanyID,
		&u.AdminID,
		&u.FirstName,
		&u.LastName,
		&u.UserCode,
		&u.Email,
		&u.PasswordHash,
		&u.ProfilePicture,
		&u.FaceCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func mapUserWriteError(err error) error {
	switch {
	case isUniqueViolation(err, "uq_users_user_code"):
		return user.ErrUserCodeExists
	case isUniqueViolation(err, "uq_users_email"):
		return user.ErrUserEmailExists
	}
	return err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (company_id, admin_id, first_name, last_name, user_code, email, password_hash, profile_picture, face_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.CompanyID,
		newUser.AdminID,
		newUser.FirstName,
		newUser.LastName,
		newUser.UserCode,
		newUser.Email,
		newUser.PasswordHash,
		newUser.ProfilePicture,
		newUser.FaceCount,
	))
	if err != nil {
		return user.User{}, mapUserWriteError(err)
	}
	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUserCode implements user.UserRepository.
func (r *userRepositoryImpl) GetByUserCode(ctx context.Context, userCode string) (user.User, error) {
	return r.getBy(ctx, "user_code", userCode)
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepositoryImpl) getBy(ctx context.Context, column string, value string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	found, err := scanUser(q.QueryRow(ctx, query, value))
	if err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return found, nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.CompanyID != nil {
		whereClause += fmt.Sprintf(" AND company_id = $%d", argIndex)
		args = append(args, *filter.CompanyID)
		argIndex++
	}

	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		whereClause += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR user_code ILIKE $%d OR email ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex)
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		argIndex++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM users "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := validator.NormalizePage(filter.Page, filter.Limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}

	return users, total, rows.Err()
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	updates := make([]string, 0)
	args := make([]interface{}, 0)
	argIdx := 1

	set := func(col string, val interface{}) {
		updates = append(updates, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if req.FirstName != nil {
		set("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		set("last_name", *req.LastName)
	}
	if req.Email != nil {
		set("email", *req.Email)
	}
	if req.PasswordHash != nil {
		set("password_hash", *req.PasswordHash)
	}
	if req.ProfilePicture != nil {
		set("profile_picture", *req.ProfilePicture)
	}
	if req.FaceCount != nil {
		set("face_count", *req.FaceCount)
	}

	if len(updates) == 0 {
		return user.User{}, user.ErrNoFieldsToUpdate
	}
	updates = append(updates, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s", strings.Join(updates, ", "), argIdx, userColumns)
	args = append(args, id)

	updated, err := scanUser(q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, mapUserWriteError(err)
	}
	return updated, nil
}

// Delete implements user.UserRepository.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
