package memory

import (
	"context"
	"strings"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
)

type adminRepository struct {
	s *Store
}

func (s *Store) Admins() admin.AdminRepository {
	return &adminRepository{s: s}
}

func (r *adminRepository) withCompany(a admin.Admin) admin.Admin {
	a.CompanyName = nil
	if a.CompanyID != nil {
		if c, ok := r.s.data.companies[*a.CompanyID]; ok {
			a.CompanyName = strPtr(c.Name)
		}
	}
	return a
}

func (r *adminRepository) emailTaken(email, exceptID string) bool {
	for _, a := range r.s.data.admins {
		if a.ID != exceptID && strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func (r *adminRepository) Create(ctx context.Context, a admin.Admin) (admin.Admin, error) {
	defer r.s.lockWrite(ctx)()

	if r.emailTaken(a.Email, "") {
		return admin.Admin{}, admin.ErrAdminEmailExists
	}
	a.ID = newID()
	a.CreatedAt = r.s.now()
	a.UpdatedAt = a.CreatedAt
	r.s.data.admins[a.ID] = a
	return r.withCompany(a), nil
}

func (r *adminRepository) GetByID(_ context.Context, id string) (admin.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.data.admins[id]
	if !ok {
		return admin.Admin{}, admin.ErrAdminNotFound
	}
	return r.withCompany(a), nil
}

func (r *adminRepository) GetByEmail(_ context.Context, email string) (admin.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.data.admins {
		if strings.EqualFold(a.Email, email) {
			return r.withCompany(a), nil
		}
	}
	return admin.Admin{}, admin.ErrAdminNotFound
}

func (r *adminRepository) List(_ context.Context, companyID *string) ([]admin.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]admin.Admin, 0)
	for _, a := range r.s.data.admins {
		if companyID != nil && (a.CompanyID == nil || *a.CompanyID != *companyID) {
			continue
		}
		out = append(out, r.withCompany(a))
	}
	sortNewestFirst(out, func(a admin.Admin) time.Time { return a.CreatedAt })
	return out, nil
}

func (r *adminRepository) Update(ctx context.Context, id string, req admin.UpdateProfileRequest) (admin.Admin, error) {
	defer r.s.lockWrite(ctx)()

	a, ok := r.s.data.admins[id]
	if !ok {
		return admin.Admin{}, admin.ErrAdminNotFound
	}
	if req.Name == nil && req.Email == nil && req.PasswordHash == nil {
		return admin.Admin{}, admin.ErrNoFieldsToUpdate
	}
	if req.Email != nil {
		if r.emailTaken(*req.Email, id) {
			return admin.Admin{}, admin.ErrAdminEmailExists
		}
		a.Email = *req.Email
	}
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.PasswordHash != nil {
		a.PasswordHash = strPtr(*req.PasswordHash)
	}
	a.UpdatedAt = r.s.now()
	r.s.data.admins[id] = a
	return r.withCompany(a), nil
}

func (r *adminRepository) LinkGoogleAccount(ctx context.Context, id string, googleID string) error {
	defer r.s.lockWrite(ctx)()

	a, ok := r.s.data.admins[id]
	if !ok {
		return admin.ErrAdminNotFound
	}
	a.OAuthProvider = strPtr("google")
	a.OAuthProviderID = strPtr(googleID)
	a.UpdatedAt = r.s.now()
	r.s.data.admins[id] = a
	return nil
}
