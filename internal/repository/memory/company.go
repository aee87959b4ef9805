package memory

import (
	"context"
	"sort"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
)

type companyRepository struct {
	s *Store
}

func (s *Store) Companies() company.CompanyRepository {
	return &companyRepository{s: s}
}

func (r *companyRepository) Create(ctx context.Context, c company.Company) (company.Company, error) {
	defer r.s.lockWrite(ctx)()

	c.ID = newID()
	c.CreatedAt = r.s.now()
	c.UpdatedAt = c.CreatedAt
	r.s.data.companies[c.ID] = c
	return c, nil
}

func (r *companyRepository) GetByID(_ context.Context, id string) (company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.data.companies[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

func (r *companyRepository) List(_ context.Context) ([]company.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]company.Company, 0, len(r.s.data.companies))
	for _, c := range r.s.data.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *companyRepository) Update(ctx context.Context, id string, req company.UpdateCompanyRequest) (company.Company, error) {
	defer r.s.lockWrite(ctx)()

	c, ok := r.s.data.companies[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	if req.Name == nil && req.Address == nil {
		return company.Company{}, company.ErrNoFieldsToUpdate
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Address != nil {
		c.Address = strPtr(*req.Address)
	}
	c.UpdatedAt = r.s.now()
	r.s.data.companies[id] = c
	return c, nil
}

// Delete removes the company and everything scoped to it.
func (r *companyRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.data.companies[id]; !ok {
		return company.ErrCompanyNotFound
	}
	delete(r.s.data.companies, id)

	for k, a := range r.s.data.admins {
		if a.CompanyID != nil && *a.CompanyID == id {
			delete(r.s.data.admins, k)
		}
	}
	for k, u := range r.s.data.users {
		if u.CompanyID == id {
			r.s.deleteUserLocked(k)
		}
	}
	for k, d := range r.s.data.doors {
		if d.CompanyID == id {
			r.s.purgeDoorLocked(k)
		}
	}
	return nil
}
