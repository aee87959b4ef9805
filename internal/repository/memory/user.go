package memory

import (
	"context"
	"strings"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

type userRepository struct {
	s *Store
}

func (s *Store) Users() user.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) checkUnique(u user.User) error {
	for _, other := range r.s.data.users {
		if other.ID == u.ID {
			continue
		}
		if other.UserCode == u.UserCode {
			return user.ErrUserCodeExists
		}
		if strings.EqualFold(other.Email, u.Email) {
			return user.ErrUserEmailExists
		}
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	defer r.s.lockWrite(ctx)()

	if err := r.checkUnique(u); err != nil {
		return user.User{}, err
	}
	u.ID = newID()
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	r.s.data.users[u.ID] = u
	return u, nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepository) GetByUserCode(_ context.Context, userCode string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if u.UserCode == userCode {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *userRepository) List(_ context.Context, filter user.UserFilter) ([]user.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var search string
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	matched := make([]user.User, 0)
	for _, u := range r.s.data.users {
		if filter.CompanyID != nil && u.CompanyID != *filter.CompanyID {
			continue
		}
		if search != "" && !containsAny(search, u.FirstName, u.LastName, u.UserCode, u.Email) {
			continue
		}
		matched = append(matched, u)
	}
	sortNewestFirst(matched, func(u user.User) time.Time { return u.CreatedAt })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *userRepository) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	defer r.s.lockWrite(ctx)()

	u, ok := r.s.data.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	if req.FirstName == nil && req.LastName == nil && req.Email == nil &&
		req.PasswordHash == nil && req.ProfilePicture == nil && req.FaceCount == nil {
		return user.User{}, user.ErrNoFieldsToUpdate
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.PasswordHash != nil {
		u.PasswordHash = *req.PasswordHash
	}
	if req.ProfilePicture != nil {
		u.ProfilePicture = strPtr(*req.ProfilePicture)
	}
	if req.FaceCount != nil {
		u.FaceCount = *req.FaceCount
	}
	if err := r.checkUnique(u); err != nil {
		return user.User{}, err
	}

	u.UpdatedAt = r.s.now()
	r.s.data.users[id] = u
	return u, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(ctx)()

	if _, ok := r.s.data.users[id]; !ok {
		return user.ErrUserNotFound
	}
	r.s.deleteUserLocked(id)
	return nil
}

// deleteUserLocked removes the user and its dependent rows. Callers hold s.mu.
func (s *Store) deleteUserLocked(id string) {
	delete(s.data.users, id)
	for k, v := range s.data.requests {
		if v.UserID == id {
			delete(s.data.requests, k)
		}
	}
	for k, v := range s.data.ledger {
		if v.UserID == id {
			delete(s.data.ledger, k)
		}
	}
	for k, v := range s.data.history {
		if v.UserID == id {
			delete(s.data.history, k)
		}
	}
	for k, v := range s.data.messages {
		if v.UserID == id {
			delete(s.data.messages, k)
		}
	}
}

func containsAny(needle string, haystack ...string) bool {
	for _, h := range haystack {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}
