package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
)

type doorRepository struct {
	s *Store
}

func (s *Store) Doors() door.DoorRepository {
	return &doorRepository{s: s}
}

// liveLocked returns the door unless it is missing or retired. Callers hold s.mu.
func (r *doorRepository) liveLocked(id string) (door.Door, bool) {
	d, ok := r.s.data.doors[id]
	if !ok || d.DeletedAt != nil {
		return door.Door{}, false
	}
	return d, true
}

func (r *doorRepository) codeTaken(companyID, code, exceptID string) bool {
	for _, d := range r.s.data.doors {
		if d.DeletedAt == nil && d.ID != exceptID && d.CompanyID == companyID && d.DoorCode == code {
			return true
		}
	}
	return false
}

func (r *doorRepository) Create(ctx context.Context, d door.Door) (door.Door, error) {
	defer r.s.lockWrite(ctx)()

	if r.codeTaken(d.CompanyID, d.DoorCode, "") {
		return door.Door{}, door.ErrDoorCodeExists
	}
	if d.Status == "" {
		d.Status = door.StatusActive
	}
	d.ID = newID()
	d.CreatedAt = r.s.now()
	d.UpdatedAt = d.CreatedAt
	r.s.data.doors[d.ID] = d
	return d, nil
}

func (r *doorRepository) GetByID(_ context.Context, id string) (door.Door, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.liveLocked(id)
	if !ok {
		return door.Door{}, door.ErrDoorNotFound
	}
	return d, nil
}

func (r *doorRepository) List(_ context.Context, filter door.DoorFilter) ([]door.Door, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var search string
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	matched := make([]door.Door, 0)
	for _, d := range r.s.data.doors {
		if d.DeletedAt != nil {
			continue
		}
		if filter.CompanyID != nil && d.CompanyID != *filter.CompanyID {
			continue
		}
		if filter.Status != nil && string(d.Status) != *filter.Status {
			continue
		}
		if search != "" && !containsAny(search, d.DoorCode, d.RoomName, d.Location) {
			continue
		}
		matched = append(matched, d)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].DoorCode < matched[j].DoorCode })
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *doorRepository) Update(ctx context.Context, id string, req door.UpdateDoorRequest) (door.Door, error) {
	defer r.s.lockWrite(ctx)()

	d, ok := r.liveLocked(id)
	if !ok {
		return door.Door{}, door.ErrDoorNotFound
	}
	if req.DoorCode == nil && req.RoomName == nil && req.Location == nil {
		return door.Door{}, door.ErrNoFieldsToUpdate
	}
	if req.DoorCode != nil {
		if r.codeTaken(d.CompanyID, *req.DoorCode, id) {
			return door.Door{}, door.ErrDoorCodeExists
		}
		d.DoorCode = *req.DoorCode
	}
	if req.RoomName != nil {
		d.RoomName = *req.RoomName
	}
	if req.Location != nil {
		d.Location = *req.Location
	}
	d.UpdatedAt = r.s.now()
	r.s.data.doors[id] = d
	return d, nil
}

func (r *doorRepository) UpdateStatus(ctx context.Context, id string, status door.Status) (door.Door, error) {
	defer r.s.lockWrite(ctx)()

	d, ok := r.liveLocked(id)
	if !ok {
		return door.Door{}, door.ErrDoorNotFound
	}
	d.Status = status
	d.UpdatedAt = r.s.now()
	r.s.data.doors[id] = d
	return d, nil
}

func (r *doorRepository) SetQRImageURL(ctx context.Context, id string, url string) error {
	defer r.s.lockWrite(ctx)()

	d, ok := r.liveLocked(id)
	if !ok {
		return door.ErrDoorNotFound
	}
	d.QRImageURL = strPtr(url)
	d.UpdatedAt = r.s.now()
	r.s.data.doors[id] = d
	return nil
}

func (r *doorRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(ctx)()

	d, ok := r.liveLocked(id)
	if !ok {
		return door.ErrDoorNotFound
	}
	now := r.s.now()
	d.DeletedAt = &now
	d.UpdatedAt = now
	r.s.data.doors[id] = d

	for k, e := range r.s.data.ledger {
		if e.DoorID == id {
			delete(r.s.data.ledger, k)
		}
	}
	return nil
}

// purgeDoorLocked removes the door and every row referencing it. Only company
// deletion purges doors. Callers hold s.mu.
func (s *Store) purgeDoorLocked(id string) {
	delete(s.data.doors, id)
	for k, v := range s.data.requests {
		if v.DoorID == id {
			delete(s.data.requests, k)
		}
	}
	for k, v := range s.data.ledger {
		if v.DoorID == id {
			delete(s.data.ledger, k)
		}
	}
	for k, v := range s.data.history {
		if v.DoorID == id {
			delete(s.data.history, k)
		}
	}
}
