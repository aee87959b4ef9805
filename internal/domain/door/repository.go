package door

import "context"

type DoorRepository interface {
	Create(ctx context.Context, newDoor Door) (Door, error)
	GetByID(ctx context.Context, id string) (Door, error)
	List(ctx context.Context, filter DoorFilter) ([]Door, int64, error)
	Update(ctx context.Context, id string, req UpdateDoorRequest) (Door, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Door, error)
	SetQRImageURL(ctx context.Context, id string, url string) error
	// Delete retires the door and removes its access ledger entries.
	// History entries and permission requests for the door are kept.
	Delete(ctx context.Context, id string) error
}
