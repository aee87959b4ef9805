package postgresql_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/history"
	"github.com/securepass-ai/securepass-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionRequestRepository_PendingUniqueness(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPermissionRequestRepository(db)

	c := createTestCompany(t, ctx, db)
	u := createTestUser(t, ctx, db, c.ID, "EMP001")
	d := createTestDoor(t, ctx, db, c.ID, "D1")

	first, err := repo.Create(ctx, access.PermissionRequest{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID})
	require.NoError(t, err)
	assert.Equal(t, access.RequestStatusPending, first.Status)

	_, err = repo.Create(ctx, access.PermissionRequest{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID})
	assert.ErrorIs(t, err, access.ErrDuplicatePendingRequest)

	reason := "not needed"
	_, err = repo.Decide(ctx, first.ID, access.RequestStatusRejected, u.ID, time.Now(), &reason)
	require.NoError(t, err)

	// a new pending request is allowed once the previous one is decided
	_, err = repo.Create(ctx, access.PermissionRequest{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID})
	assert.NoError(t, err)
}

func TestPermissionRequestRepository_DecideOnce(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewPermissionRequestRepository(db)

	c := createTestCompany(t, ctx, db)
	u := createTestUser(t, ctx, db, c.ID, "EMP001")
	d := createTestDoor(t, ctx, db, c.ID, "D1")

	req, err := repo.Create(ctx, access.PermissionRequest{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID})
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Decide(ctx, req.ID, access.RequestStatusApproved, u.ID, time.Now(), nil); err == nil {
				atomic.AddInt32(&wins, 1)
			} else {
				assert.ErrorIs(t, err, access.ErrRequestNotPending)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)

	_, err = repo.Decide(ctx, "00000000-0000-0000-0000-000000000000", access.RequestStatusApproved, u.ID, time.Now(), nil)
	assert.ErrorIs(t, err, access.ErrRequestNotFound)
}

func TestLedgerRepository_UniquePerUserDoor(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLedgerRepository(db)

	c := createTestCompany(t, ctx, db)
	u := createTestUser(t, ctx, db, c.ID, "EMP001")
	d := createTestDoor(t, ctx, db, c.ID, "D1")

	entry, err := repo.Create(ctx, access.AccessEntry{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID, Date: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, "D1", *entry.DoorCode)

	_, err = repo.Create(ctx, access.AccessEntry{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID, Date: time.Now()})
	assert.ErrorIs(t, err, access.ErrAccessAlreadyGranted)

	ok, err := repo.StampIn(ctx, u.ID, d.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, entry.ID))
	ok, err = repo.StampOut(ctx, u.ID, d.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistoryRepository_SingleActiveEntry(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewHistoryRepository(db)

	c := createTestCompany(t, ctx, db)
	u := createTestUser(t, ctx, db, c.ID, "EMP001")
	d := createTestDoor(t, ctx, db, c.ID, "D1")

	entryTime := time.Now().Add(-time.Hour).UTC().Truncate(time.Microsecond)
	e, err := repo.Create(ctx, history.Entry{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID, EntryTime: entryTime})
	require.NoError(t, err)
	assert.Equal(t, history.StatusActive, e.Status)

	_, err = repo.Create(ctx, history.Entry{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID, EntryTime: time.Now()})
	assert.ErrorIs(t, err, history.ErrActiveEntryExists)

	active, err := repo.GetActiveForUpdate(ctx, u.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, active.ID)

	closed, err := repo.Close(ctx, e.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, history.StatusExited, closed.Status)
	require.NotNil(t, closed.ExitTime)

	_, err = repo.GetActiveForUpdate(ctx, u.ID, d.ID)
	assert.ErrorIs(t, err, history.ErrNoActiveEntry)

	entries, total, err := repo.ListByUser(ctx, history.HistoryFilter{UserID: u.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, entries, 1)
}

func TestDoorRepository_DeleteRetiresDoor(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	doors := postgresql.NewDoorRepository(db)
	requests := postgresql.NewPermissionRequestRepository(db)
	ledger := postgresql.NewLedgerRepository(db)
	historyRepo := postgresql.NewHistoryRepository(db)

	c := createTestCompany(t, ctx, db)
	u := createTestUser(t, ctx, db, c.ID, "EMP001")
	d := createTestDoor(t, ctx, db, c.ID, "D1")

	pr, err := requests.Create(ctx, access.PermissionRequest{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID})
	require.NoError(t, err)
	_, err = requests.Decide(ctx, pr.ID, access.RequestStatusApproved, u.ID, time.Now(), nil)
	require.NoError(t, err)
	_, err = ledger.Create(ctx, access.AccessEntry{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID, RequestID: &pr.ID, Date: time.Now()})
	require.NoError(t, err)
	e, err := historyRepo.Create(ctx, history.Entry{CompanyID: c.ID, UserID: u.ID, DoorID: d.ID, EntryTime: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	_, err = historyRepo.Close(ctx, e.ID, time.Now())
	require.NoError(t, err)

	require.NoError(t, doors.Delete(ctx, d.ID))

	_, err = doors.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, door.ErrDoorNotFound)
	assert.ErrorIs(t, doors.Delete(ctx, d.ID), door.ErrDoorNotFound)

	_, err = ledger.GetByUserAndDoor(ctx, u.ID, d.ID)
	assert.ErrorIs(t, err, access.ErrAccessEntryNotFound)

	got, err := requests.GetByID(ctx, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, access.RequestStatusApproved, got.Status)

	entries, total, err := historyRepo.ListByUser(ctx, history.HistoryFilter{UserID: u.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "D1", *entries[0].DoorCode)

	// a retired door frees its code
	createTestDoor(t, ctx, db, c.ID, "D1")

	// deleting the company still removes everything, retired doors included
	require.NoError(t, postgresql.NewCompanyRepository(db).Delete(ctx, c.ID))
	_, total, err = historyRepo.ListByUser(ctx, history.HistoryFilter{UserID: u.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}
