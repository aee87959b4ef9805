package access_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/history"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/apperror"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/events"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/validator"
	"github.com/securepass-ai/securepass-backend-go/internal/repository/memory"
	accesssvc "github.com/securepass-ai/securepass-backend-go/internal/service/access"
	historysvc "github.com/securepass-ai/securepass-backend-go/internal/service/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store   *memory.Store
	bus     *events.MemoryBus
	svc     access.AccessService
	company company.Company
	other   company.Company
	user    user.User
	door    door.Door
	admin   user.Principal
	self    user.Principal
	super   user.Principal
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	bus := events.NewMemoryBus()

	c, err := store.Companies().Create(ctx, company.Company{Name: "Acme"})
	require.NoError(t, err)
	other, err := store.Companies().Create(ctx, company.Company{Name: "Globex"})
	require.NoError(t, err)

	u, err := store.Users().Create(ctx, user.User{CompanyID: c.ID, FirstName: "Ada", LastName: "Lovelace", UserCode: "EMP001", Email: "ada@acme.test"})
	require.NoError(t, err)
	d, err := store.Doors().Create(ctx, door.Door{CompanyID: c.ID, DoorCode: "D1", RoomName: "Lab", Location: "1F", Status: door.StatusActive})
	require.NoError(t, err)

	svc := accesssvc.NewAccessService(store.Transactor(), store.PermissionRequests(), store.Ledger(), store.Users(), store.Doors(), bus)

	companyID := c.ID
	return testEnv{
		store:   store,
		bus:     bus,
		svc:     svc,
		company: c,
		other:   other,
		user:    u,
		door:    d,
		admin:   user.Principal{SubjectID: "admin-1", Role: user.RoleAdmin, CompanyID: &companyID},
		self:    user.Principal{SubjectID: u.ID, Role: user.RoleUser, CompanyID: &companyID},
		super:   user.Principal{SubjectID: "super-1", Role: user.RoleSuperAdmin},
	}
}

func (e testEnv) createRequest(t *testing.T) access.PermissionRequestResponse {
	t.Helper()
	pr, err := e.svc.CreateRequest(context.Background(), e.admin, access.CreatePermissionRequestRequest{UserID: e.user.ID, DoorID: e.door.ID})
	require.NoError(t, err)
	return pr
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates pending request", func(t *testing.T) {
		env := newTestEnv(t)
		pr := env.createRequest(t)
		assert.Equal(t, string(access.RequestStatusPending), pr.Status)
		assert.Equal(t, env.company.ID, pr.CompanyID)

		pending, err := env.svc.ListPendingForUser(ctx, env.admin, env.user.ID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, pr.ID, pending[0].ID)
		assert.Equal(t, []string{events.RequestCreated}, env.bus.Subjects())
	})

	t.Run("user creates own request without user id", func(t *testing.T) {
		env := newTestEnv(t)
		pr, err := env.svc.CreateRequest(ctx, env.self, access.CreatePermissionRequestRequest{DoorID: env.door.ID})
		require.NoError(t, err)
		assert.Equal(t, env.user.ID, pr.UserID)
	})

	t.Run("user cannot request for someone else", func(t *testing.T) {
		env := newTestEnv(t)
		other, err := env.store.Users().Create(ctx, user.User{CompanyID: env.company.ID, UserCode: "EMP002", Email: "b@acme.test"})
		require.NoError(t, err)

		_, err = env.svc.CreateRequest(ctx, env.self, access.CreatePermissionRequestRequest{UserID: other.ID, DoorID: env.door.ID})
		assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	})

	t.Run("duplicate pending request", func(t *testing.T) {
		env := newTestEnv(t)
		env.createRequest(t)

		_, err := env.svc.CreateRequest(ctx, env.admin, access.CreatePermissionRequestRequest{UserID: env.user.ID, DoorID: env.door.ID})
		assert.ErrorIs(t, err, access.ErrDuplicatePendingRequest)
		assert.True(t, errors.Is(err, apperror.ErrValidation))
	})

	t.Run("already granted", func(t *testing.T) {
		env := newTestEnv(t)
		pr := env.createRequest(t)
		_, err := env.svc.Approve(ctx, env.admin, pr.ID)
		require.NoError(t, err)

		_, err = env.svc.CreateRequest(ctx, env.admin, access.CreatePermissionRequestRequest{UserID: env.user.ID, DoorID: env.door.ID})
		assert.ErrorIs(t, err, access.ErrAccessAlreadyGranted)
	})

	t.Run("unknown user and door", func(t *testing.T) {
		env := newTestEnv(t)
		missing := "00000000-0000-0000-0000-000000000000"

		_, err := env.svc.CreateRequest(ctx, env.admin, access.CreatePermissionRequestRequest{UserID: missing, DoorID: env.door.ID})
		assert.ErrorIs(t, err, access.ErrUnknownUser)

		_, err = env.svc.CreateRequest(ctx, env.admin, access.CreatePermissionRequestRequest{UserID: env.user.ID, DoorID: missing})
		assert.ErrorIs(t, err, access.ErrUnknownDoor)
	})

	t.Run("door in another company", func(t *testing.T) {
		env := newTestEnv(t)
		foreign, err := env.store.Doors().Create(ctx, door.Door{CompanyID: env.other.ID, DoorCode: "X1", RoomName: "Vault", Location: "B1"})
		require.NoError(t, err)

		_, err = env.svc.CreateRequest(ctx, env.admin, access.CreatePermissionRequestRequest{UserID: env.user.ID, DoorID: foreign.ID})
		assert.ErrorIs(t, err, access.ErrUnknownDoor)
	})

	t.Run("invalid ids", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.CreateRequest(ctx, env.admin, access.CreatePermissionRequestRequest{UserID: "nope", DoorID: ""})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "user_id must be a valid UUID", verrs.ToMap()["user_id"])
		assert.Equal(t, "door_id is required", verrs.ToMap()["door_id"])
	})

	t.Run("super admin cannot create", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.CreateRequest(ctx, env.super, access.CreatePermissionRequestRequest{UserID: env.user.ID, DoorID: env.door.ID})
		assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
	})
}

func TestApprove_GrantsExactlyOneLedgerEntry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)

	approved, err := env.svc.Approve(ctx, env.admin, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(access.RequestStatusApproved), approved.Status)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, env.admin.SubjectID, *approved.DecidedBy)

	entries, err := env.svc.ListUserAccess(ctx, env.admin, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, env.door.ID, entries[0].DoorID)
	assert.Nil(t, entries[0].InTime)
	assert.Nil(t, entries[0].OutTime)
	require.NotNil(t, entries[0].RequestID)
	assert.Equal(t, pr.ID, *entries[0].RequestID)

	pending, err := env.svc.ListPendingForUser(ctx, env.admin, env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Equal(t, []string{events.RequestCreated, events.RequestApproved}, env.bus.Subjects())
}

func TestDecide_OnlyOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("approve twice", func(t *testing.T) {
		env := newTestEnv(t)
		pr := env.createRequest(t)
		_, err := env.svc.Approve(ctx, env.admin, pr.ID)
		require.NoError(t, err)

		_, err = env.svc.Approve(ctx, env.admin, pr.ID)
		assert.ErrorIs(t, err, access.ErrRequestNotPending)
		assert.True(t, errors.Is(err, apperror.ErrInvalidState))

		entries, err := env.svc.ListUserAccess(ctx, env.admin, env.user.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("reject after approve", func(t *testing.T) {
		env := newTestEnv(t)
		pr := env.createRequest(t)
		_, err := env.svc.Approve(ctx, env.admin, pr.ID)
		require.NoError(t, err)

		_, err = env.svc.Reject(ctx, env.admin, pr.ID, access.RejectRequestRequest{})
		assert.ErrorIs(t, err, access.ErrRequestNotPending)
	})

	t.Run("approve after reject", func(t *testing.T) {
		env := newTestEnv(t)
		pr := env.createRequest(t)
		_, err := env.svc.Reject(ctx, env.admin, pr.ID, access.RejectRequestRequest{})
		require.NoError(t, err)

		_, err = env.svc.Approve(ctx, env.admin, pr.ID)
		assert.ErrorIs(t, err, access.ErrRequestNotPending)

		got, err := env.svc.GetRequest(ctx, env.admin, pr.ID)
		require.NoError(t, err)
		assert.Equal(t, string(access.RequestStatusRejected), got.Status)
	})

	t.Run("unknown request", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Approve(ctx, env.admin, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, access.ErrRequestNotFound)
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})
}

func TestReject_LeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)
	reason := "door is restricted"

	rejected, err := env.svc.Reject(ctx, env.admin, pr.ID, access.RejectRequestRequest{Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, string(access.RequestStatusRejected), rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, reason, *rejected.RejectionReason)

	entries, err := env.svc.ListUserAccess(ctx, env.admin, env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// a fresh request is allowed after a rejection
	env.createRequest(t)
}

func TestApprove_ConcurrentCallsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)

	var wins, losses int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.Approve(ctx, env.admin, pr.ID)
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, apperror.ErrInvalidState):
				atomic.AddInt32(&losses, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(19), losses)

	entries, err := env.svc.ListUserAccess(ctx, env.admin, env.user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateApproveRevokeFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)

	_, err := env.svc.Approve(ctx, env.admin, pr.ID)
	require.NoError(t, err)

	decision, err := env.svc.CheckAccess(ctx, env.self, env.user.ID, env.door.ID)
	require.NoError(t, err)
	assert.True(t, decision.Granted)

	entries, err := env.svc.ListUserAccess(ctx, env.self, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	scans := historysvc.NewHistoryService(env.store.Transactor(), env.store.History(), env.store.Ledger(), env.store.Users(), env.store.Doors(), env.bus)
	scan := history.ScanRequest{UserID: env.user.ID, DoorID: env.door.ID}
	_, err = scans.RecordEntry(ctx, env.admin, scan)
	require.NoError(t, err)
	_, err = scans.RecordExit(ctx, env.admin, scan)
	require.NoError(t, err)
	before, err := scans.ListUserHistory(ctx, env.admin, history.HistoryFilter{UserID: env.user.ID})
	require.NoError(t, err)
	require.Len(t, before.Entries, 1)

	entryID := entries[0].ID
	require.NoError(t, env.svc.RevokeAccess(ctx, env.admin, env.user.ID, entryID))

	// revoking removes future access only
	after, err := scans.ListUserHistory(ctx, env.admin, history.HistoryFilter{UserID: env.user.ID})
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err = env.svc.ListUserAccess(ctx, env.admin, env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	decision, err = env.svc.CheckAccess(ctx, env.admin, env.user.ID, env.door.ID)
	require.NoError(t, err)
	assert.False(t, decision.Granted)
	assert.Equal(t, access.DecisionNoAccess, decision.Reason)

	// the approved request stays approved
	got, err := env.svc.GetRequest(ctx, env.self, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(access.RequestStatusApproved), got.Status)

	err = env.svc.RevokeAccess(ctx, env.admin, env.user.ID, entryID)
	assert.ErrorIs(t, err, access.ErrAccessEntryNotFound)

	subjects := env.bus.Subjects()
	assert.Equal(t, events.AccessRevoked, subjects[len(subjects)-1])
}

func TestRevokeAccess_Permissions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)
	_, err := env.svc.Approve(ctx, env.admin, pr.ID)
	require.NoError(t, err)
	entries, err := env.svc.ListUserAccess(ctx, env.admin, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	err = env.svc.RevokeAccess(ctx, env.self, env.user.ID, entries[0].ID)
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	otherCompany := env.other.ID
	foreignAdmin := user.Principal{SubjectID: "admin-2", Role: user.RoleAdmin, CompanyID: &otherCompany}
	err = env.svc.RevokeAccess(ctx, foreignAdmin, env.user.ID, entries[0].ID)
	assert.ErrorIs(t, err, access.ErrAccessEntryNotFound)

	err = env.svc.RevokeAccess(ctx, env.admin, "someone-else", entries[0].ID)
	assert.ErrorIs(t, err, access.ErrAccessEntryNotFound)

	assert.NoError(t, env.svc.RevokeAccess(ctx, env.super, env.user.ID, entries[0].ID))
}

func TestCompanyScoping(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)

	otherCompany := env.other.ID
	foreignAdmin := user.Principal{SubjectID: "admin-2", Role: user.RoleAdmin, CompanyID: &otherCompany}

	_, err := env.svc.Approve(ctx, foreignAdmin, pr.ID)
	assert.ErrorIs(t, err, access.ErrRequestNotFound)

	_, err = env.svc.GetRequest(ctx, foreignAdmin, pr.ID)
	assert.ErrorIs(t, err, access.ErrRequestNotFound)

	list, err := env.svc.ListRequests(ctx, foreignAdmin, access.RequestFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)

	list, err = env.svc.ListRequests(ctx, env.super, access.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)

	_, err = env.svc.ListUserAccess(ctx, foreignAdmin, env.user.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestListRequests_UserSeesOnlyOwn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createRequest(t)

	other, err := env.store.Users().Create(ctx, user.User{CompanyID: env.company.ID, UserCode: "EMP002", Email: "b@acme.test"})
	require.NoError(t, err)
	_, err = env.svc.CreateRequest(ctx, env.admin, access.CreatePermissionRequestRequest{UserID: other.ID, DoorID: env.door.ID})
	require.NoError(t, err)

	mine, err := env.svc.ListRequests(ctx, env.self, access.RequestFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)
	assert.Equal(t, env.user.ID, mine.Requests[0].UserID)

	all, err := env.svc.ListRequests(ctx, env.admin, access.RequestFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
	assert.Len(t, all.Requests, 1)
	assert.Equal(t, 2, all.TotalPages)

	bad := "cancelled"
	_, err = env.svc.ListRequests(ctx, env.admin, access.RequestFilter{Status: &bad})
	assert.Error(t, err)
}

func TestListApprovedForDoor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)
	_, err := env.svc.Approve(ctx, env.admin, pr.ID)
	require.NoError(t, err)

	approved, err := env.svc.ListApprovedForDoor(ctx, env.admin, env.door.ID)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	require.NotNil(t, approved[0].UserName)
	assert.Equal(t, "Ada Lovelace", *approved[0].UserName)

	entries, err := env.svc.ListUserAccess(ctx, env.admin, env.user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, env.svc.RevokeAccess(ctx, env.admin, env.user.ID, entries[0].ID))

	approved, err = env.svc.ListApprovedForDoor(ctx, env.admin, env.door.ID)
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestCreateRequest_CrossCompanyPair(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	outsider, err := env.store.Users().Create(ctx, user.User{CompanyID: env.other.ID, FirstName: "Hank", LastName: "Scorpio", UserCode: "GLX001", Email: "hank@globex.test"})
	require.NoError(t, err)

	_, err = env.svc.CreateRequest(ctx, env.super, access.CreatePermissionRequestRequest{UserID: outsider.ID, DoorID: env.door.ID})
	assert.ErrorIs(t, err, access.ErrCrossCompanyReference)

	_, total, err := env.store.PermissionRequests().List(ctx, access.RequestFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = env.svc.CheckAccess(ctx, env.super, outsider.ID, env.door.ID)
	assert.ErrorIs(t, err, access.ErrCrossCompanyReference)
}

func TestApprove_RollsBackWhenGrantFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)

	// a grant that already exists makes the ledger insert fail
	_, err := env.store.Ledger().Create(ctx, access.AccessEntry{CompanyID: env.company.ID, UserID: env.user.ID, DoorID: env.door.ID})
	require.NoError(t, err)

	_, err = env.svc.Approve(ctx, env.admin, pr.ID)
	assert.ErrorIs(t, err, access.ErrAccessAlreadyGranted)

	got, err := env.svc.GetRequest(ctx, env.admin, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(access.RequestStatusPending), got.Status)
	assert.Nil(t, got.DecidedBy)

	entries, err := env.svc.ListUserAccess(ctx, env.admin, env.user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReject_NotUndoneByFailedTransaction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)

	started := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("boom")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		err := env.store.Transactor().WithinTransaction(ctx, func(ctx context.Context) error {
			close(started)
			<-release
			return boom
		})
		assert.ErrorIs(t, err, boom)
	}()

	<-started
	go func() {
		defer wg.Done()
		rejected, err := env.svc.Reject(ctx, env.admin, pr.ID, access.RejectRequestRequest{})
		if assert.NoError(t, err) {
			assert.Equal(t, string(access.RequestStatusRejected), rejected.Status)
		}
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	got, err := env.svc.GetRequest(ctx, env.admin, pr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(access.RequestStatusRejected), got.Status)
}

func TestCheckAccess_InactiveDoor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pr := env.createRequest(t)
	_, err := env.svc.Approve(ctx, env.admin, pr.ID)
	require.NoError(t, err)

	_, err = env.store.Doors().UpdateStatus(ctx, env.door.ID, door.StatusMaintenance)
	require.NoError(t, err)

	decision, err := env.svc.CheckAccess(ctx, env.admin, env.user.ID, env.door.ID)
	require.NoError(t, err)
	assert.False(t, decision.Granted)
	assert.Equal(t, access.DecisionDoorInactive, decision.Reason)
}
