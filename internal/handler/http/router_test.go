package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/events"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/jwt"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/sse"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/storage"
	"github.com/securepass-ai/securepass-backend-go/internal/repository/memory"
	accessService "github.com/securepass-ai/securepass-backend-go/internal/service/access"
	adminService "github.com/securepass-ai/securepass-backend-go/internal/service/admin"
	authService "github.com/securepass-ai/securepass-backend-go/internal/service/auth"
	companyService "github.com/securepass-ai/securepass-backend-go/internal/service/company"
	doorService "github.com/securepass-ai/securepass-backend-go/internal/service/door"
	"github.com/securepass-ai/securepass-backend-go/internal/service/file"
	historyService "github.com/securepass-ai/securepass-backend-go/internal/service/history"
	messageService "github.com/securepass-ai/securepass-backend-go/internal/service/message"
	userService "github.com/securepass-ai/securepass-backend-go/internal/service/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	handlerTestAccessExp  = "1h"
	handlerTestRefreshExp = "24h"
	handlerTestSecret     = "test-secret-key-for-jwt"
)

type testApp struct {
	router http.Handler
	store  *memory.Store
	jwt    jwt.Service
	hub    *sse.Hub

	companyID string
	userID    string
	doorID    string

	superToken string
	adminToken string
	userToken  string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	jwtSvc := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp, handlerTestRefreshExp, nil)
	hub := sse.NewHub()
	publisher := events.Fanout{events.NewMemoryBus(), sse.NewPublisher(hub)}

	fileStorage, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	fileSvc := file.NewFileService(fileStorage)

	accessSvc := accessService.NewAccessService(store.Transactor(), store.PermissionRequests(), store.Ledger(), store.Users(), store.Doors(), publisher)
	historySvc := historyService.NewHistoryService(store.Transactor(), store.History(), store.Ledger(), store.Users(), store.Doors(), publisher)
	authSvc := authService.NewAuthService(store.Transactor(), store.Admins(), store.Users(), store.RefreshTokens(), jwtSvc)

	router := NewRouter(
		RouterConfig{Env: "test", FrontendURL: "http://localhost:5173"},
		jwtSvc,
		NewAuthHandler(jwtSvc, authSvc, nil, "http://localhost:5173"),
		NewCompanyHandler(companyService.NewCompanyService(store.Companies())),
		NewAdminHandler(adminService.NewAdminService(store.Admins(), store.Companies())),
		NewUserHandler(userService.NewUserService(store.Users(), fileSvc), accessSvc, historySvc),
		NewDoorHandler(doorService.NewDoorService(store.Transactor(), store.Doors(), store.Companies(), fileSvc), accessSvc),
		NewAccessHandler(accessSvc),
		NewHistoryHandler(historySvc),
		NewMessageHandler(messageService.NewMessageService(store.Messages(), nil)),
		NewEventsHandler(hub, jwtSvc),
	)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(hashed)

	acme, err := store.Companies().Create(ctx, company.Company{Name: "Acme"})
	require.NoError(t, err)

	super, err := store.Admins().Create(ctx, admin.Admin{Name: "Root", Email: "root@securepass.test", PasswordHash: &hash, Role: user.RoleSuperAdmin})
	require.NoError(t, err)
	companyAdmin, err := store.Admins().Create(ctx, admin.Admin{CompanyID: &acme.ID, Name: "Alice", Email: "alice@acme.test", PasswordHash: &hash, Role: user.RoleAdmin})
	require.NoError(t, err)
	ada, err := store.Users().Create(ctx, user.User{CompanyID: acme.ID, FirstName: "Ada", LastName: "Lovelace", UserCode: "EMP001", Email: "ada@acme.test", PasswordHash: hash})
	require.NoError(t, err)
	d1, err := store.Doors().Create(ctx, door.Door{CompanyID: acme.ID, DoorCode: "D1", RoomName: "Server Room", Location: "Acme HQ", Status: door.StatusActive})
	require.NoError(t, err)

	app := &testApp{
		router:    router,
		store:     store,
		jwt:       jwtSvc,
		hub:       hub,
		companyID: acme.ID,
		userID:    ada.ID,
		doorID:    d1.ID,
	}
	app.superToken = app.token(t, super.Principal(), super.Email)
	app.adminToken = app.token(t, companyAdmin.Principal(), companyAdmin.Email)
	app.userToken = app.token(t, user.Principal{SubjectID: ada.ID, Role: user.RoleUser, CompanyID: &acme.ID}, ada.Email)
	return app
}

func (a *testApp) token(t *testing.T, principal user.Principal, email string) string {
	t.Helper()
	token, _, err := a.jwt.GenerateAccessToken(principal, email)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	app := newTestApp(t)

	rec, _ := app.do(t, http.MethodGet, "/api/v1/doors", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/doors", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_UserLoginAndProfile(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "EMP001",
		"password":   "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tokens struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
	}
	decodeData(t, env, &tokens)
	assert.Equal(t, "user", tokens.Role)

	var refreshCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie)
	assert.True(t, refreshCookie.HttpOnly)

	rec, env = app.do(t, http.MethodGet, "/api/v1/users/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var detail struct {
		ID              string            `json:"id"`
		UserCode        string            `json:"user_code"`
		DoorAccess      []json.RawMessage `json:"door_access"`
		PendingRequests []json.RawMessage `json:"pending_requests"`
	}
	decodeData(t, env, &detail)
	assert.Equal(t, app.userID, detail.ID)
	assert.Equal(t, "EMP001", detail.UserCode)
	assert.Empty(t, detail.DoorAccess)
	assert.Empty(t, detail.PendingRequests)

	rec, env = app.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": "EMP001",
		"password":   "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestRouter_PermissionRequestLifecycle(t *testing.T) {
	app := newTestApp(t)

	dashboard, cleanup := app.hub.Subscribe(app.companyID)
	defer cleanup()

	// User asks for the door
	rec, env := app.do(t, http.MethodPost, "/api/v1/access-requests", app.userToken, map[string]string{
		"door_id": app.doorID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, env, &created)
	assert.Equal(t, "pending", created.Status)

	select {
	case ev := <-dashboard:
		assert.Equal(t, events.RequestCreated, ev.Event)
	case <-time.After(time.Second):
		t.Fatal("expected a live event for the new request")
	}

	// Users cannot decide
	rec, _ = app.do(t, http.MethodPost, "/api/v1/access-requests/"+created.ID+"/approve", app.userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin approves once
	rec, env = app.do(t, http.MethodPost, "/api/v1/access-requests/"+created.ID+"/approve", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var approved struct {
		Status string `json:"status"`
	}
	decodeData(t, env, &approved)
	assert.Equal(t, "approved", approved.Status)

	rec, env = app.do(t, http.MethodPost, "/api/v1/access-requests/"+created.ID+"/reject", app.adminToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	// The ledger now holds one entry and nothing is pending
	rec, env = app.do(t, http.MethodGet, "/api/v1/users/"+app.userID, app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		DoorAccess []struct {
			ID     string `json:"id"`
			DoorID string `json:"door_id"`
		} `json:"door_access"`
		PendingRequests []json.RawMessage `json:"pending_requests"`
	}
	decodeData(t, env, &detail)
	require.Len(t, detail.DoorAccess, 1)
	assert.Equal(t, app.doorID, detail.DoorAccess[0].DoorID)
	assert.Empty(t, detail.PendingRequests)

	// Door detail lists the approved request
	rec, env = app.do(t, http.MethodGet, "/api/v1/doors/"+app.doorID, app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doorDetail struct {
		ApprovedRequests []json.RawMessage `json:"approved_requests"`
	}
	decodeData(t, env, &doorDetail)
	assert.Len(t, doorDetail.ApprovedRequests, 1)

	// Revoke removes it
	rec, _ = app.do(t, http.MethodDelete, "/api/v1/users/"+app.userID+"/access/"+detail.DoorAccess[0].ID, app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = app.do(t, http.MethodGet, "/api/v1/users/"+app.userID+"/access", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []json.RawMessage
	decodeData(t, env, &entries)
	assert.Empty(t, entries)
}

func TestRouter_ErrorMapping(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodPost, "/api/v1/access-requests", app.adminToken, map[string]string{
		"user_id": app.userID,
		"door_id": "nope",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "door_id")

	rec, env = app.do(t, http.MethodGet, "/api/v1/access-requests/0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", app.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/access-requests", app.adminToken, "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ScansAndHistory(t *testing.T) {
	app := newTestApp(t)
	scan := map[string]string{"user_id": app.userID, "door_id": app.doorID}

	rec, _ := app.do(t, http.MethodPost, "/api/v1/scans/entry", app.adminToken, scan)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := app.do(t, http.MethodPost, "/api/v1/scans/entry", app.adminToken, scan)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/scans/exit", app.adminToken, scan)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = app.do(t, http.MethodGet, "/api/v1/users/"+app.userID+"/history", app.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		TotalCount int64 `json:"total_count"`
		Entries    []struct {
			Status   string     `json:"status"`
			ExitTime *time.Time `json:"exit_time"`
		} `json:"entries"`
	}
	decodeData(t, env, &list)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, "exited", list.Entries[0].Status)
	assert.NotNil(t, list.Entries[0].ExitTime)
}

func TestRouter_ContactMessages(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodPost, "/api/v1/messages", app.userToken, map[string]string{"message": "The lab door is stuck"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &created)

	// Admins cannot post as users
	rec, _ = app.do(t, http.MethodPost, "/api/v1/messages", app.adminToken, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = app.do(t, http.MethodGet, "/api/v1/messages", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox struct {
		UnreadCount int64 `json:"unread_count"`
	}
	decodeData(t, env, &inbox)
	assert.Equal(t, int64(1), inbox.UnreadCount)

	rec, env = app.do(t, http.MethodPost, "/api/v1/messages/"+created.ID+"/reply", app.adminToken, map[string]string{"reply": "Fixed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var replied struct {
		Status     string `json:"status"`
		UserStatus string `json:"user_status"`
	}
	decodeData(t, env, &replied)
	assert.Equal(t, "read", replied.Status)
	assert.Equal(t, "unread", replied.UserStatus)

	rec, _ = app.do(t, http.MethodPatch, "/api/v1/messages/"+created.ID+"/reply-read", app.userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SuperAdminRoutes(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodPost, "/api/v1/companies", app.superToken, map[string]string{"company_name": "Globex"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var globex struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &globex)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/companies", app.adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins can read their own company only
	rec, _ = app.do(t, http.MethodGet, "/api/v1/companies/"+app.companyID, app.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = app.do(t, http.MethodGet, "/api/v1/companies/"+globex.ID, app.adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/admin/admin-users", app.superToken, map[string]string{
		"company_id": globex.ID,
		"name":       "Bob",
		"email":      "bob@globex.test",
		"password":   "password123",
	})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = app.do(t, http.MethodGet, "/api/v1/admin/me", app.userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_LogoutRevokesAccessToken(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.do(t, http.MethodPost, "/api/v1/auth/login/admin", "", map[string]string{
		"email":    "alice@acme.test",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decodeData(t, env, &tokens)

	rec, _ = app.do(t, http.MethodGet, "/api/v1/admin/me", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/auth/logout", tokens.AccessToken, map[string]string{
		"refresh_token": tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = app.do(t, http.MethodGet, "/api/v1/admin/me", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = app.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_EventStream(t *testing.T) {
	app := newTestApp(t)
	server := httptest.NewServer(app.router)
	defer server.Close()

	rec, env := app.do(t, http.MethodGet, "/api/v1/auth/sse-token", app.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sseToken struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &sseToken)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events?token="+sseToken.Token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// Users may not subscribe
	rec, env = app.do(t, http.MethodGet, "/api/v1/auth/sse-token", app.userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &sseToken)
	userResp, err := http.Get(server.URL + "/api/v1/events?token=" + sseToken.Token)
	require.NoError(t, err)
	userResp.Body.Close()
	assert.Equal(t, http.StatusForbidden, userResp.StatusCode)
}
