package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/history"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/response"
)

type UserHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	UploadProfilePicture(w http.ResponseWriter, r *http.Request)

	ListAccess(w http.ResponseWriter, r *http.Request)
	RevokeAccess(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
}

// UserDetailResponse is a user together with their door access and open requests.
type UserDetailResponse struct {
	user.UserResponse
	DoorAccess      []access.AccessEntryResponse       `json:"door_access"`
	PendingRequests []access.PermissionRequestResponse `json:"pending_requests"`
}

type userHandlerImpl struct {
	userService    user.UserService
	accessService  access.AccessService
	historyService history.HistoryService
}

func NewUserHandler(userService user.UserService, accessService access.AccessService, historyService history.HistoryService) UserHandler {
	return &userHandlerImpl{
		userService:    userService,
		accessService:  accessService,
		historyService: historyService,
	}
}

// Register implements UserHandler
func (h *userHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req user.RegisterUserRequest
	if !decodeJSON(w, r, "Register user", &req) {
		return
	}

	created, err := h.userService.Register(r.Context(), principal, req)
	if err != nil {
		slog.Error("Failed to register user", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "User registered successfully", created)
}

// List implements UserHandler
func (h *userHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	filter := user.UserFilter{
		Search: optionalQueryParam(r, "search"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}

	result, err := h.userService.List(r.Context(), principal, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements UserHandler
func (h *userHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	h.writeDetail(w, r, principal, chi.URLParam(r, "id"))
}

// Me returns the signed-in user's own detail.
func (h *userHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	if principal.Role != user.RoleUser {
		response.HandleError(w, user.ErrInsufficientPermissions)
		return
	}
	h.writeDetail(w, r, principal, principal.SubjectID)
}

func (h *userHandlerImpl) writeDetail(w http.ResponseWriter, r *http.Request, principal user.Principal, id string) {
	found, err := h.userService.Get(r.Context(), principal, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	detail := UserDetailResponse{UserResponse: found}

	detail.DoorAccess, err = h.accessService.ListUserAccess(r.Context(), principal, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	detail.PendingRequests, err = h.accessService.ListPendingForUser(r.Context(), principal, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, detail)
}

// Update implements UserHandler
func (h *userHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req user.UpdateUserRequest
	if !decodeJSON(w, r, "Update user", &req) {
		return
	}

	updated, err := h.userService.Update(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User updated successfully", updated)
}

// Delete implements UserHandler
func (h *userHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.userService.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User deleted successfully", nil)
}

// UploadProfilePicture implements UserHandler
func (h *userHandlerImpl) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	// Parse multipart form (max 5MB)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	// Get file from form
	file, fileHeader, err := r.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(w, "Avatar file is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	updated, err := h.userService.UploadProfilePicture(r.Context(), principal, chi.URLParam(r, "id"), file, fileHeader.Filename)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile picture uploaded successfully", updated)
}

// ListAccess implements UserHandler
func (h *userHandlerImpl) ListAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	entries, err := h.accessService.ListUserAccess(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}

// RevokeAccess implements UserHandler
func (h *userHandlerImpl) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	err := h.accessService.RevokeAccess(r.Context(), principal, chi.URLParam(r, "id"), chi.URLParam(r, "entryID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Door access revoked successfully", nil)
}

// History implements UserHandler
func (h *userHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	filter := history.HistoryFilter{
		UserID: chi.URLParam(r, "id"),
		DoorID: optionalQueryParam(r, "door_id"),
		Status: optionalQueryParam(r, "status"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}

	result, err := h.historyService.ListUserHistory(r.Context(), principal, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
