package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/response"
)

type AccessHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CheckAccess(w http.ResponseWriter, r *http.Request)
}

type accessHandlerImpl struct {
	accessService access.AccessService
}

func NewAccessHandler(accessService access.AccessService) AccessHandler {
	return &accessHandlerImpl{accessService: accessService}
}

// CreateRequest implements AccessHandler.
func (h *accessHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req access.CreatePermissionRequestRequest
	if !decodeJSON(w, r, "CreateRequest", &req) {
		return
	}

	created, err := h.accessService.CreateRequest(r.Context(), principal, req)
	if err != nil {
		slog.Error("Failed to create permission request", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Permission request submitted successfully", created)
}

// ListRequests implements AccessHandler.
func (h *accessHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	filter := access.RequestFilter{
		UserID: optionalQueryParam(r, "user_id"),
		DoorID: optionalQueryParam(r, "door_id"),
		Status: optionalQueryParam(r, "status"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}

	result, err := h.accessService.ListRequests(r.Context(), principal, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRequest implements AccessHandler.
func (h *accessHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	found, err := h.accessService.GetRequest(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, found)
}

// ApproveRequest implements AccessHandler.
func (h *accessHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	approved, err := h.accessService.Approve(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Permission request approved successfully", approved)
}

// RejectRequest implements AccessHandler. The body is optional.
func (h *accessHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req access.RejectRequestRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, "RejectRequest", &req) {
		return
	}

	rejected, err := h.accessService.Reject(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Permission request rejected successfully", rejected)
}

// CheckAccess implements AccessHandler.
func (h *accessHandlerImpl) CheckAccess(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" && principal.IsSelf(principal.SubjectID) {
		userID = principal.SubjectID
	}

	decision, err := h.accessService.CheckAccess(r.Context(), principal, userID, r.URL.Query().Get("door_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, decision)
}
