package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/access"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/door"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/response"
)

type DoorHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

// DoorDetailResponse is a door together with the requests approved for it.
type DoorDetailResponse struct {
	door.DoorResponse
	ApprovedRequests []access.PermissionRequestResponse `json:"approved_requests"`
}

type doorHandlerImpl struct {
	doorService   door.DoorService
	accessService access.AccessService
}

func NewDoorHandler(doorService door.DoorService, accessService access.AccessService) DoorHandler {
	return &doorHandlerImpl{
		doorService:   doorService,
		accessService: accessService,
	}
}

// Create implements DoorHandler
func (h *doorHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req door.CreateDoorRequest
	if !decodeJSON(w, r, "Create door", &req) {
		return
	}

	created, err := h.doorService.Create(r.Context(), principal, req)
	if err != nil {
		slog.Error("Failed to create door", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Door created successfully", created)
}

// List implements DoorHandler
func (h *doorHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	filter := door.DoorFilter{
		Status: optionalQueryParam(r, "status"),
		Search: optionalQueryParam(r, "search"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}

	result, err := h.doorService.List(r.Context(), principal, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements DoorHandler
func (h *doorHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	found, err := h.doorService.Get(r.Context(), principal, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	detail := DoorDetailResponse{DoorResponse: found}
	if principal.IsAdmin() {
		detail.ApprovedRequests, err = h.accessService.ListApprovedForDoor(r.Context(), principal, id)
		if err != nil {
			response.HandleError(w, err)
			return
		}
	}

	response.Success(w, detail)
}

// Update implements DoorHandler
func (h *doorHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req door.UpdateDoorRequest
	if !decodeJSON(w, r, "Update door", &req) {
		return
	}

	updated, err := h.doorService.Update(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Door updated successfully", updated)
}

// UpdateStatus implements DoorHandler
func (h *doorHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req door.UpdateDoorStatusRequest
	if !decodeJSON(w, r, "Update door status", &req) {
		return
	}

	updated, err := h.doorService.UpdateStatus(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Door status updated successfully", updated)
}

// Delete implements DoorHandler
func (h *doorHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.doorService.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Door deleted successfully", nil)
}
