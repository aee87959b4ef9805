package http

import (
	"log/slog"
	"net/http"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/response"
)

type AdminHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

type AdminHandlerImpl struct {
	adminService admin.AdminService
}

// Create implements AdminHandler.
func (a *AdminHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req admin.CreateAdminRequest
	if !decodeJSON(w, r, "Create admin", &req) {
		return
	}

	created, err := a.adminService.Create(r.Context(), principal, req)
	if err != nil {
		slog.Error("Failed to create admin", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Admin created successfully", created)
}

// List implements AdminHandler.
func (a *AdminHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	admins, err := a.adminService.List(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, admins)
}

// GetProfile implements AdminHandler.
func (a *AdminHandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	profile, err := a.adminService.GetProfile(r.Context(), principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, profile)
}

// UpdateProfile implements AdminHandler.
func (a *AdminHandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req admin.UpdateProfileRequest
	if !decodeJSON(w, r, "Update admin profile", &req) {
		return
	}

	profile, err := a.adminService.UpdateProfile(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Profile updated successfully", profile)
}

func NewAdminHandler(adminService admin.AdminService) AdminHandler {
	return &AdminHandlerImpl{adminService: adminService}
}
