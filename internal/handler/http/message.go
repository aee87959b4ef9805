package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/message"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/response"
)

type MessageHandler interface {
	// User side
	Create(w http.ResponseWriter, r *http.Request)
	ListOwn(w http.ResponseWriter, r *http.Request)
	MarkReplyRead(w http.ResponseWriter, r *http.Request)

	// Admin side
	List(w http.ResponseWriter, r *http.Request)
	ToggleRead(w http.ResponseWriter, r *http.Request)
	Reply(w http.ResponseWriter, r *http.Request)
}

type messageHandlerImpl struct {
	messageService message.MessageService
}

func NewMessageHandler(messageService message.MessageService) MessageHandler {
	return &messageHandlerImpl{messageService: messageService}
}

func messageFilterFromRequest(r *http.Request) message.MessageFilter {
	return message.MessageFilter{
		Status: optionalQueryParam(r, "status"),
		Page:   getIntQueryParam(r, "page", 1),
		Limit:  getIntQueryParam(r, "limit", 20),
	}
}

// Create implements MessageHandler.
func (h *messageHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req message.CreateMessageRequest
	if !decodeJSON(w, r, "Create message", &req) {
		return
	}

	created, err := h.messageService.Create(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Message sent successfully", created)
}

// ListOwn implements MessageHandler.
func (h *messageHandlerImpl) ListOwn(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.messageService.ListOwn(r.Context(), principal, messageFilterFromRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// MarkReplyRead implements MessageHandler.
func (h *messageHandlerImpl) MarkReplyRead(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	updated, err := h.messageService.MarkReplyRead(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, updated)
}

// List implements MessageHandler.
func (h *messageHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.messageService.List(r.Context(), principal, messageFilterFromRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ToggleRead implements MessageHandler.
func (h *messageHandlerImpl) ToggleRead(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	updated, err := h.messageService.ToggleRead(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, updated)
}

// Reply implements MessageHandler.
func (h *messageHandlerImpl) Reply(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req message.ReplyRequest
	if !decodeJSON(w, r, "Reply message", &req) {
		return
	}

	updated, err := h.messageService.Reply(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reply sent successfully", updated)
}
