package http

import (
	"net/http"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/history"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/response"
)

type HistoryHandler interface {
	RecordEntry(w http.ResponseWriter, r *http.Request)
	RecordExit(w http.ResponseWriter, r *http.Request)
}

type historyHandlerImpl struct {
	historyService history.HistoryService
}

func NewHistoryHandler(historyService history.HistoryService) HistoryHandler {
	return &historyHandlerImpl{historyService: historyService}
}

// RecordEntry implements HistoryHandler.
func (h *historyHandlerImpl) RecordEntry(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req history.ScanRequest
	if !decodeJSON(w, r, "RecordEntry", &req) {
		return
	}

	entry, err := h.historyService.RecordEntry(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Entry recorded", entry)
}

// RecordExit implements HistoryHandler.
func (h *historyHandlerImpl) RecordExit(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req history.ScanRequest
	if !decodeJSON(w, r, "RecordExit", &req) {
		return
	}

	entry, err := h.historyService.RecordExit(r.Context(), principal, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Exit recorded", entry)
}
