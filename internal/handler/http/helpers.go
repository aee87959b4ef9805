package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/auth"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/middleware"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/response"
)

// principalFromRequest returns the authenticated caller or writes a 401.
func principalFromRequest(w http.ResponseWriter, r *http.Request) (user.Principal, bool) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
		return user.Principal{}, false
	}
	return principal, true
}

// decodeJSON decodes the request body or writes a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// optionalQueryParam returns nil when the parameter is absent or empty.
func optionalQueryParam(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}

func sessionFromRequest(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}
