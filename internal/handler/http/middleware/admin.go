package middleware

import (
	"net/http"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/auth"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/handler/http/response"
)

// AdminOnly admits admins and super admins.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFrom(r.Context())
		if !ok {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		if !principal.IsAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
