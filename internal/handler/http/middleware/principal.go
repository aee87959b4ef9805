package middleware

import (
	"context"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, principal user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFrom returns the Principal stored by AuthRequired.
func PrincipalFrom(ctx context.Context) (user.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(user.Principal)
	return principal, ok
}
