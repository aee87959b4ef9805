package auth

import (
	"context"
	"time"
)

// RefreshTokenRepository persists hashed refresh tokens for revocation checks.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, subjectID string, token string, expiresAt int64, sessionReq SessionTrackingRequest) error
	// IsRefreshTokenRevoked reports whether the token is revoked or expired, and whom it was issued to.
	IsRefreshTokenRevoked(ctx context.Context, token string) (revoked bool, subjectID string, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
