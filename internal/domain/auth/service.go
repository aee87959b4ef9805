package auth

import (
	"context"
)

type AuthService interface {
	LoginAdmin(ctx context.Context, req AdminLoginRequest, sessionReq SessionTrackingRequest) (TokenResponse, error)
	LoginUser(ctx context.Context, req UserLoginRequest, sessionReq SessionTrackingRequest) (TokenResponse, error)
	LoginWithGoogle(ctx context.Context, googleEmail string, googleID string, sessionReq SessionTrackingRequest) (TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	// Logout revokes the refresh token and, when given, the access token.
	Logout(ctx context.Context, refreshToken string, accessToken string) error
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}
