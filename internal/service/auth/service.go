package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/admin"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/auth"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/database"
	"github.com/securepass-ai/securepass-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx database.Transactor
	admin.AdminRepository
	user.UserRepository
	auth.RefreshTokenRepository
	jwt.Service
}

func NewAuthService(
	tx database.Transactor,
	adminRepository admin.AdminRepository,
	userRepository user.UserRepository,
	tokenRepository auth.RefreshTokenRepository,
	jwtService jwt.Service,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:                     tx,
		AdminRepository:        adminRepository,
		UserRepository:         userRepository,
		RefreshTokenRepository: tokenRepository,
		Service:                jwtService,
	}
}

// issueTokens creates an access/refresh pair and stores the refresh token.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, principal user.Principal, email string, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse

	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(principal, email)
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(principal.SubjectID, principal.Role)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}

		err = a.CreateRefreshToken(txCtx, principal.SubjectID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, sessionTrackReq)
		if err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	tokenResponse.Role = string(principal.Role)
	return tokenResponse, nil
}

// LoginAdmin implements auth.AuthService.
func (a *AuthServiceImpl) LoginAdmin(ctx context.Context, loginReq auth.AdminLoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	adminData, err := a.AdminRepository.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(loginReq.Email)))
	if err != nil {
		if errors.Is(err, admin.ErrAdminNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get admin by email: %w", err)
	}

	// Google-only accounts have no password
	if adminData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*adminData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, adminData.Principal(), adminData.Email, sessionTrackReq)
}

// LoginUser implements auth.AuthService. The identifier is an email when it
// contains "@", otherwise a user code.
func (a *AuthServiceImpl) LoginUser(ctx context.Context, loginReq auth.UserLoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	identifier := strings.TrimSpace(loginReq.Identifier)
	var (
		userData user.User
		err      error
	)
	if strings.Contains(identifier, "@") {
		userData, err = a.UserRepository.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		userData, err = a.UserRepository.GetByUserCode(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if userData.PasswordHash == "" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	companyID := userData.CompanyID
	principal := user.Principal{SubjectID: userData.ID, Role: user.RoleUser, CompanyID: &companyID}
	return a.issueTokens(ctx, principal, userData.Email, sessionTrackReq)
}

// LoginWithGoogle implements auth.AuthService. Only admins that already exist
// may sign in; the Google account is linked on first use.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, googleEmail string, googleID string, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	adminData, err := a.AdminRepository.GetByEmail(ctx, strings.ToLower(googleEmail))
	if err != nil {
		if errors.Is(err, admin.ErrAdminNotFound) {
			return auth.TokenResponse{}, auth.ErrGoogleAccountNotRegistered
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get admin by email: %w", err)
	}

	if adminData.OAuthProviderID == nil {
		if err := a.AdminRepository.LinkGoogleAccount(ctx, adminData.ID, googleID); err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
		}
		slog.Info("Linked google account", "admin_id", adminData.ID)
	} else if *adminData.OAuthProviderID != googleID {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, adminData.Principal(), adminData.Email, sessionTrackReq)
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	var accessTokenResponse auth.AccessTokenResponse

	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	// 1. Verify JWT signature, expiry and type
	subjectID, role, err := a.Service.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 2. Check DB for revocation/expiry (pass raw token, not hash)
	isRevoked, storedSubject, err := a.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}
	if storedSubject != subjectID {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 3. Reload the account so role and company changes take effect
	var (
		principal user.Principal
		email     string
	)
	if role == user.RoleUser {
		userData, err := a.UserRepository.GetByID(ctx, subjectID)
		if err != nil {
			return auth.AccessTokenResponse{}, auth.ErrSubjectNotFound
		}
		companyID := userData.CompanyID
		principal = user.Principal{SubjectID: userData.ID, Role: user.RoleUser, CompanyID: &companyID}
		email = userData.Email
	} else {
		adminData, err := a.AdminRepository.GetByID(ctx, subjectID)
		if err != nil {
			return auth.AccessTokenResponse{}, auth.ErrSubjectNotFound
		}
		principal = adminData.Principal()
		email = adminData.Email
	}

	// 4. Generate new access token
	accessTokenResponse.AccessToken, accessTokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(principal, email)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessTokenResponse, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string, accessToken string) error {
	if refreshToken != "" {
		isRevoked, _, err := a.IsRefreshTokenRevoked(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
		}
		if !isRevoked {
			if err := a.RevokeRefreshToken(ctx, refreshToken); err != nil {
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		}
	}

	if accessToken != "" {
		if err := a.Service.RevokeToken(ctx, accessToken); err != nil {
			return fmt.Errorf("failed to revoke access token: %w", err)
		}
	}
	return nil
}

// PurgeExpiredTokens implements auth.AuthService.
func (a *AuthServiceImpl) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := a.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return n, nil
}
