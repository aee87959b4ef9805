package jwt

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeSSE     = "sse"
)

var ErrInvalidClaims = errors.New("invalid token claims")

type Service interface {
	GenerateAccessToken(principal user.Principal, email string) (token string, expiresAt int64, err error)
	GenerateRefreshToken(subjectID string, role user.Role) (token string, expiresAt int64, err error)
	// ParseRefreshToken verifies a refresh token and returns whom it was issued to.
	ParseRefreshToken(tokenString string) (subjectID string, role user.Role, err error)
	GenerateSSEToken(principal user.Principal) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (user.Principal, error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	// RevokeToken blacklists an access token until it expires. Invalid or
	// already expired tokens are ignored.
	RevokeToken(ctx context.Context, token string) error
	IsTokenRevoked(ctx context.Context, token jwt.Token) (bool, error)
}

type JWTService struct {
	secretKey                  string
	accessTokenExpirationTime  string
	refreshTokenExpirationTime string
	tokenAuth                  *jwtauth.JWTAuth
	revoked                    RevocationStore
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService builds the token service. A nil store keeps revocations in memory.
func NewJWTService(secretKey string, accessTokenExpirationTime string, refreshTokenExpirationTime string, store RevocationStore) Service {
	if store == nil {
		store = NewMemoryRevocationStore()
	}
	return &JWTService{
		secretKey:                  secretKey,
		accessTokenExpirationTime:  accessTokenExpirationTime,
		refreshTokenExpirationTime: refreshTokenExpirationTime,
		tokenAuth:                  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revoked:                    store,
	}
}

func (j *JWTService) GenerateAccessToken(principal user.Principal, email string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"jti":        uuid.NewString(),
		"subject_id": principal.SubjectID,
		"email":      email,
		"company_id": j.returnValueOrNil(principal.CompanyID),
		"role":       string(principal.Role),
		"type":       TokenTypeAccess,
		"exp":        expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(subjectID string, role user.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.refreshTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"jti":        uuid.NewString(),
		"subject_id": subjectID,
		"role":       string(role),
		"exp":        expiresAt,
		"type":       TokenTypeRefresh,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseRefreshToken(tokenString string) (string, user.Role, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", "", err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", "", err
	}
	if claims["type"] != TokenTypeRefresh {
		return "", "", ErrInvalidClaims
	}

	subjectID, _ := claims["subject_id"].(string)
	role, _ := claims["role"].(string)
	if subjectID == "" || !user.Role(role).IsValid() {
		return "", "", ErrInvalidClaims
	}
	return subjectID, user.Role(role), nil
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    token,
		Path:     "/api/v1/auth",
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteStrictMode,
	}
}

func (j *JWTService) RevokeToken(ctx context.Context, tokenString string) error {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return nil
	}
	ttl := time.Until(token.Expiration())
	if ttl <= 0 || token.JwtID() == "" {
		return nil
	}
	return j.revoked.Revoke(ctx, token.JwtID(), ttl)
}

func (j *JWTService) IsTokenRevoked(ctx context.Context, token jwt.Token) (bool, error) {
	if token == nil || token.JwtID() == "" {
		return false, nil
	}
	return j.revoked.IsRevoked(ctx, token.JwtID())
}

func (j *JWTService) returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	} else {
		return *value
	}
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(principal user.Principal) (token string, expiresIn int, err error) {
	// SSE tokens are short-lived (5 minutes)
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"subject_id": principal.SubjectID,
		"company_id": j.returnValueOrNil(principal.CompanyID),
		"role":       string(principal.Role),
		"type":       TokenTypeSSE,
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the principal it carries.
func (j *JWTService) ValidateSSEToken(tokenString string) (user.Principal, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return user.Principal{}, err
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return user.Principal{}, err
	}
	if claims["type"] != TokenTypeSSE {
		return user.Principal{}, jwt.ErrInvalidJWT()
	}

	return PrincipalFromClaims(claims)
}

// PrincipalFromClaims rebuilds the caller identity from decoded token claims.
func PrincipalFromClaims(claims map[string]interface{}) (user.Principal, error) {
	subjectID, ok := claims["subject_id"].(string)
	if !ok || subjectID == "" {
		return user.Principal{}, ErrInvalidClaims
	}

	roleStr, _ := claims["role"].(string)
	role := user.Role(roleStr)
	if !role.IsValid() {
		return user.Principal{}, ErrInvalidClaims
	}

	var companyID *string
	if v, ok := claims["company_id"].(string); ok && v != "" {
		companyID = &v
	}
	if role != user.RoleSuperAdmin && companyID == nil {
		return user.Principal{}, ErrInvalidClaims
	}

	return user.Principal{SubjectID: subjectID, Role: role, CompanyID: companyID}, nil
}
