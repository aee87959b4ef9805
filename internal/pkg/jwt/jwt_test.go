package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, store RevocationStore) Service {
	t.Helper()
	return NewJWTService("test-secret-key-with-enough-length", "15m", "168h", store)
}

func TestAccessToken_RoundTripsPrincipal(t *testing.T) {
	svc := newTestService(t, nil)
	companyID := "7d8f2b7e-4a1e-4b4c-9f3c-2c1e5a9d0b11"
	p := user.Principal{SubjectID: "admin-1", Role: user.RoleAdmin, CompanyID: &companyID}

	token, expiresAt, err := svc.GenerateAccessToken(p, "admin@example.com")
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	got, err := PrincipalFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, p.SubjectID, got.SubjectID)
	assert.Equal(t, user.RoleAdmin, got.Role)
	require.NotNil(t, got.CompanyID)
	assert.Equal(t, companyID, *got.CompanyID)
}

func TestPrincipalFromClaims_RejectsMissingCompany(t *testing.T) {
	_, err := PrincipalFromClaims(map[string]interface{}{"subject_id": "u1", "role": "user"})
	assert.ErrorIs(t, err, ErrInvalidClaims)

	p, err := PrincipalFromClaims(map[string]interface{}{"subject_id": "sa", "role": "super_admin"})
	require.NoError(t, err)
	assert.Nil(t, p.CompanyID)

	_, err = PrincipalFromClaims(map[string]interface{}{"subject_id": "x", "role": "root"})
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestRefreshToken_Parse(t *testing.T) {
	svc := newTestService(t, nil)

	token, _, err := svc.GenerateRefreshToken("user-1", user.RoleUser)
	require.NoError(t, err)

	subjectID, role, err := svc.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subjectID)
	assert.Equal(t, user.RoleUser, role)

	sse, _, err := svc.GenerateSSEToken(user.Principal{SubjectID: "sa", Role: user.RoleSuperAdmin})
	require.NoError(t, err)
	_, _, err = svc.ParseRefreshToken(sse)
	assert.Error(t, err)
}

func TestSSEToken_Validate(t *testing.T) {
	svc := newTestService(t, nil)
	companyID := "c1"
	p := user.Principal{SubjectID: "u1", Role: user.RoleUser, CompanyID: &companyID}

	token, expiresIn, err := svc.GenerateSSEToken(p)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	got, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.SubjectID)

	access, _, err := svc.GenerateAccessToken(p, "u1@example.com")
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)
}

func TestRevokeToken_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc := newTestService(t, NewRedisRevocationStore(client))
	ctx := context.Background()

	token, _, err := svc.GenerateAccessToken(user.Principal{SubjectID: "sa", Role: user.RoleSuperAdmin}, "sa@example.com")
	require.NoError(t, err)
	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	revoked, err := svc.IsTokenRevoked(ctx, decoded)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.RevokeToken(ctx, token))

	revoked, err = svc.IsTokenRevoked(ctx, decoded)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl := mr.TTL(revokedKeyPrefix + decoded.JwtID())
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	mr.FastForward(16 * time.Minute)
	revoked, err = svc.IsTokenRevoked(ctx, decoded)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeToken_IgnoresGarbage(t *testing.T) {
	svc := newTestService(t, nil)
	assert.NoError(t, svc.RevokeToken(context.Background(), "not-a-token"))
}

func TestMemoryRevocationStore(t *testing.T) {
	s := NewMemoryRevocationStore()
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "a", time.Minute))
	require.NoError(t, s.Revoke(ctx, "b", -time.Second))

	ok, _ := s.IsRevoked(ctx, "a")
	assert.True(t, ok)
	ok, _ = s.IsRevoked(ctx, "b")
	assert.False(t, ok)
}
