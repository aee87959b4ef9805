package memory

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/auth"
)

type refreshToken struct {
	SubjectID string
	ExpiresAt time.Time
	RevokedAt *time.Time
	UserAgent string
	IPAddress string
}

type refreshTokenRepository struct {
	s *Store
}

func (s *Store) RefreshTokens() auth.RefreshTokenRepository {
	return &refreshTokenRepository{s: s}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (r *refreshTokenRepository) CreateRefreshToken(ctx context.Context, subjectID string, token string, expiresAt int64, sessionReq auth.SessionTrackingRequest) error {
	defer r.s.lockWrite(ctx)()

	r.s.data.tokens[hashToken(token)] = refreshToken{
		SubjectID: subjectID,
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
		UserAgent: sessionReq.UserAgent,
		IPAddress: sessionReq.IPAddress,
	}
	return nil
}

func (r *refreshTokenRepository) IsRefreshTokenRevoked(_ context.Context, token string) (bool, string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.data.tokens[hashToken(token)]
	if !ok {
		return true, "", nil
	}
	if t.RevokedAt != nil || !t.ExpiresAt.After(time.Now()) {
		return true, t.SubjectID, nil
	}
	return false, t.SubjectID, nil
}

func (r *refreshTokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	defer r.s.lockWrite(ctx)()

	key := hashToken(token)
	t, ok := r.s.data.tokens[key]
	if !ok || t.RevokedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	t.RevokedAt = &now
	r.s.data.tokens[key] = t
	return nil
}

func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	defer r.s.lockWrite(ctx)()

	var n int64
	for k, t := range r.s.data.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.s.data.tokens, k)
			n++
		}
	}
	return n, nil
}
