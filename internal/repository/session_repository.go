package repository

import (
	"context"
	"time"

	"github.com/learnmate/learnmate-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// SessionRepository keeps a denylist of signed-out sessions in Redis. Keys
// expire together with the tokens they revoke.
type SessionRepository struct {
	rdb *redis.Client
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

// Revoke marks a session as signed out for ttl.
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	return r.rdb.Set(ctx, config.CacheKey.RevokedSessionKey(sessionID), "1", ttl).Err()
}

// IsRevoked reports whether a session was signed out.
func (r *SessionRepository) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, config.CacheKey.RevokedSessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
