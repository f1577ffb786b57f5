// internal/accounts/sessions.go
package accounts

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is an opaque-token owner session bound to one tenant.
type Session struct {
	Token       string    `json:"token"`
	TenantID    string    `json:"tenant_id"`
	PrincipalID string    `json:"principal_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Sessions stores owner sessions in redis, or process memory when no redis
// is configured (dev only; memory sessions do not survive restarts and are
// not shared across instances).
type Sessions struct {
	rdb *redis.Client
	ttl time.Duration

	mu  sync.RWMutex
	mem map[string]Session
}

func NewSessions(rdb *redis.Client, ttl time.Duration) *Sessions {
	return &Sessions{rdb: rdb, ttl: ttl, mem: map[string]Session{}}
}

func (s *Sessions) Issue(ctx context.Context, tenantID, principalID string) (Session, error) {
	sess := Session{
		Token:       uuid.NewString(),
		TenantID:    tenantID,
		PrincipalID: principalID,
		ExpiresAt:   time.Now().Add(s.ttl),
	}
	if s.rdb != nil {
		b, _ := json.Marshal(sess)
		if err := s.rdb.Set(ctx, "session:"+sess.Token, b, s.ttl).Err(); err != nil {
			return Session{}, err
		}
		return sess, nil
	}
	s.mu.Lock()
	s.mem[sess.Token] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *Sessions) Get(ctx context.Context, token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	if s.rdb != nil {
		b, err := s.rdb.Get(ctx, "session:"+token).Bytes()
		if err != nil {
			return Session{}, false
		}
		var sess Session
		if json.Unmarshal(b, &sess) != nil {
			return Session{}, false
		}
		return sess, true
	}
	s.mu.RLock()
	sess, ok := s.mem[token]
	s.mu.RUnlock()
	if !ok || time.Now().After(sess.ExpiresAt) {
		return Session{}, false
	}
	return sess, true
}

func (s *Sessions) Revoke(ctx context.Context, token string) {
	if s.rdb != nil {
		_ = s.rdb.Del(ctx, "session:"+token).Err()
		return
	}
	s.mu.Lock()
	delete(s.mem, token)
	s.mu.Unlock()
}
