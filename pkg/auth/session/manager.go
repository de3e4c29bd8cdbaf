package session

import (
	"context"
	"errors"

	"github.com/harborpoint/billing-backend/pkg/redis"
)

// AccessSessionChecker reports whether the session referenced by a token's
// jti is still live. Sessions are written by the auth service into the
// shared Redis; this service only checks for revocation.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, id string) (bool, error)
}

// Manager checks auth sessions against the shared Redis store.
type Manager struct {
	store redis.SessionStore
}

// NewManager wires the session checker to the Redis client.
func NewManager(store redis.SessionStore) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	return &Manager{store: store}, nil
}

// HasSession reports whether the session key exists.
func (m *Manager) HasSession(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, errors.New("session id is required")
	}
	return m.store.Exists(ctx, m.store.SessionKey(id))
}
