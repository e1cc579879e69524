// Package devotp provides an in-memory store for issued OTP codes keyed by email and purpose,
// used only when dev OTP mode is enabled (GET /dev/otp).
package devotp

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store holds plain OTP codes for dev-only retrieval. Not used in production.
type Store interface {
	// Put stores otp for (email, purpose) until expiresAt, replacing any earlier code.
	Put(ctx context.Context, email, purpose, otp string, expiresAt time.Time)
	// Get returns the latest otp for (email, purpose) if present and not expired.
	Get(ctx context.Context, email, purpose string) (otp string, ok bool)
}

type entry struct {
	otp       string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev OTP store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

func key(email, purpose string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "|" + purpose
}

// Put stores otp for (email, purpose) until expiresAt.
func (s *MemoryStore) Put(ctx context.Context, email, purpose, otp string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key(email, purpose)] = entry{otp: otp, expiresAt: expiresAt}
}

// Get returns the otp for (email, purpose) if present and not expired. Expired entries are evicted.
func (s *MemoryStore) Get(ctx context.Context, email, purpose string) (string, bool) {
	k := key(email, purpose)
	s.mu.RLock()
	e, ok := s.m[k]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		delete(s.m, k)
		s.mu.Unlock()
		return "", false
	}
	return e.otp, true
}
