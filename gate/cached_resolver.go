package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver memoizes another resolver for a fixed TTL. Errors are not
// cached, so a failing lookup is retried on the next call.
type CachedResolver[U comparable] struct {
	inner ProfileResolver[U]
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[U]cachedProfile
}

type cachedProfile struct {
	profile   Profile
	expiresAt time.Time
}

// NewCachedResolver wraps inner with a ttl cache.
func NewCachedResolver[U comparable](inner ProfileResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[U]cachedProfile),
	}
}

func (r *CachedResolver[U]) Resolve(ctx context.Context, subject U) (Profile, error) {
	now := r.now()

	r.mu.RLock()
	entry, ok := r.entries[subject]
	r.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.profile, nil
	}

	profile, err := r.inner.Resolve(ctx, subject)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.entries[subject] = cachedProfile{profile: profile, expiresAt: now.Add(r.ttl)}
	r.mu.Unlock()
	return profile, nil
}

// Invalidate drops one subject, e.g. after their account changed.
func (r *CachedResolver[U]) Invalidate(subject U) {
	r.mu.Lock()
	delete(r.entries, subject)
	r.mu.Unlock()
}
