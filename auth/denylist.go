package auth

import (
	"sync"
	"time"
)

// MemoryDenylist is an in-process revocation set keyed by token id. Entries
// expire with the token they belong to, so the set stays bounded by the
// access token TTL. It is safe for concurrent use.
type MemoryDenylist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryDenylist creates a denylist and starts a janitor that sweeps
// expired entries every cleanupInterval. Call Close to stop the janitor.
func NewMemoryDenylist(cleanupInterval time.Duration) *MemoryDenylist {
	d := &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go d.janitor(cleanupInterval)
	}

	return d
}

// Revoke marks a token id as revoked until the given time, normally the
// token's natural expiry. Empty ids are ignored.
func (d *MemoryDenylist) Revoke(jti string, until time.Time) {
	if jti == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = until
}

// IsRevoked reports whether the token id is currently revoked. Entries whose
// expiry has passed no longer count, even before the janitor sweeps them.
func (d *MemoryDenylist) IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	until, ok := d.entries[jti]
	if !ok {
		return false
	}
	return d.now().Before(until)
}

// Close stops the janitor goroutine.
func (d *MemoryDenylist) Close() {
	d.once.Do(func() {
		close(d.stop)
	})
}

func (d *MemoryDenylist) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.sweep()
		case <-d.stop:
			return
		}
	}
}

func (d *MemoryDenylist) sweep() {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()
	for jti, until := range d.entries {
		if now.After(until) {
			delete(d.entries, jti)
		}
	}
}

var _ Denylist = (*MemoryDenylist)(nil)
