package auth

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist tracks revoked token strings.
type TokenBlacklist interface {
	// Add marks token as revoked. expiresAt is the token's own expiry; the zero
	// time keeps the entry for the lifetime of the backend. Adding twice is a no-op.
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
	// Clear empties the blacklist. Only test harnesses call it.
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

// MemoryBlacklist keeps revoked tokens in process memory.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// Ensure MemoryBlacklist implements TokenBlacklist
var _ TokenBlacklist = (*MemoryBlacklist)(nil)

// NewMemoryBlacklist creates an empty in-process blacklist.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (b *MemoryBlacklist) Add(_ context.Context, token string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[token]; ok {
		return nil
	}
	b.entries[token] = expiresAt
	return nil
}

func (b *MemoryBlacklist) Contains(_ context.Context, token string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[token]
	return ok, nil
}

func (b *MemoryBlacklist) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.entries)
	return nil
}

func (b *MemoryBlacklist) Len(_ context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries), nil
}

// Sweep drops entries whose token expiry has passed and returns how many were removed.
// An expired token already fails verification, so dropping it loses nothing.
func (b *MemoryBlacklist) Sweep() int {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for token, exp := range b.entries {
		if !exp.IsZero() && !exp.After(now) {
			delete(b.entries, token)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (b *MemoryBlacklist) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := b.Sweep()
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
