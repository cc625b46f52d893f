package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/samber/oops"

	"starwars/internal/cache"
)

// BlacklistKeyPrefix namespaces revoked tokens in Redis.
const BlacklistKeyPrefix = "blacklist:token:"

// RedisBlacklist keeps revoked tokens in Redis so they survive restarts.
// Each key expires together with the token it revokes.
type RedisBlacklist struct {
	cache *cache.Client
	now   func() time.Time
}

// Ensure RedisBlacklist implements TokenBlacklist
var _ TokenBlacklist = (*RedisBlacklist)(nil)

// NewRedisBlacklist creates a blacklist on top of a prefixed cache client.
func NewRedisBlacklist(cache *cache.Client) *RedisBlacklist {
	return &RedisBlacklist{cache: cache, now: time.Now}
}

func (b *RedisBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = expiresAt.Sub(b.now())
		if ttl <= 0 {
			// Already expired; verification rejects it without an entry.
			return nil
		}
	}
	if err := b.cache.SetNX(ctx, tokenKey(token), []byte("1"), ttl); err != nil {
		return oops.Code("BLACKLIST_ADD_FAILED").Wrap(err)
	}
	return nil
}

func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	ok, err := b.cache.Exists(ctx, tokenKey(token))
	if err != nil {
		return false, oops.Code("BLACKLIST_LOOKUP_FAILED").Wrap(err)
	}
	return ok, nil
}

func (b *RedisBlacklist) Clear(ctx context.Context) error {
	if err := b.cache.DeleteAll(ctx); err != nil {
		return oops.Code("BLACKLIST_CLEAR_FAILED").Wrap(err)
	}
	return nil
}

func (b *RedisBlacklist) Len(ctx context.Context) (int, error) {
	n, err := b.cache.Count(ctx)
	if err != nil {
		return 0, oops.Code("BLACKLIST_COUNT_FAILED").Wrap(err)
	}
	return n, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
