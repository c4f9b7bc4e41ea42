package auth

import (
	"context"
	"strconv"
	"time"
)

const blacklistKeyPrefix = "blacklist:"

// TokenStore is the key-value surface the revocation list needs: a
// put-with-TTL and an existence check. Production wires the shared Redis
// cache here; tests use an in-memory fake. It must be a store every
// worker can reach, so a logout on one worker is seen by all of them.
type TokenStore interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Blacklist records revoked access tokens, keyed by the raw token value,
// each entry expiring exactly when the token itself would have.
type Blacklist struct {
	store TokenStore
}

func NewBlacklist(store TokenStore) *Blacklist {
	return &Blacklist{store: store}
}

// Revoke inserts the token with the given remaining lifetime. A
// non-positive ttl is a no-op: an already-expired token is rejected by
// signature verification anyway, and an entry for it would outlive
// nothing but still occupy the store.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	expiresAt := time.Now().Add(ttl).Unix()
	return b.store.Set(ctx, blacklistKeyPrefix+token, strconv.FormatInt(expiresAt, 10), ttl)
}

// IsRevoked reports whether the token has been blacklisted and the entry
// has not yet expired.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	return b.store.Exists(ctx, blacklistKeyPrefix+token)
}
