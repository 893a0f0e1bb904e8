package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
)

const blacklistPrefix = "jwt:blacklist:"

// TokenBlacklist manages revoked JWT tokens
type TokenBlacklist struct {
	cache domain.CacheRepository
}

// NewTokenBlacklist creates a new token blacklist on Redis or the in-memory cache
func NewTokenBlacklist(cache domain.CacheRepository) *TokenBlacklist {
	return &TokenBlacklist{
		cache: cache,
	}
}

// Add revokes token until expiration has passed. Tokens that already expired
// are kept for a minute so a racing request still sees them revoked.
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = time.Minute
	}
	return b.cache.Set(ctx, blacklistPrefix+hashToken(token), "revoked", expiration)
}

// IsBlacklisted checks if a token is blacklisted
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, blacklistPrefix+hashToken(token))
}

// hashToken keeps raw tokens out of the cache
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
