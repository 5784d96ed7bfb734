package auth

import (
	"context"
	"time"

	"bistro/internal/cache"
)

const revokedRefreshKeyPrefix = "revoked:refresh_token:"

// TokenStoreInterface defines the interface for refresh-token revocation.
type TokenStoreInterface interface {
	RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRefreshTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps revoked refresh token IDs in Redis until they would
// have expired anyway.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// RevokeRefreshToken marks tokenID revoked for ttl.
func (s *TokenStore) RevokeRefreshToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedRefreshKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsRefreshTokenRevoked checks the revocation list. Redis errors read as not revoked.
func (s *TokenStore) IsRefreshTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.cache.Exists(ctx, revokedRefreshKeyPrefix+tokenID), nil
}
