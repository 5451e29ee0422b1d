package utils

import (
	"cipherdrive/internal/repo"
	"cipherdrive/model"
	"context"
	"encoding/json"
	"time"
)

const shareCachePrefix = "share:"

// ShareCacheKey builds the cache key for a share token. The key's TTL
// mirrors the link's expiry so the keyspace-notification listener can
// flip past-due links eagerly.
func ShareCacheKey(token string) string {
	return shareCachePrefix + token
}

// CacheShare stores share metadata. The cache is advisory: redemption
// always goes through the database. Password-protected links are not
// cached since verification needs the stored hash.
func CacheShare(ctx context.Context, share *model.ShareLink, defaultTTL time.Duration) error {
	if repo.Redis == nil || share == nil || share.PasswordProtected() {
		return nil
	}
	ttl := defaultTTL
	if share.ExpiresAt != nil {
		ttl = time.Until(*share.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}
	data, err := json.Marshal(share)
	if err != nil {
		return err
	}
	return repo.Redis.Set(ctx, ShareCacheKey(share.Token), data, ttl).Err()
}

// GetShareFromCache reads cached share metadata.
func GetShareFromCache(ctx context.Context, token string) (*model.ShareLink, bool) {
	if repo.Redis == nil {
		return nil, false
	}
	val, err := repo.Redis.Get(ctx, ShareCacheKey(token)).Result()
	if err != nil {
		return nil, false
	}
	var share model.ShareLink
	if err := json.Unmarshal([]byte(val), &share); err != nil {
		return nil, false
	}
	return &share, true
}

// InvalidateShareCache drops a cached share.
func InvalidateShareCache(ctx context.Context, token string) error {
	if repo.Redis == nil {
		return nil
	}
	return repo.Redis.Del(ctx, ShareCacheKey(token)).Err()
}
