// Package cache provides TTL caches with ETag support for upstream payloads
// and API responses. Two backends exist: an in-process map and Redis.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"
)

// TTLs for upstream data. FPL recomputes bootstrap data a few times per
// gameweek and live data roughly every minute during matches.
const (
	TTLBootstrap     = 5 * time.Minute
	TTLFixtures      = 1 * time.Minute
	TTLLive          = 20 * time.Second
	TTLPlayerSummary = 10 * time.Minute
	TTLSorare        = 1 * time.Hour
)

// Store is a byte cache keyed by string.
type Store interface {
	// Get returns data, etag and whether a live entry was found.
	Get(ctx context.Context, key string) (data []byte, etag string, ok bool)
	// Set stores data for ttl and returns its etag.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) string
	// Stats reports backend statistics for health checks.
	Stats(ctx context.Context) map[string]interface{}
	Close() error
}

// ComputeETag generates a weak ETag from response data using MD5.
func ComputeETag(data []byte) string {
	hash := md5.Sum(data)
	return fmt.Sprintf(`W/"%x"`, hash[:8])
}

// CheckETagMatch checks if If-None-Match header matches the current ETag.
func CheckETagMatch(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	// Single-etag comparison
	return ifNoneMatch == etag
}
