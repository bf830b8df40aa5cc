package cache

import (
	"net/url"
	"strconv"
	"sync"
	"time"

	"tryonjewel-server/internal/infra/metrics"
)

// SignedURLCache maps a storage path to a previously minted signed URL and
// its expiry. It is a process-lifetime performance cache with no durability:
// losing it only costs extra signing calls. The cache is an explicit
// instance owned by its consumer and safe for concurrent use.
type SignedURLCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time // injectable clock for tests
}

type entry struct {
	url      string
	cachedAt time.Time
	expires  time.Time
}

func NewSignedURLCache(ttl time.Duration) *SignedURLCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedURLCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a cached URL for path if both the cache's own timestamp and
// the URL's embedded expiry claim are still valid. Expired entries are
// evicted and reported as misses.
func (c *SignedURLCache) Get(path string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok {
		metrics.IncCacheRequest("signed_url", "miss")
		return "", false
	}
	now := c.now()
	if now.After(e.expires) || now.Sub(e.cachedAt) > c.ttl {
		delete(c.entries, path)
		metrics.IncCacheRequest("signed_url", "expired")
		return "", false
	}
	metrics.IncCacheRequest("signed_url", "hit")
	return e.url, true
}

// Put stores a freshly minted URL. The effective expiry is the earlier of
// the cache TTL and any expiry claim embedded in the URL itself.
func (c *SignedURLCache) Put(path, signedURL string) {
	now := c.now()
	expires := now.Add(c.ttl)
	if claim, ok := embeddedExpiry(signedURL); ok && claim.Before(expires) {
		expires = claim
	}
	c.mu.Lock()
	c.entries[path] = entry{url: signedURL, cachedAt: now, expires: expires}
	c.mu.Unlock()
}

// Clear drops every entry; called on logout/reset.
func (c *SignedURLCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

func (c *SignedURLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// embeddedExpiry parses the AWS-style presign claim
// (X-Amz-Date + X-Amz-Expires) carried by minio presigned URLs.
func embeddedExpiry(signedURL string) (time.Time, bool) {
	u, err := url.Parse(signedURL)
	if err != nil {
		return time.Time{}, false
	}
	q := u.Query()
	dateStr := q.Get("X-Amz-Date")
	expStr := q.Get("X-Amz-Expires")
	if dateStr == "" || expStr == "" {
		return time.Time{}, false
	}
	signedAt, err := time.Parse("20060102T150405Z", dateStr)
	if err != nil {
		return time.Time{}, false
	}
	seconds, err := strconv.Atoi(expStr)
	if err != nil {
		return time.Time{}, false
	}
	return signedAt.Add(time.Duration(seconds) * time.Second), true
}
