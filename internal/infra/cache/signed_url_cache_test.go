package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestSignedURLCache_HitWithinTTL(t *testing.T) {
	c := NewSignedURLCache(time.Hour)
	c.Put("users/u1/a.jpg", "https://store.local/users/u1/a.jpg?sig=abc")

	got, ok := c.Get("users/u1/a.jpg")
	if !ok || got != "https://store.local/users/u1/a.jpg?sig=abc" {
		t.Fatalf("expected hit, got %q ok=%v", got, ok)
	}
}

func TestSignedURLCache_MissUnknownPath(t *testing.T) {
	c := NewSignedURLCache(time.Hour)
	if _, ok := c.Get("users/u1/missing.jpg"); ok {
		t.Fatal("expected miss for unknown path")
	}
}

func TestSignedURLCache_ExpiresByCacheTimestamp(t *testing.T) {
	c := NewSignedURLCache(time.Minute)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }
	c.Put("p", "https://store.local/p?sig=abc")

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("p"); ok {
		t.Fatal("entry beyond cache TTL must be re-resolved")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry must be evicted, len=%d", c.Len())
	}
}

func TestSignedURLCache_ExpiresByEmbeddedClaim(t *testing.T) {
	c := NewSignedURLCache(24 * time.Hour)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	// Presign claim says the URL dies after 60 seconds.
	url := fmt.Sprintf("https://store.local/p?X-Amz-Date=%s&X-Amz-Expires=60&X-Amz-Signature=abc",
		base.Format("20060102T150405Z"))
	c.Put("p", url)

	if _, ok := c.Get("p"); !ok {
		t.Fatal("fresh entry must hit")
	}
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("p"); ok {
		t.Fatal("entry past its embedded expiry claim must be re-resolved")
	}
}

func TestSignedURLCache_Clear(t *testing.T) {
	c := NewSignedURLCache(time.Hour)
	c.Put("a", "u1")
	c.Put("b", "u2")
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("clear must drop all entries, len=%d", c.Len())
	}
}
