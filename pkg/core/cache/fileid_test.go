package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestFileIDCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := NewFileIDCache(path, time.Hour)

	if _, ok := c.Get("123"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set("123", "file-id-abc")
	got, ok := c.Get("123")
	if !ok || got != "file-id-abc" {
		t.Fatalf("Get = (%q, %v), want (file-id-abc, true)", got, ok)
	}
	if c.Size() != 1 {
		t.Fatalf("Size = %d, want 1", c.Size())
	}
}

func TestFileIDCachePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := NewFileIDCache(path, time.Hour)
	c.Set("1", "one")
	c.Set("2", "two")

	reloaded := NewFileIDCache(path, time.Hour)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, ok := reloaded.Get("1"); !ok || got != "one" {
		t.Fatalf("reloaded Get(1) = (%q, %v)", got, ok)
	}
	if reloaded.Size() != 2 {
		t.Fatalf("reloaded Size = %d, want 2", reloaded.Size())
	}
}

func TestFileIDCacheLoadMissingFile(t *testing.T) {
	c := NewFileIDCache(filepath.Join(t.TempDir(), "nope.json"), time.Hour)
	if err := c.Load(); err != nil {
		t.Fatalf("missing cache file should not error: %v", err)
	}
}

func TestFileIDCacheExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := NewFileIDCache(path, -time.Minute)

	c.Set("123", "stale")
	if _, ok := c.Get("123"); ok {
		t.Fatal("expired entry must miss")
	}
	// The expired entry was evicted by the read.
	if c.Size() != 0 {
		t.Fatalf("Size after eviction = %d, want 0", c.Size())
	}
}

func TestFileIDCacheClearExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := NewFileIDCache(path, -time.Minute)
	c.Set("1", "a")
	c.Set("2", "b")

	if n := c.ClearExpired(); n != 2 {
		t.Fatalf("ClearExpired = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d, want 0", c.Size())
	}
}
