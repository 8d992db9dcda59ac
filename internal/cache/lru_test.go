package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned ok")
	}

	c.Set("a", "valor")
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Get after Set returned !ok")
	}
	if got != "valor" {
		t.Errorf("Get = %q, want %q", got, "valor")
	}

	c.Set("a", "novo")
	if got, _ := c.Get("a"); got != "novo" {
		t.Errorf("Get after overwrite = %q, want %q", got, "novo")
	}
	if c.Size() != 1 {
		t.Errorf("Size after overwrite = %d, want 1", c.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	// Touch k0 so k1 becomes the least recently used.
	c.Get("k0")
	c.Set("k3", 3)

	if c.Size() != 3 {
		t.Errorf("Size = %d, want 3", c.Size())
	}
	if _, ok := c.Get("k1"); ok {
		t.Error("least recently used entry survived eviction")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("entry %q evicted unexpectedly", key)
		}
	}
}

func TestLRUCacheTTLExpiry(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)
	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry still returned")
	}
	if c.Size() != 0 {
		t.Errorf("Size after expired Get = %d, want 0", c.Size())
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still returned")
	}
	// Deleting a missing key is a no-op.
	c.Delete("missing")
}

func TestLRUCachePurge(t *testing.T) {
	c := NewLRUCache[int](8, time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	c.Purge()
	if c.Size() != 0 {
		t.Errorf("Size after Purge = %d, want 0", c.Size())
	}
	// The cache keeps working after a purge.
	c.Set("a", 42)
	if got, ok := c.Get("a"); !ok || got != 42 {
		t.Errorf("Get after Purge+Set = %d, %v", got, ok)
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c := NewLRUCache[int](8, 10*time.Millisecond)
	c.Set("old1", 1)
	c.Set("old2", 2)
	time.Sleep(20 * time.Millisecond)

	removed := c.CleanExpired()
	if removed != 2 {
		t.Errorf("CleanExpired removed %d, want 2", removed)
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0", c.Size())
	}
	if again := c.CleanExpired(); again != 0 {
		t.Errorf("second CleanExpired removed %d, want 0", again)
	}
}

func TestManagerRegisterAndStop(t *testing.T) {
	m := NewManager()
	c := NewLRUCache[int](4, time.Minute)
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	c.Set("a", 1)
	m.Stop()

	if got, ok := c.Get("a"); !ok || got != 1 {
		t.Errorf("entry lost after manager stop: %d, %v", got, ok)
	}
}
