package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Set("a", "uno")
	got, ok := c.Get("a")
	if !ok || got != "uno" {
		t.Errorf("Get(a) = %q, %v; want uno, true", got, ok)
	}

	c.Set("a", "dos")
	got, _ = c.Get("a")
	if got != "dos" {
		t.Errorf("Get(a) after overwrite = %q, want dos", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	// Touch k0 so k1 becomes the eviction candidate.
	c.Get("k0")
	c.Set("k3", 3)

	if _, ok := c.Get("k1"); ok {
		t.Error("k1 should have been evicted")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s should still be cached", key)
		}
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := NewLRU[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expired Get, want 0", c.Len())
	}
}

func TestLRU_CleanExpired(t *testing.T) {
	c := NewLRU[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_Delete(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("never-there")

	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should miss")
	}
}

func TestVersionKey(t *testing.T) {
	tests := []struct {
		version int64
		parts   []string
		want    string
	}{
		{1, nil, "v1"},
		{7, []string{"summary"}, "v7:summary"},
		{7, []string{"projection", "6"}, "v7:projection:6"},
	}

	for _, tt := range tests {
		if got := VersionKey(tt.version, tt.parts...); got != tt.want {
			t.Errorf("VersionKey(%d, %v) = %q, want %q", tt.version, tt.parts, got, tt.want)
		}
	}
}
