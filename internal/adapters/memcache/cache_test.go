package memcache

import (
	"context"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New()
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); err != ErrMiss {
		t.Fatalf("expected ErrMiss for absent key, got %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("get = %q, %v", got, err)
	}
}

func TestLazyExpiry(t *testing.T) {
	c := New()
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }

	_ = c.Set(ctx, "k", []byte("v"), 900)

	// Just before the TTL boundary the entry is live.
	c.now = func() time.Time { return base.Add(899 * time.Second) }
	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatalf("entry expired early: %v", err)
	}

	// Past the boundary it is a miss and gets evicted.
	c.now = func() time.Time { return base.Add(901 * time.Second) }
	if _, err := c.Get(ctx, "k"); err != ErrMiss {
		t.Fatalf("expected ErrMiss after TTL, got %v", err)
	}
	if _, ok := c.entries["k"]; ok {
		t.Error("expired entry should have been evicted on access")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), 60)
	_ = c.Delete(ctx, "k")
	if _, err := c.Get(ctx, "k"); err != ErrMiss {
		t.Fatalf("expected ErrMiss after delete, got %v", err)
	}
	if err := c.Delete(ctx, "absent"); err != nil {
		t.Fatalf("deleting an absent key must not error: %v", err)
	}
}
