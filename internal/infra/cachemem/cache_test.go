package cachemem

import (
	"context"
	"testing"
	"time"
)

func TestCountCacheRoundTrip(t *testing.T) {
	c := New()
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("empty cache reported a hit")
	}
	if err := c.Put(ctx, "k", 7, time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || v != 7 {
		t.Fatalf("Get = (%d, %t, %v), want (7, true, nil)", v, ok, err)
	}
}

func TestCountCacheExpiry(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.Put(ctx, "k", 3, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expired entry still served")
	}
}

func TestCountCacheZeroTTLNeverExpires(t *testing.T) {
	c := New()
	ctx := context.Background()

	c.Put(ctx, "k", 3, 0)
	if v, ok, _ := c.Get(ctx, "k"); !ok || v != 3 {
		t.Fatalf("zero-ttl entry lost: (%d, %t)", v, ok)
	}
}
