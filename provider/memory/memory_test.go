package memory

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestGetSetDelAndTTL(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	p := New(Config{Clock: clk.now})

	if _, ok, err := p.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "k", []byte("v"), 1, time.Second); !ok || err != nil {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	if b, ok, _ := p.Get(ctx, "k"); !ok || string(b) != "v" {
		t.Fatalf("expected hit v, got %q ok=%v", b, ok)
	}

	clk.advance(time.Second)
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("entry should expire after ttl")
	}
	if p.Len() != 0 {
		t.Fatalf("expired entry should be dropped on read, len=%d", p.Len())
	}

	_, _ = p.Set(ctx, "forever", []byte("x"), 1, 0)
	clk.advance(24 * time.Hour)
	if _, ok, _ := p.Get(ctx, "forever"); !ok {
		t.Fatalf("ttl<=0 must not expire")
	}
	if err := p.Del(ctx, "forever"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := p.Get(ctx, "forever"); ok {
		t.Fatalf("Del did not remove key")
	}
}

func TestLockExclusiveAndExpiring(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	p := New(Config{Clock: clk.now})

	release, ok, err := p.Lock(ctx, "lock:a", 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("first Lock: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := p.Lock(ctx, "lock:a", 10*time.Second); ok {
		t.Fatalf("second Lock must not acquire a held lease")
	}
	if _, ok, _ := p.Lock(ctx, "lock:b", 10*time.Second); !ok {
		t.Fatalf("different key must lock independently")
	}

	// lease expires; a new holder takes over and the stale release must not free it
	clk.advance(11 * time.Second)
	_, ok, _ = p.Lock(ctx, "lock:a", 10*time.Second)
	if !ok {
		t.Fatalf("expired lease should be acquirable")
	}
	_ = release(ctx)
	if _, ok, _ := p.Lock(ctx, "lock:a", 10*time.Second); ok {
		t.Fatalf("stale release freed another holder's lease")
	}
}

func TestSetCopiesValue(t *testing.T) {
	ctx := context.Background()
	p := New(Config{})

	in := []byte("value")
	_, _ = p.Set(ctx, "k", in, 1, 0)
	in[0] = 'X'
	if b, _, _ := p.Get(ctx, "k"); string(b) != "value" {
		t.Fatalf("stored value changed with the caller's slice: %q", b)
	}
}
