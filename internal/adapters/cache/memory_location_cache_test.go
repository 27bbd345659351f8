package cache

import (
	"context"
	"foodcart-service/internal/domain"
	"foodcart-service/internal/pkg/clock"
	"testing"
	"time"
)

func TestMemoryLocationCacheHitAndExpiry(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	c := NewMemoryLocationCache(clk)

	want := &domain.Coordinates{Lat: 55.76, Lon: 37.62}
	if err := c.Set(ctx, "Tverskaya 1", want, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx, "Tverskaya 1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if *got != *want {
		t.Fatalf("coords = %+v, want %+v", *got, *want)
	}

	clk.Add(59 * time.Minute)
	if _, ok, _ := c.Get(ctx, "Tverskaya 1"); !ok {
		t.Fatalf("expected hit before ttl elapsed")
	}

	clk.Add(time.Minute)
	if _, ok, _ := c.Get(ctx, "Tverskaya 1"); ok {
		t.Fatalf("expected miss once ttl elapsed")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be dropped on read, len=%d", c.Len())
	}
}

func TestMemoryLocationCacheNegativeEntry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryLocationCache(clock.NewMockClock(time.Unix(0, 0)))

	if err := c.Set(ctx, "nowhere", nil, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx, "nowhere")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("negative entry should be a hit")
	}
	if got != nil {
		t.Fatalf("negative entry should carry nil coords, got %+v", *got)
	}
}

func TestMemoryLocationCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryLocationCache(clock.NewMockClock(time.Unix(0, 0)))

	in := &domain.Coordinates{Lat: 1, Lon: 2}
	_ = c.Set(ctx, "a", in, time.Hour)
	in.Lat = 99

	got, _, _ := c.Get(ctx, "a")
	got.Lon = 42

	again, _, _ := c.Get(ctx, "a")
	if again.Lat != 1 || again.Lon != 2 {
		t.Fatalf("stored value was mutated: %+v", *again)
	}
}

func TestMemoryLocationCacheSweep(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Unix(0, 0))
	c := NewMemoryLocationCache(clk)

	_ = c.Set(ctx, "short", &domain.Coordinates{}, time.Minute)
	_ = c.Set(ctx, "long", &domain.Coordinates{}, time.Hour)

	clk.Add(2 * time.Minute)
	if n := c.Sweep(); n != 1 {
		t.Fatalf("sweep removed %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
	if _, ok, _ := c.Get(ctx, "long"); !ok {
		t.Fatalf("long-lived entry should survive the sweep")
	}
}

func TestMemoryLocationCacheRunSweeperStops(t *testing.T) {
	c := NewMemoryLocationCache(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not stop after cancel")
	}
}
