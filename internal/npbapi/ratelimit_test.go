package npbapi

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)

	start := time.Now()
	err := rl.Wait(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// first request is within burst
	if elapsed > 50*time.Millisecond {
		t.Errorf("expected immediate response, got %v", elapsed)
	}
}

func TestRateLimiter_Wait_ContextCanceled(t *testing.T) {
	rl := NewRateLimiter(0.1, 1)

	// use up the burst
	_ = rl.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Error("expected error due to context timeout, got nil")
	}
}

func TestRateLimiter_Cooldown(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)
	rl.SetCooldown(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := rl.Wait(ctx)
	elapsed := time.Since(start)

	if err != context.DeadlineExceeded {
		t.Errorf("expected DeadlineExceeded during cooldown, got %v", err)
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected to wait for the context deadline, got %v", elapsed)
	}
}

func TestRateLimiter_CooldownNeverShrinks(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)
	rl.SetCooldown(time.Minute)
	first := rl.cooldownUntil
	rl.SetCooldown(time.Millisecond)

	if !rl.cooldownUntil.Equal(first) {
		t.Errorf("shorter cooldown replaced longer one: %v -> %v", first, rl.cooldownUntil)
	}
}

func TestRateLimiter_CooldownExpired(t *testing.T) {
	rl := NewRateLimiter(10.0, 1)
	rl.cooldownUntil = time.Now().Add(-100 * time.Millisecond)

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected immediate response, got %v", elapsed)
	}
}

func TestDefaultRateLimiter_AllowsPageLoadBurst(t *testing.T) {
	rl := DefaultRateLimiter()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected burst of 5 to pass immediately, got %v", elapsed)
	}
}
