package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLockout_LocksAfterMaxAttempts(t *testing.T) {
	s, _ := newClockedStore(t, 100)
	lo := NewLockout(s, 5, 15*time.Minute)
	ctx := context.Background()

	for i := 1; i < 5; i++ {
		locked, err := lo.RecordFailure(ctx, "asha")
		if err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
		if locked {
			t.Fatalf("failure %d: locked too early", i)
		}
	}
	locked, _ := lo.RecordFailure(ctx, "asha")
	if !locked {
		t.Fatal("expected 5th failure to lock")
	}
	if ok, _ := lo.Locked(ctx, "ASHA "); !ok {
		t.Error("expected username lookup to be case and space insensitive")
	}
}

func TestLockout_ExpiresAfterDuration(t *testing.T) {
	s, clk := newClockedStore(t, 100)
	lo := NewLockout(s, 2, 15*time.Minute)
	ctx := context.Background()

	lo.RecordFailure(ctx, "asha")
	lo.RecordFailure(ctx, "asha")
	clk.Advance(14 * time.Minute)
	if ok, _ := lo.Locked(ctx, "asha"); !ok {
		t.Error("expected lock to hold before duration elapses")
	}
	clk.Advance(time.Minute)
	if ok, _ := lo.Locked(ctx, "asha"); ok {
		t.Error("expected lock to lapse after duration")
	}
}

func TestLockout_ResetOnSuccess(t *testing.T) {
	s, _ := newClockedStore(t, 100)
	lo := NewLockout(s, 3, 15*time.Minute)
	ctx := context.Background()

	lo.RecordFailure(ctx, "asha")
	lo.RecordFailure(ctx, "asha")
	if err := lo.Reset(ctx, "asha"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	lo.RecordFailure(ctx, "asha")
	lo.RecordFailure(ctx, "asha")
	if ok, _ := lo.Locked(ctx, "asha"); ok {
		t.Error("expected reset to clear earlier failures")
	}
}

func TestLockout_PerUsername(t *testing.T) {
	s, _ := newClockedStore(t, 100)
	lo := NewLockout(s, 1, time.Minute)
	ctx := context.Background()

	lo.RecordFailure(ctx, "asha")
	if ok, _ := lo.Locked(ctx, "ravi"); ok {
		t.Error("expected other usernames to be unaffected")
	}
}
