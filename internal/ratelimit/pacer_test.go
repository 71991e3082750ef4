package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacerEnforcesSpacing(t *testing.T) {
	t.Parallel()

	// 600 requests per minute is a 100ms minimum interval.
	pacer := NewPacer(600)
	ctx := context.Background()

	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := pacer.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("second call went through too early: %v", elapsed)
	}
}

func TestPacerDisabledBudget(t *testing.T) {
	t.Parallel()

	pacer := NewPacer(0)
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := pacer.Wait(context.Background()); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("disabled pacer should not block, took %v", elapsed)
	}
}

func TestPacerHonoursContext(t *testing.T) {
	t.Parallel()

	pacer := NewPacer(1) // one request per minute
	if err := pacer.Wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := pacer.Wait(ctx); err == nil {
		t.Fatal("expected context deadline error on blocked wait")
	}
}
