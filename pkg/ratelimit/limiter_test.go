package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewUnlimited(t *testing.T) {
	limiter := New(0)
	for i := 0; i < 1000; i++ {
		if !limiter.Allow() {
			t.Fatal("Unlimited limiter denied a request")
		}
	}
	if err := limiter.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v", err)
	}
	if _, ok := New(-5).(Unlimited); !ok {
		t.Error("negative rate should disable pacing")
	}
	if _, ok := New(10).(*SlidingWindow); !ok {
		t.Error("positive rate should produce a sliding window")
	}
}

func TestSlidingWindow(t *testing.T) {
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sw := NewSlidingWindow(3, time.Second)
	sw.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		if !sw.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if sw.Allow() {
		t.Error("Expected request to be denied when limit is reached")
	}

	current = current.Add(time.Second + time.Millisecond)
	if !sw.Allow() {
		t.Error("Expected request to be allowed after window slides")
	}

	sw.Reset()
	if len(sw.requests) != 0 {
		t.Error("Expected requests to be cleared after reset")
	}
}

func TestSlidingWindowWaitBlocksUntilSlotOpens(t *testing.T) {
	sw := NewSlidingWindow(1, 50*time.Millisecond)
	if err := sw.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() = %v", err)
	}

	start := time.Now()
	if err := sw.Wait(context.Background()); err != nil {
		t.Fatalf("second Wait() = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("second Wait() returned after %v, expected to block", elapsed)
	}
}

func TestSlidingWindowWaitCancelled(t *testing.T) {
	sw := NewSlidingWindow(1, time.Hour)
	sw.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := sw.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
}
