package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestNew_UnlimitedNeverBlocks(t *testing.T) {
	l := New(0)
	if !l.Unlimited() {
		t.Fatal("expected unlimited limiter")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait() error on iteration %d: %v", i, err)
		}
	}
}

func TestNew_BurstThenDeny(t *testing.T) {
	l := New(60) // one per second, burst 6
	for i := 0; i < 6; i++ {
		if !l.Allow() {
			t.Fatalf("request %d should be within burst", i)
		}
	}
	if l.Allow() {
		t.Error("request beyond burst should be denied")
	}
}

func TestWait_RespectsCancellation(t *testing.T) {
	l := New(1)
	l.Allow() // drain the single token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}
