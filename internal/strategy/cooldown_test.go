package strategy

import (
	"testing"
	"time"
)

func TestCooldownWithinWindow(t *testing.T) {
	g := NewCooldownGate(1800 * time.Second)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !g.TryConsume("SUI", now) {
		t.Fatalf("first consume must succeed")
	}
	if g.TryConsume("SUI", now.Add(1799*time.Second)) {
		t.Fatalf("consume within window must fail")
	}
	// The failed attempt must not have reset the timer.
	if rem := g.Remaining("SUI", now.Add(1799*time.Second)); rem != time.Second {
		t.Fatalf("expected 1s remaining, got %v", rem)
	}
}

func TestCooldownAfterWindow(t *testing.T) {
	g := NewCooldownGate(1800 * time.Second)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !g.TryConsume("SUI", now) {
		t.Fatalf("first consume must succeed")
	}
	if !g.TryConsume("SUI", now.Add(1800*time.Second)) {
		t.Fatalf("consume at window boundary must succeed")
	}
}

func TestCooldownPerSymbol(t *testing.T) {
	g := NewCooldownGate(time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if !g.TryConsume("SUI", now) {
		t.Fatalf("SUI consume must succeed")
	}
	if !g.TryConsume("SOL", now) {
		t.Fatalf("symbols must not share cooldown state")
	}
	active := g.Active(now.Add(30 * time.Minute))
	if len(active) != 2 {
		t.Fatalf("expected 2 active cooldowns, got %d", len(active))
	}
	if active["SUI"] != 30*time.Minute {
		t.Fatalf("unexpected remaining %v", active["SUI"])
	}
}
