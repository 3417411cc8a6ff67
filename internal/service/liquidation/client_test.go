package liquidation

import (
	"testing"
	"time"
)

func TestBuildSnapshotSplitsAroundPrice(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	levels := []liqLevel{
		{Price: 2.80, LiqUSD: 500000, Side: 1},  // long cluster below
		{Price: 2.85, LiqUSD: 1200000, Side: 1}, // larger, closer long cluster
		{Price: 3.00, LiqUSD: 800000, Side: 2},  // short cluster above
		{Price: 2.70, LiqUSD: 300000, Side: 2},  // short below price: stale, dropped
		{Price: 0, LiqUSD: 100, Side: 1},        // invalid
	}
	snap := buildSnapshot("SUIUSDT", 2.91, at, levels)

	if len(snap.ClustersBelow) != 2 || len(snap.ClustersAbove) != 1 {
		t.Fatalf("unexpected split: %d below, %d above", len(snap.ClustersBelow), len(snap.ClustersAbove))
	}
	if snap.ClustersBelow[0].PriceLevel != 2.85 {
		t.Fatalf("clusters must be sorted by distance, got %v first", snap.ClustersBelow[0].PriceLevel)
	}

	largest := snap.LargestBelow(5.0)
	if largest == nil || largest.SizeUSD != 1200000 {
		t.Fatalf("unexpected largest cluster below: %+v", largest)
	}
	if c := snap.LargestBelow(1.0); c != nil {
		t.Fatalf("no cluster within 1%%, got %+v", c)
	}
	if c := snap.LargestAbove(5.0); c == nil || c.PriceLevel != 3.00 {
		t.Fatalf("unexpected largest cluster above: %+v", c)
	}
}
