package store

import (
	"errors"
	"testing"
	"time"

	"LagScalper/internal/domain/models"
)

var base = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func tick(sym string, at time.Duration, price float64) models.PriceTick {
	return models.PriceTick{Symbol: sym, Timestamp: base.Add(at), Price: price}
}

func TestWarmupThreshold(t *testing.T) {
	s := New(24*time.Hour, time.Hour)
	if s.IsWarm("SUIUSDT") {
		t.Fatalf("empty series must not be warm")
	}
	if err := s.Record(tick("SUIUSDT", 0, 1.0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(tick("SUIUSDT", 30*time.Minute, 1.1)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if s.IsWarm("SUIUSDT") {
		t.Fatalf("30m of history must not be warm")
	}
	if err := s.Record(tick("SUIUSDT", time.Hour, 1.2)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !s.IsWarm("SUIUSDT") {
		t.Fatalf("1h of history must be warm")
	}
}

func TestFeedGapExceedingRetentionResetsWarmth(t *testing.T) {
	s := New(2*time.Hour, time.Hour)
	for m := 0; m <= 90; m += 10 {
		if err := s.Record(tick("BTCUSDT", time.Duration(m)*time.Minute, 100)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if !s.IsWarm("BTCUSDT") {
		t.Fatalf("expected warm after 90m")
	}
	// Gap larger than retention: the next insert evicts everything prior.
	if err := s.Record(tick("BTCUSDT", 6*time.Hour, 100)); err != nil {
		t.Fatalf("record after gap: %v", err)
	}
	if s.IsWarm("BTCUSDT") {
		t.Fatalf("feed gap beyond retention must reset warmth")
	}
	if got := len(s.Series("BTCUSDT")); got != 1 {
		t.Fatalf("expected 1 surviving sample, got %d", got)
	}
}

func TestOutOfOrderTickRejected(t *testing.T) {
	s := New(24*time.Hour, time.Hour)
	if err := s.Record(tick("SUIUSDT", time.Hour, 1.0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	warmBefore := s.IsWarm("SUIUSDT")
	err := s.Record(tick("SUIUSDT", 30*time.Minute, 0.9))
	if !errors.Is(err, ErrOutOfOrderTick) {
		t.Fatalf("expected ErrOutOfOrderTick, got %v", err)
	}
	if got := len(s.Series("SUIUSDT")); got != 1 {
		t.Fatalf("rejected tick must not be inserted, have %d samples", got)
	}
	if s.IsWarm("SUIUSDT") != warmBefore {
		t.Fatalf("rejected tick must not change warmth")
	}
}

func TestEqualTimestampAccepted(t *testing.T) {
	s := New(24*time.Hour, time.Hour)
	if err := s.Record(tick("SUIUSDT", 0, 1.0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(tick("SUIUSDT", 0, 1.01)); err != nil {
		t.Fatalf("equal timestamps are non-decreasing, want accept: %v", err)
	}
}

func TestRetentionEviction(t *testing.T) {
	s := New(time.Hour, 30*time.Minute)
	for m := 0; m <= 120; m += 10 {
		if err := s.Record(tick("BTCUSDT", time.Duration(m)*time.Minute, float64(100+m))); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	ser := s.Series("BTCUSDT")
	for _, p := range ser {
		if p.Timestamp.Before(base.Add(time.Hour)) {
			t.Fatalf("sample at %v survived past retention", p.Timestamp)
		}
	}
	if len(ser) != 7 {
		t.Fatalf("expected 7 samples within 1h, got %d", len(ser))
	}
}

func TestSeriesSnapshotIsolation(t *testing.T) {
	s := New(24*time.Hour, time.Hour)
	if err := s.Record(tick("SUIUSDT", 0, 1.0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	snap := s.Series("SUIUSDT")
	snap[0].Price = 999
	if p, _ := s.LastPrice("SUIUSDT"); p != 1.0 {
		t.Fatalf("snapshot mutation leaked into store: %v", p)
	}
}

func TestRatioSeriesAlignment(t *testing.T) {
	s := New(24*time.Hour, time.Hour)
	// Alt sample before any BTC data must be skipped.
	if err := s.Record(tick("SUIUSDT", 0, 3.0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(tick("BTCUSDT", 5*time.Minute, 100000)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(tick("SUIUSDT", 6*time.Minute, 3.2)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(tick("BTCUSDT", 10*time.Minute, 101000)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(tick("SUIUSDT", 12*time.Minute, 3.3)); err != nil {
		t.Fatalf("record: %v", err)
	}

	ratio := s.RatioSeries("SUIUSDT", "BTCUSDT")
	if len(ratio) != 2 {
		t.Fatalf("expected 2 aligned samples, got %d", len(ratio))
	}
	if ratio[0].Price != 3.2/100000 {
		t.Fatalf("first ratio wrong: %v", ratio[0].Price)
	}
	if ratio[1].Price != 3.3/101000 {
		t.Fatalf("second ratio must use BTC price at or before its timestamp: %v", ratio[1].Price)
	}
}
