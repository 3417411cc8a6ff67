package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"LagScalper/internal/domain/models"
)

func seriesOf(start time.Time, step time.Duration, prices ...float64) models.Series {
	s := make(models.Series, len(prices))
	for i, p := range prices {
		s[i] = models.PriceTick{Symbol: "TEST", Timestamp: start.Add(time.Duration(i) * step), Price: p}
	}
	return s
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestPercentChange(t *testing.T) {
	s := seriesOf(t0, time.Minute, 100, 101, 102, 99)
	got, err := PercentChange(s, 3*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-(-1.0)) > 1e-12 {
		t.Fatalf("want -1.0, got %v", got)
	}
}

func TestPercentChangeNearestAtOrBefore(t *testing.T) {
	// No sample exactly at now-30m; must use the nearest one before it.
	s := models.Series{
		{Timestamp: t0, Price: 200},
		{Timestamp: t0.Add(45 * time.Minute), Price: 210},
		{Timestamp: t0.Add(60 * time.Minute), Price: 220},
	}
	got, err := PercentChange(s, 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (220.0 - 200.0) / 200.0 * 100
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestPercentChangeInsufficient(t *testing.T) {
	s := seriesOf(t0, time.Minute, 100, 101)
	if _, err := PercentChange(s, time.Hour); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := PercentChange(nil, time.Hour); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData on empty series, got %v", err)
	}
}

func TestPercentChangeReversalIdentity(t *testing.T) {
	// pc(p0->p1) == -pc(p1->p0) / (1 + pc(p1->p0)/100), exactly.
	forward := seriesOf(t0, time.Minute, 137.25, 131.4)
	backward := seriesOf(t0, time.Minute, 131.4, 137.25)
	f, err := PercentChange(forward, time.Minute)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	b, err := PercentChange(backward, time.Minute)
	if err != nil {
		t.Fatalf("backward: %v", err)
	}
	want := -b / (1 + b/100)
	if math.Abs(f-want) > 1e-9 {
		t.Fatalf("identity violated: forward=%v derived=%v", f, want)
	}
}

func TestRollingExtrema(t *testing.T) {
	s := seriesOf(t0, time.Minute, 5, 3, 9, 4, 6)
	// The window is boundary-inclusive: with the latest sample at t0+4m a
	// 3m window reaches back to the sample at exactly t0+1m.
	lo, err := RollingMin(s, 3*time.Minute)
	if err != nil {
		t.Fatalf("min: %v", err)
	}
	if lo.Value != 3 || !lo.Timestamp.Equal(t0.Add(time.Minute)) {
		t.Fatalf("unexpected min %+v", lo)
	}
	lo, err = RollingMin(s, 2*time.Minute)
	if err != nil {
		t.Fatalf("min: %v", err)
	}
	if lo.Value != 4 || !lo.Timestamp.Equal(t0.Add(3*time.Minute)) {
		t.Fatalf("unexpected min inside 2m window %+v", lo)
	}
	hi, err := RollingMax(s, 10*time.Minute)
	if err != nil {
		t.Fatalf("max: %v", err)
	}
	if hi.Value != 9 {
		t.Fatalf("unexpected max %+v", hi)
	}
}

func TestSMA(t *testing.T) {
	s := seriesOf(t0, time.Minute, 1, 2, 3, 4)
	got, err := SMA(s, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Fatalf("want 3, got %v", got)
	}
	if _, err := SMA(s, 5); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRSIMonotonicDecline(t *testing.T) {
	s := seriesOf(t0, time.Minute, 100, 99, 98, 97, 96, 95, 94, 93, 92, 91, 90, 89, 88, 87, 86)
	got, err := RSI(s, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("declining series: want 0, got %v", got)
	}
}

func TestRSIMonotonicRise(t *testing.T) {
	s := seriesOf(t0, time.Minute, 86, 87, 88, 89, 90, 91, 92, 93, 94, 95, 96, 97, 98, 99, 100)
	got, err := RSI(s, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100 {
		t.Fatalf("rising series: want 100, got %v", got)
	}
}

func TestRSIFlatSeries(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 42
	}
	s := seriesOf(t0, time.Minute, prices...)
	got, err := RSI(s, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 50 {
		t.Fatalf("flat series: want 50, got %v", got)
	}
}

func TestRSIWilderSmoothing(t *testing.T) {
	// period=3 over changes +1, -0.5, +1, +0.5:
	// seed avgGain=(1+0+1)/3, avgLoss=0.5/3
	// fold +0.5: avgGain=(2/3*2+0.5)/3=11/18, avgLoss=(1/6*2+0)/3=1/9
	// rs=5.5, rsi=100-100/6.5
	s := seriesOf(t0, time.Minute, 1, 2, 1.5, 2.5, 3)
	got, err := RSI(s, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 100 - 100/(1+5.5)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestRSIInsufficient(t *testing.T) {
	s := seriesOf(t0, time.Minute, 1, 2, 3)
	if _, err := RSI(s, 14); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}
