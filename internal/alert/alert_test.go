package alert

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"LagScalper/internal/domain/models"
	"LagScalper/pkg/logger"
)

func sampleEvent() *models.SignalEvent {
	rsi := 22.4
	rate := -0.05
	low := 0.0000281
	return &models.SignalEvent{
		Symbol:       "SUIUSDT",
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Direction:    models.DirectionLong,
		Strength:     models.StrengthStrong,
		CurrentPrice: 2.91,
		EntryLow:     2.90127,
		EntryHigh:    2.91,
		StopLoss:     2.8867,
		Target1:      2.9391,
		Target2:      2.95365,
		Metrics: models.MetricsSnapshot{
			BTCChange1h: -0.69,
			AltChange1h: -3.0,
			Spread:      -2.31,
			RatioRSI:    &rsi,
			Ratio24hLow: &low,
			FundingRate: &rate,
		},
		BTCStatus: "BTC -0.69% over lookback, holding above 99300.00",
		Warnings:  []string{"funding negative: short-squeeze potential"},
	}
}

func TestFormatTelegram(t *testing.T) {
	msg := FormatTelegram(sampleEvent())
	for _, want := range []string{
		"STRONG LAG SIGNAL",
		"SUIUSDT",
		"LONG",
		"2.9013 - 2.9100",
		"Spread: `-2.31%`",
		"Ratio RSI: `22.4`",
		"Funding: `-0.0500%`",
		"short-squeeze potential",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("telegram message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatTelegramOmitsMissingMetrics(t *testing.T) {
	ev := sampleEvent()
	ev.Strength = models.StrengthNormal
	ev.Metrics.RatioRSI = nil
	ev.Metrics.FundingRate = nil
	ev.Warnings = nil
	msg := FormatTelegram(ev)
	if strings.Contains(msg, "STRONG") {
		t.Fatalf("normal strength must not render as strong:\n%s", msg)
	}
	if strings.Contains(msg, "Ratio RSI") || strings.Contains(msg, "Funding:") {
		t.Fatalf("missing metrics must be omitted:\n%s", msg)
	}
}

func TestFormatDiscord(t *testing.T) {
	msg := FormatDiscord(sampleEvent())
	for _, want := range []string{"STRONG LAG SIGNAL", "SUIUSDT", "Spread -2.31%", "RSI 22.4"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("discord message missing %q:\n%s", want, msg)
		}
	}
}

type recordingNotifier struct {
	name string
	err  error

	mu    sync.Mutex
	sent  int
	texts []string
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Send(_ context.Context, _ *models.SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent++
	return r.err
}

func (r *recordingNotifier) SendText(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordingNotifier) sentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

type nopMetrics struct{}

func (nopMetrics) RecordTick(string)                 {}
func (nopMetrics) RecordTickRejected(string, string) {}
func (nopMetrics) RecordEvaluation(string, string)   {}
func (nopMetrics) RecordCondition(string, string)    {}
func (nopMetrics) RecordSignal(string, string)       {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordLatency(string, float64)     {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestDispatcherFansOut(t *testing.T) {
	a := &recordingNotifier{name: "a"}
	b := &recordingNotifier{name: "b", err: errors.New("down")}
	d := NewDispatcher([]Notifier{a, b}, time.Second, nopMetrics{}, testLogger(t))

	if err := d.OnSignal(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("one failing destination must not surface: %v", err)
	}
	d.Drain(2 * time.Second)

	if a.sentCount() != 1 || b.sentCount() != 1 {
		t.Fatalf("expected both destinations hit, got %d/%d", a.sentCount(), b.sentCount())
	}
}

func TestDispatcherNotice(t *testing.T) {
	a := &recordingNotifier{name: "a"}
	d := NewDispatcher([]Notifier{a}, time.Second, nopMetrics{}, testLogger(t))
	d.Notice(context.Background(), "started")
	if len(a.texts) != 1 || a.texts[0] != "started" {
		t.Fatalf("notice not delivered: %v", a.texts)
	}
}
