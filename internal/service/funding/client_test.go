package funding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "LagScalper/pkg/http"
	"LagScalper/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordTick(string)                 {}
func (nopMetrics) RecordTickRejected(string, string) {}
func (nopMetrics) RecordEvaluation(string, string)   {}
func (nopMetrics) RecordCondition(string, string)    {}
func (nopMetrics) RecordSignal(string, string)       {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordLastPrice(string, float64)   {}
func (nopMetrics) RecordLatency(string, float64)     {}

func TestPollConvertsFractionToPercent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "SUIUSDT" {
			t.Errorf("unexpected symbol %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"SUIUSDT","lastFundingRate":"-0.00050000"}`))
	}))
	defer srv.Close()

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	p := New(srv.URL, []string{"SUIUSDT"}, time.Minute, phttp.NewClient(), nopMetrics{}, log)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	if err := p.poll(context.Background(), "SUIUSDT"); err != nil {
		t.Fatalf("poll: %v", err)
	}
	snap, ok := p.Latest("SUIUSDT")
	if !ok {
		t.Fatalf("snapshot missing after poll")
	}
	if snap.Rate != -0.05 {
		t.Fatalf("rate %v, want -0.05 percent", snap.Rate)
	}
	if !snap.FetchedAt.Equal(fixed) {
		t.Fatalf("unexpected FetchedAt %v", snap.FetchedAt)
	}
}

func TestLatestAbsentBeforeFirstPoll(t *testing.T) {
	log, _ := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	p := New("http://unused", []string{"SUIUSDT"}, time.Minute, phttp.NewClient(), nopMetrics{}, log)
	if _, ok := p.Latest("SUIUSDT"); ok {
		t.Fatalf("no snapshot must exist before the first poll")
	}
}
