package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"LagScalper/internal/domain/models"
	"LagScalper/internal/store"
)

// flakyStream fails its first read session and serves ticks on the second,
// mimicking a dropped websocket that comes back after a reconnect.
type flakyStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
}

func (f *flakyStream) Connect(context.Context) error   { return nil }
func (f *flakyStream) Subscribe(context.Context) error { return nil }
func (f *flakyStream) Close() error                    { return nil }
func (f *flakyStream) IsConnected() bool               { return true }

func (f *flakyStream) Reconnect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	return nil
}

func (f *flakyStream) Read(context.Context) (<-chan *models.PriceTick, <-chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	ticks := make(chan *models.PriceTick, 4)
	errs := make(chan error, 1)
	if f.reads == 1 {
		errs <- fmt.Errorf("connection reset")
		close(ticks)
		close(errs)
		return ticks, errs
	}
	ticks <- &models.PriceTick{Symbol: "SUIUSDT", Timestamp: base, Price: 3.14}
	return ticks, errs
}

func TestCollectorResumesAfterReconnect(t *testing.T) {
	st := store.New(24*time.Hour, time.Hour)
	stream := &flakyStream{}
	c := NewTickCollector(stream, st, nopMetrics{}, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p, ok := st.LastPrice("SUIUSDT"); ok {
			if p != 3.14 {
				t.Fatalf("unexpected price after reconnect: %v", p)
			}
			stream.mu.Lock()
			defer stream.mu.Unlock()
			if stream.reconnects == 0 || stream.reads < 2 {
				t.Fatalf("tick arrived without a fresh read session: reconnects=%d reads=%d",
					stream.reconnects, stream.reads)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("tick after reconnect never reached the store")
}
