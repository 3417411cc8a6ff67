package alert

import (
	"context"
	"sync"
	"time"

	"LagScalper/internal/domain/models"
	drepo "LagScalper/internal/domain/repository"
	"LagScalper/pkg/logger"
)

// Notifier is a single alert destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, ev *models.SignalEvent) error
}

// TextSender is implemented by destinations that can also carry plain
// lifecycle notices (startup, shutdown).
type TextSender interface {
	SendText(ctx context.Context, text string) error
}

// Dispatcher fans a signal event out to every destination concurrently.
// OnSignal returns as soon as the sends are handed off; a slow or failing
// destination never stalls the evaluation loop.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	metrics   drepo.Metrics
	log       *logger.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a new Dispatcher instance.
func NewDispatcher(notifiers []Notifier, timeout time.Duration, metrics drepo.Metrics, log *logger.Logger) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, timeout: timeout, metrics: metrics, log: log}
}

// OnSignal dispatches the event to all destinations and returns immediately.
func (d *Dispatcher) OnSignal(_ context.Context, ev *models.SignalEvent) error {
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			// Detached from the caller's context: an evaluation tick ending
			// must not cancel an in-flight delivery.
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()
			if err := n.Send(ctx, ev); err != nil {
				d.metrics.RecordError("alert_" + n.Name())
				d.log.Error("alert delivery failed",
					logger.String("destination", n.Name()),
					logger.String("symbol", ev.Symbol),
					logger.Error(err))
				return
			}
			d.log.Debug("alert delivered",
				logger.String("destination", n.Name()),
				logger.String("symbol", ev.Symbol))
		}(n)
	}
	return nil
}

// Notice broadcasts a plain text message to every destination that supports
// it. Used for startup and shutdown notifications; failures are logged only.
func (d *Dispatcher) Notice(ctx context.Context, text string) {
	for _, n := range d.notifiers {
		ts, ok := n.(TextSender)
		if !ok {
			continue
		}
		if err := ts.SendText(ctx, text); err != nil {
			d.log.Warn("notice delivery failed",
				logger.String("destination", n.Name()),
				logger.Error(err))
		}
	}
}

// Drain waits for in-flight deliveries, bounded by the given timeout.
func (d *Dispatcher) Drain(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
