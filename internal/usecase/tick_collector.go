package usecase

import (
	"context"
	"errors"

	"LagScalper/internal/domain/models"
	drepo "LagScalper/internal/domain/repository"
	"LagScalper/internal/store"
	"LagScalper/pkg/logger"
)

// TickCollector consumes the market stream and records ticks into the
// rolling store. Out-of-order ticks are dropped here; they never reach
// the series.
type TickCollector struct {
	stream  drepo.MarketStream
	store   *store.RollingStore
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewTickCollector creates a new TickCollector instance.
func NewTickCollector(stream drepo.MarketStream, st *store.RollingStore, metrics drepo.Metrics, log *logger.Logger) *TickCollector {
	return &TickCollector{stream: stream, store: st, metrics: metrics, log: log}
}

// IsConnected returns true if the market stream is connected.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, tickCh <-chan *models.PriceTick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if ok && err != nil {
				c.metrics.RecordError("stream")
				c.log.Warn("stream error, reconnecting", logger.Error(err))
			}
			// The stream closes both channels on a read failure; fresh ones
			// must be obtained or ticks never resume.
			if tickCh, errCh = c.reopen(ctx); tickCh == nil {
				return
			}
		case t, ok := <-tickCh:
			if !ok {
				if tickCh, errCh = c.reopen(ctx); tickCh == nil {
					return
				}
				continue
			}
			if t == nil {
				continue
			}
			if err := c.store.Record(*t); err != nil {
				if errors.Is(err, store.ErrOutOfOrderTick) {
					c.metrics.RecordTickRejected(t.Symbol, "out_of_order")
					c.log.Warn("tick rejected", logger.String("symbol", t.Symbol), logger.Error(err))
				} else {
					c.metrics.RecordTickRejected(t.Symbol, "invalid")
					c.metrics.RecordError("record")
				}
				continue
			}
			c.metrics.RecordTick(t.Symbol)
			c.metrics.RecordLastPrice(t.Symbol, t.Price)
		}
	}
}

// reopen re-establishes the stream and returns fresh read channels, retrying
// until it succeeds or ctx is done. Retry pacing comes from the stream's own
// reconnect delay.
func (c *TickCollector) reopen(ctx context.Context) (<-chan *models.PriceTick, <-chan error) {
	for {
		if ctx.Err() != nil {
			return nil, nil
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream")
			c.log.Warn("reconnect failed, retrying", logger.Error(err))
			continue
		}
		return c.stream.Read(ctx)
	}
}

// Shutdown closes the market stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	return c.stream.Close()
}
