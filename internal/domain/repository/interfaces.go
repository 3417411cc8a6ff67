package repository

import (
	"context"

	"LagScalper/internal/domain/models"
)

// MarketStream delivers price ticks from an external transport.
// Reconnection and backoff are the stream's concern; the core only
// observes a pause in tick arrivals.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// FundingSource returns the latest funding snapshot for a symbol, or
// false when none has been fetched yet.
type FundingSource interface {
	Latest(symbol string) (models.FundingSnapshot, bool)
}

// LiquidationSource returns the latest liquidation snapshot for a symbol,
// or nil when unavailable. Used only to annotate alerts, never to gate.
type LiquidationSource interface {
	Latest(symbol string) *models.LiquidationSnapshot
}

// SignalSink receives emitted signal events. Implementations must not block
// the orchestrator; hand-off only.
type SignalSink interface {
	OnSignal(ctx context.Context, ev *models.SignalEvent) error
}

type Metrics interface {
	RecordTick(symbol string)
	RecordTickRejected(symbol, reason string)
	RecordEvaluation(symbol, outcome string)
	RecordCondition(name, outcome string)
	RecordSignal(symbol, strength string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
