package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"LagScalper/internal/domain/models"
	drepo "LagScalper/internal/domain/repository"
	"LagScalper/internal/store"
	"LagScalper/internal/strategy"
	"LagScalper/pkg/logger"
)

// Levels derives the suggested trade levels from the current price.
// All values are percentages.
type Levels struct {
	EntryDiscountPct float64 // entry zone depth below current price
	StopBufferPct    float64 // stop distance below the entry zone low
	Target1Pct       float64
	Target2Pct       float64
}

// Options configures the orchestrator loop.
type Options struct {
	Symbols         []string // alt symbols under evaluation
	BTCSymbol       string
	Interval        time.Duration
	Params          strategy.Params
	Levels          Levels
	LiqProximityPct float64 // annotate liquidation clusters within this distance
	Now             func() time.Time
}

// EvaluationStatus is the last evaluation outcome per symbol, exposed on the
// status endpoint.
type EvaluationStatus struct {
	At         time.Time         `json:"at"`
	State      string            `json:"state"` // WARMING or READY
	Outcome    string            `json:"outcome"`
	Conditions map[string]string `json:"conditions,omitempty"`
	LastSignal time.Time         `json:"last_signal,omitempty"`
}

// SignalOrchestrator drives the periodic evaluation cadence: it snapshots the
// rolling series, runs every condition, and only when all five pass does it
// consult the cooldown gate and emit a signal event. A failed or inconclusive
// evaluation never touches the gate.
type SignalOrchestrator struct {
	store   *store.RollingStore
	funding drepo.FundingSource
	liq     drepo.LiquidationSource
	sink    drepo.SignalSink
	gate    *strategy.CooldownGate
	metrics drepo.Metrics
	log     *logger.Logger
	opts    Options
	now     func() time.Time

	mu   sync.Mutex
	last map[string]EvaluationStatus
}

// NewSignalOrchestrator creates a new SignalOrchestrator instance.
func NewSignalOrchestrator(
	st *store.RollingStore,
	funding drepo.FundingSource,
	liq drepo.LiquidationSource,
	sink drepo.SignalSink,
	gate *strategy.CooldownGate,
	metrics drepo.Metrics,
	log *logger.Logger,
	opts Options,
) *SignalOrchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &SignalOrchestrator{
		store:   st,
		funding: funding,
		liq:     liq,
		sink:    sink,
		gate:    gate,
		metrics: metrics,
		log:     log,
		opts:    opts,
		now:     now,
		last:    make(map[string]EvaluationStatus),
	}
}

// Run evaluates all symbols on the configured cadence until ctx is done.
func (o *SignalOrchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.EvaluateAll(ctx)
		}
	}
}

// EvaluateAll runs one evaluation pass over every configured symbol.
func (o *SignalOrchestrator) EvaluateAll(ctx context.Context) {
	for _, sym := range o.opts.Symbols {
		o.Evaluate(ctx, sym)
	}
}

// Status returns the latest evaluation status per symbol.
func (o *SignalOrchestrator) Status() map[string]EvaluationStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]EvaluationStatus, len(o.last))
	for k, v := range o.last {
		out[k] = v
	}
	return out
}

// Evaluate runs a single evaluation tick for one symbol.
func (o *SignalOrchestrator) Evaluate(ctx context.Context, symbol string) {
	started := o.now()
	defer func() {
		o.metrics.RecordLatency("evaluate", time.Since(started).Seconds())
	}()

	if !o.store.IsWarm(o.opts.BTCSymbol) || !o.store.IsWarm(symbol) {
		o.setStatus(symbol, started, "WARMING", "warming", nil)
		o.metrics.RecordEvaluation(symbol, "warming")
		return
	}

	btc := o.store.Series(o.opts.BTCSymbol)
	alt := o.store.Series(symbol)
	ratio := o.store.RatioSeries(symbol, o.opts.BTCSymbol)
	p := o.opts.Params

	dip := strategy.EvaluateBTCDip(btc, p)
	stab := strategy.EvaluateStabilization(btc, p)
	under := strategy.EvaluateUnderperformance(alt, btc, p)
	oversold := strategy.EvaluateRatioOversold(ratio, p)
	snap, hasFunding := o.funding.Latest(symbol)
	fund := strategy.EvaluateFundingGate(snap, hasFunding, started, p)

	conditions := map[string]strategy.Outcome{
		"btc_dip":          dip.Outcome,
		"stabilization":    stab.Outcome,
		"underperformance": under.Outcome,
		"ratio_oversold":   oversold.Outcome,
		"funding_gate":     fund.Outcome,
	}
	names := map[string]string{}
	overall := strategy.OutcomePass
	for name, out := range conditions {
		o.metrics.RecordCondition(name, out.String())
		names[name] = out.String()
		switch out {
		case strategy.OutcomeInsufficient:
			overall = strategy.OutcomeInsufficient
		case strategy.OutcomeFail:
			if overall != strategy.OutcomeInsufficient {
				overall = strategy.OutcomeFail
			}
		}
	}

	o.setStatus(symbol, started, "READY", overall.String(), names)
	o.metrics.RecordEvaluation(symbol, overall.String())
	if overall != strategy.OutcomePass {
		return
	}

	// All conditions passed; only now may the cooldown be consumed.
	if !o.gate.TryConsume(symbol, started) {
		o.log.Debug("signal suppressed by cooldown",
			logger.String("symbol", symbol),
			logger.Duration("remaining", o.gate.Remaining(symbol, started)))
		o.metrics.RecordEvaluation(symbol, "suppressed")
		return
	}

	price, ok := o.store.LastPrice(symbol)
	if !ok || price <= 0 {
		o.metrics.RecordError("evaluate")
		return
	}

	ev := o.buildEvent(symbol, price, started, dip, stab, under, oversold, fund)
	o.mu.Lock()
	st := o.last[symbol]
	st.LastSignal = started
	o.last[symbol] = st
	o.mu.Unlock()

	o.metrics.RecordSignal(symbol, string(ev.Strength))
	o.log.Info("signal emitted",
		logger.String("symbol", symbol),
		logger.String("strength", string(ev.Strength)),
		logger.Float64("price", price),
		logger.Float64("spread", under.Spread))

	// Hand-off only; sinks fan out asynchronously and must not block the loop.
	if err := o.sink.OnSignal(ctx, ev); err != nil {
		o.metrics.RecordError("dispatch")
		o.log.Error("signal dispatch failed", logger.String("symbol", symbol), logger.Error(err))
	}
}

func (o *SignalOrchestrator) buildEvent(
	symbol string,
	price float64,
	at time.Time,
	dip strategy.DipResult,
	stab strategy.StabilizationResult,
	under strategy.UnderperformanceResult,
	oversold strategy.RatioResult,
	fund strategy.FundingResult,
) *models.SignalEvent {
	lv := o.opts.Levels
	entryLow := price * (1 - lv.EntryDiscountPct/100)
	stop := entryLow * (1 - lv.StopBufferPct/100)

	strength := models.StrengthNormal
	if under.Strong {
		strength = models.StrengthStrong
	}

	ev := &models.SignalEvent{
		Symbol:       symbol,
		Timestamp:    at,
		Direction:    models.DirectionLong,
		Strength:     strength,
		CurrentPrice: price,
		EntryLow:     entryLow,
		EntryHigh:    price,
		StopLoss:     stop,
		Target1:      price * (1 + lv.Target1Pct/100),
		Target2:      price * (1 + lv.Target2Pct/100),
		Metrics: models.MetricsSnapshot{
			BTCChange1h: dip.Change1h,
			AltChange1h: under.AltChange1h,
			Spread:      under.Spread,
			RatioRSI:    oversold.RSI,
			Ratio24hLow: oversold.Low24h,
			FundingRate: fund.Rate,
		},
		BTCStatus: fmt.Sprintf("BTC %.2f%% over lookback, holding above %.2f", dip.Change1h, stab.PriorLow),
	}

	if fund.SqueezePotential {
		ev.Warnings = append(ev.Warnings, "funding negative: short-squeeze potential")
	}
	if fund.CrowdedLongs {
		ev.Warnings = append(ev.Warnings, "funding elevated: longs crowded")
	}
	if fund.Stale {
		ev.Warnings = append(ev.Warnings, "funding data stale, gate passed as neutral")
	}
	if o.liq != nil {
		if liq := o.liq.Latest(symbol); liq != nil {
			if c := liq.LargestBelow(o.opts.LiqProximityPct); c != nil && c.PriceLevel > ev.StopLoss {
				ev.Warnings = append(ev.Warnings,
					fmt.Sprintf("liquidation cluster $%.0f at %.4f sits above the stop", c.SizeUSD, c.PriceLevel))
			}
			if c := liq.LargestAbove(o.opts.LiqProximityPct); c != nil && c.PriceLevel < ev.Target1 {
				ev.Warnings = append(ev.Warnings,
					fmt.Sprintf("liquidation cluster $%.0f at %.4f sits below target 1", c.SizeUSD, c.PriceLevel))
			}
		}
	}
	return ev
}

func (o *SignalOrchestrator) setStatus(symbol string, at time.Time, state, outcome string, conditions map[string]string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.last[symbol]
	st.At = at
	st.State = state
	st.Outcome = outcome
	st.Conditions = conditions
	o.last[symbol] = st
}
