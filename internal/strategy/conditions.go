// Package strategy holds the per-condition evaluators and the cooldown gate.
// Every evaluator is a pure function over series snapshots and parameters,
// returning a tri-state outcome plus its diagnostic payload. Absence of data
// is an expected operating state, never an error.
package strategy

import (
	"time"

	"LagScalper/internal/domain/models"
	"LagScalper/internal/indicator"
)

// Outcome is the tri-state verdict of a single condition.
type Outcome int8

const (
	OutcomeInsufficient Outcome = iota
	OutcomeFail
	OutcomePass
)

func (o Outcome) String() string {
	switch o {
	case OutcomePass:
		return "pass"
	case OutcomeFail:
		return "fail"
	default:
		return "insufficient_data"
	}
}

// Params are the strategy thresholds, loaded once at startup.
type Params struct {
	Lookback                time.Duration // horizon for percent changes
	BTCMinDrop1h            float64       // negative, e.g. -0.5
	StabilizationWindow     time.Duration
	StabilizationMinSamples int
	UnderperfThreshold      float64 // negative, e.g. -1.0
	UnderperfStrong         float64 // negative, e.g. -2.0
	RatioRSIPeriod          int
	RatioRSIOversold        float64
	RatioLowWindow          time.Duration
	RatioLowTolerancePct    float64
	FundingRateMin          float64 // negative floor, e.g. -0.08
	FundingFreshness        time.Duration
	FundingSqueezeLow       float64
	FundingSqueezeHigh      float64
	FundingCrowded          float64
}

// DipResult reports whether BTC dropped enough over the lookback horizon.
type DipResult struct {
	Outcome   Outcome
	Change1h  float64
	Threshold float64
}

// EvaluateBTCDip passes when BTC's lookback change is at or below the
// configured (negative) drop threshold.
func EvaluateBTCDip(btc models.Series, p Params) DipResult {
	change, err := indicator.PercentChange(btc, p.Lookback)
	if err != nil {
		return DipResult{Outcome: OutcomeInsufficient, Threshold: p.BTCMinDrop1h}
	}
	out := OutcomeFail
	if change <= p.BTCMinDrop1h {
		out = OutcomePass
	}
	return DipResult{Outcome: out, Change1h: change, Threshold: p.BTCMinDrop1h}
}

// StabilizationResult reports whether BTC stopped making new lows inside the
// trailing sub-window.
type StabilizationResult struct {
	Outcome   Outcome
	LastPrice float64
	PriorLow  float64
	Samples   int
}

// EvaluateStabilization passes when the latest BTC price is strictly above
// the minimum of the earlier samples within the stabilization window, i.e.
// the dip happened but has stopped deepening.
func EvaluateStabilization(btc models.Series, p Params) StabilizationResult {
	last, ok := btc.Last()
	if !ok {
		return StabilizationResult{Outcome: OutcomeInsufficient}
	}
	cutoff := last.Timestamp.Add(-p.StabilizationWindow)
	window := make([]models.PriceTick, 0, 16)
	for i := len(btc) - 1; i >= 0; i-- {
		if btc[i].Timestamp.Before(cutoff) {
			break
		}
		window = append(window, btc[i])
	}
	// The comparison needs the latest sample plus at least one prior one,
	// whatever the configured minimum says.
	minSamples := p.StabilizationMinSamples
	if minSamples < 2 {
		minSamples = 2
	}
	if len(window) < minSamples {
		return StabilizationResult{Outcome: OutcomeInsufficient, Samples: len(window)}
	}
	// window[0] is the latest sample; the rest are the prior ones.
	priorLow := window[1].Price
	for _, t := range window[2:] {
		if t.Price < priorLow {
			priorLow = t.Price
		}
	}
	out := OutcomeFail
	if last.Price > priorLow {
		out = OutcomePass
	}
	return StabilizationResult{Outcome: out, LastPrice: last.Price, PriorLow: priorLow, Samples: len(window)}
}

// UnderperformanceResult reports the alt-vs-BTC spread over the lookback.
type UnderperformanceResult struct {
	Outcome     Outcome
	AltChange1h float64
	BTCChange1h float64
	Spread      float64
	Strong      bool
}

// EvaluateUnderperformance passes when spread = alt change - btc change is at
// or below the threshold; spreads at or below the strong threshold are
// classified STRONG.
func EvaluateUnderperformance(alt, btc models.Series, p Params) UnderperformanceResult {
	altChange, err := indicator.PercentChange(alt, p.Lookback)
	if err != nil {
		return UnderperformanceResult{Outcome: OutcomeInsufficient}
	}
	btcChange, err := indicator.PercentChange(btc, p.Lookback)
	if err != nil {
		return UnderperformanceResult{Outcome: OutcomeInsufficient}
	}
	spread := altChange - btcChange
	res := UnderperformanceResult{
		Outcome:     OutcomeFail,
		AltChange1h: altChange,
		BTCChange1h: btcChange,
		Spread:      spread,
	}
	if spread <= p.UnderperfThreshold {
		res.Outcome = OutcomePass
		res.Strong = spread <= p.UnderperfStrong
	}
	return res
}

// RatioResult reports oversold state of the alt/btc ratio series.
type RatioResult struct {
	Outcome      Outcome
	CurrentRatio float64
	RSI          *float64
	Low24h       *float64
	Oversold     bool
	NearLow      bool
}

// EvaluateRatioOversold passes when the ratio RSI is below the oversold
// threshold OR the current ratio sits within tolerance of its trailing low.
// If the RSI cannot be computed yet and the near-low leg does not pass, the
// check is inconclusive rather than failed.
func EvaluateRatioOversold(ratio models.Series, p Params) RatioResult {
	last, ok := ratio.Last()
	if !ok {
		return RatioResult{Outcome: OutcomeInsufficient}
	}
	res := RatioResult{CurrentRatio: last.Price}

	rsi, rsiErr := indicator.RSI(ratio, p.RatioRSIPeriod)
	if rsiErr == nil {
		res.RSI = &rsi
		res.Oversold = rsi < p.RatioRSIOversold
	}
	low, lowErr := indicator.RollingMin(ratio, p.RatioLowWindow)
	if lowErr == nil && low.Value > 0 {
		res.Low24h = &low.Value
		distance := (last.Price - low.Value) / low.Value * 100
		res.NearLow = distance <= p.RatioLowTolerancePct
	}

	switch {
	case res.Oversold || res.NearLow:
		res.Outcome = OutcomePass
	case rsiErr != nil:
		res.Outcome = OutcomeInsufficient
	default:
		res.Outcome = OutcomeFail
	}
	return res
}

// FundingResult reports the funding-rate gate plus annotation context.
type FundingResult struct {
	Outcome          Outcome
	Rate             *float64
	Stale            bool
	SqueezePotential bool
	CrowdedLongs     bool
}

// EvaluateFundingGate passes through as neutral when the snapshot is absent
// or stale. An excessively negative rate (extreme short-crowding) fails the
// gate to avoid squeezing into an already-crowded short.
func EvaluateFundingGate(snap models.FundingSnapshot, ok bool, now time.Time, p Params) FundingResult {
	if !ok {
		return FundingResult{Outcome: OutcomePass}
	}
	if snap.Stale(now, p.FundingFreshness) {
		return FundingResult{Outcome: OutcomePass, Stale: true}
	}
	rate := snap.Rate
	res := FundingResult{
		Rate:             &rate,
		SqueezePotential: rate >= p.FundingSqueezeLow && rate <= p.FundingSqueezeHigh,
		CrowdedLongs:     rate > p.FundingCrowded,
	}
	if rate < p.FundingRateMin {
		res.Outcome = OutcomeFail
	} else {
		res.Outcome = OutcomePass
	}
	return res
}
