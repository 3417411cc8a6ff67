package strategy

import (
	"math"
	"testing"
	"time"

	"LagScalper/internal/domain/models"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testParams() Params {
	return Params{
		Lookback:                time.Hour,
		BTCMinDrop1h:            -0.5,
		StabilizationWindow:     5 * time.Minute,
		StabilizationMinSamples: 5,
		UnderperfThreshold:      -1.0,
		UnderperfStrong:         -2.0,
		RatioRSIPeriod:          14,
		RatioRSIOversold:        35,
		RatioLowWindow:          24 * time.Hour,
		RatioLowTolerancePct:    1.0,
		FundingRateMin:          -0.08,
		FundingFreshness:        10 * time.Minute,
		FundingSqueezeLow:       -0.08,
		FundingSqueezeHigh:      -0.03,
		FundingCrowded:          0.05,
	}
}

// minuteSeries builds one sample per minute ending at t0+len-1 minutes.
func minuteSeries(sym string, prices []float64) models.Series {
	s := make(models.Series, len(prices))
	for i, p := range prices {
		s[i] = models.PriceTick{Symbol: sym, Timestamp: t0.Add(time.Duration(i) * time.Minute), Price: p}
	}
	return s
}

// declineTo builds a linear 61-sample hour ending at endPct below start.
func declineTo(sym string, start, endPct float64) models.Series {
	prices := make([]float64, 61)
	for i := range prices {
		prices[i] = start * (1 + endPct/100*float64(i)/60)
	}
	return minuteSeries(sym, prices)
}

func TestBTCDip(t *testing.T) {
	p := testParams()

	res := EvaluateBTCDip(declineTo("BTCUSDT", 100000, -0.5), p)
	if res.Outcome != OutcomePass {
		t.Fatalf("-0.5%% drop must pass, got %v (change %v)", res.Outcome, res.Change1h)
	}
	if math.Abs(res.Change1h-(-0.5)) > 1e-9 {
		t.Fatalf("unexpected change %v", res.Change1h)
	}

	res = EvaluateBTCDip(declineTo("BTCUSDT", 100000, -0.3), p)
	if res.Outcome != OutcomeFail {
		t.Fatalf("-0.3%% drop must fail, got %v", res.Outcome)
	}

	short := minuteSeries("BTCUSDT", []float64{100000, 99990})
	res = EvaluateBTCDip(short, p)
	if res.Outcome != OutcomeInsufficient {
		t.Fatalf("series shorter than lookback must be inconclusive, got %v", res.Outcome)
	}
}

func TestStabilization(t *testing.T) {
	p := testParams()

	// Dip then flat tail: last price above the prior window low.
	flatTail := minuteSeries("BTCUSDT", []float64{99600, 99580, 99560, 99550, 99555, 99560})
	res := EvaluateStabilization(flatTail, p)
	if res.Outcome != OutcomePass {
		t.Fatalf("flattening tail must pass, got %v", res.Outcome)
	}
	if res.PriorLow != 99550 {
		t.Fatalf("unexpected prior low %v", res.PriorLow)
	}

	// Still making new lows.
	deepening := minuteSeries("BTCUSDT", []float64{99600, 99580, 99560, 99550, 99540, 99530})
	res = EvaluateStabilization(deepening, p)
	if res.Outcome != OutcomeFail {
		t.Fatalf("deepening dip must fail, got %v", res.Outcome)
	}

	// Not enough samples in the window.
	sparse := minuteSeries("BTCUSDT", []float64{99600, 99580, 99560})
	res = EvaluateStabilization(sparse, p)
	if res.Outcome != OutcomeInsufficient {
		t.Fatalf("sparse window must be inconclusive, got %v", res.Outcome)
	}
}

func TestStabilizationSingleSampleNeverPanics(t *testing.T) {
	// A minimum below 2 cannot satisfy the latest-vs-prior comparison; a
	// one-sample window must read as inconclusive, not index out of range.
	p := testParams()
	p.StabilizationMinSamples = 1

	single := minuteSeries("BTCUSDT", []float64{99600})
	res := EvaluateStabilization(single, p)
	if res.Outcome != OutcomeInsufficient {
		t.Fatalf("single-sample window must be inconclusive, got %v", res.Outcome)
	}
}

func TestUnderperformance(t *testing.T) {
	p := testParams()
	btc := declineTo("BTCUSDT", 100000, -0.5)

	res := EvaluateUnderperformance(declineTo("SUIUSDT", 3.0, -2.5), btc, p)
	if res.Outcome != OutcomePass || !res.Strong {
		t.Fatalf("-2.0%% spread must pass STRONG, got %v strong=%v spread=%v", res.Outcome, res.Strong, res.Spread)
	}

	res = EvaluateUnderperformance(declineTo("SUIUSDT", 3.0, -2.0), btc, p)
	if res.Outcome != OutcomePass || res.Strong {
		t.Fatalf("-1.5%% spread must pass NORMAL, got %v strong=%v", res.Outcome, res.Strong)
	}

	res = EvaluateUnderperformance(declineTo("SUIUSDT", 3.0, -1.0), btc, p)
	if res.Outcome != OutcomeFail {
		t.Fatalf("-0.5%% spread must fail, got %v (spread %v)", res.Outcome, res.Spread)
	}

	res = EvaluateUnderperformance(minuteSeries("SUIUSDT", []float64{3.0}), btc, p)
	if res.Outcome != OutcomeInsufficient {
		t.Fatalf("missing alt history must be inconclusive, got %v", res.Outcome)
	}
}

func TestRatioOversoldByRSI(t *testing.T) {
	p := testParams()
	// Monotonic decline drives RSI to 0, far below the oversold threshold,
	// while the current value sits exactly on the trailing low.
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 0.00005 * (1 - 0.002*float64(i))
	}
	res := EvaluateRatioOversold(minuteSeries("SUI/BTC", prices), p)
	if res.Outcome != OutcomePass || !res.Oversold {
		t.Fatalf("declining ratio must be oversold, got %+v", res)
	}
}

func TestRatioNearLowWithoutRSI(t *testing.T) {
	p := testParams()
	// Too few points for RSI(14) but the ratio sits on its trailing low.
	res := EvaluateRatioOversold(minuteSeries("SUI/BTC", []float64{0.00005, 0.000049, 0.0000488}), p)
	if res.Outcome != OutcomePass || !res.NearLow {
		t.Fatalf("near-low leg must pass without RSI, got %+v", res)
	}
}

func TestRatioInconclusiveWithoutRSI(t *testing.T) {
	p := testParams()
	// RSI unavailable and well above the low: cannot conclude FAIL.
	res := EvaluateRatioOversold(minuteSeries("SUI/BTC", []float64{0.00005, 0.000049, 0.000052}), p)
	if res.Outcome != OutcomeInsufficient {
		t.Fatalf("expected inconclusive, got %+v", res)
	}
}

func TestRatioNotOversold(t *testing.T) {
	p := testParams()
	// Rising ratio: RSI high, current far above the low.
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 0.00005 * (1 + 0.002*float64(i))
	}
	res := EvaluateRatioOversold(minuteSeries("SUI/BTC", prices), p)
	if res.Outcome != OutcomeFail {
		t.Fatalf("rising ratio must fail, got %+v", res)
	}
}

func TestFundingGate(t *testing.T) {
	p := testParams()
	now := t0.Add(time.Hour)

	// Absent snapshot: neutral pass-through.
	res := EvaluateFundingGate(models.FundingSnapshot{}, false, now, p)
	if res.Outcome != OutcomePass || res.Rate != nil {
		t.Fatalf("absent funding must pass as neutral, got %+v", res)
	}

	// Stale snapshot: neutral pass-through.
	stale := models.FundingSnapshot{Symbol: "SUIUSDT", Rate: -0.5, FetchedAt: now.Add(-time.Hour)}
	res = EvaluateFundingGate(stale, true, now, p)
	if res.Outcome != OutcomePass || !res.Stale {
		t.Fatalf("stale funding must pass as neutral, got %+v", res)
	}

	// Excessively negative: fail.
	crowdedShort := models.FundingSnapshot{Symbol: "SUIUSDT", Rate: -0.1, FetchedAt: now}
	res = EvaluateFundingGate(crowdedShort, true, now, p)
	if res.Outcome != OutcomeFail {
		t.Fatalf("rate below floor must fail, got %+v", res)
	}

	// Mildly negative: pass with squeeze annotation.
	squeeze := models.FundingSnapshot{Symbol: "SUIUSDT", Rate: -0.05, FetchedAt: now}
	res = EvaluateFundingGate(squeeze, true, now, p)
	if res.Outcome != OutcomePass || !res.SqueezePotential {
		t.Fatalf("squeeze-band rate must pass with annotation, got %+v", res)
	}

	// Positive and crowded on the long side: pass with warning annotation.
	crowdedLong := models.FundingSnapshot{Symbol: "SUIUSDT", Rate: 0.08, FetchedAt: now}
	res = EvaluateFundingGate(crowdedLong, true, now, p)
	if res.Outcome != OutcomePass || !res.CrowdedLongs {
		t.Fatalf("crowded longs must pass with annotation, got %+v", res)
	}
}
