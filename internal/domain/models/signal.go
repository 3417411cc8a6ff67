package models

import "time"

// Strength classifies how hard the altcoin lagged BTC.
type Strength string

const (
	StrengthNormal Strength = "NORMAL"
	StrengthStrong Strength = "STRONG"
)

// Direction of the suggested trade. The strategy only produces mean-reversion
// longs (alt expected to revert upward against BTC).
type Direction string

const DirectionLong Direction = "LONG"

// MetricsSnapshot captures the derived values that produced a signal.
// Recomputed fresh on every evaluation; never cached.
type MetricsSnapshot struct {
	BTCChange1h float64  `json:"btc_change_1h"`
	AltChange1h float64  `json:"alt_change_1h"`
	Spread      float64  `json:"spread"`
	RatioRSI    *float64 `json:"ratio_rsi,omitempty"`
	Ratio24hLow *float64 `json:"ratio_24h_low,omitempty"`
	FundingRate *float64 `json:"funding_rate,omitempty"`
}

// SignalEvent is the immutable outcome of a fully passing evaluation tick
// that cleared the cooldown gate. Handed to sinks fire-and-forget.
type SignalEvent struct {
	Symbol       string          `json:"symbol"`
	Timestamp    time.Time       `json:"timestamp"`
	Direction    Direction       `json:"direction"`
	Strength     Strength        `json:"strength"`
	CurrentPrice float64         `json:"current_price"`
	EntryLow     float64         `json:"entry_low"`
	EntryHigh    float64         `json:"entry_high"`
	StopLoss     float64         `json:"stop_loss"`
	Target1      float64         `json:"target_1"`
	Target2      float64         `json:"target_2"`
	Metrics      MetricsSnapshot `json:"metrics"`
	BTCStatus    string          `json:"btc_status"`
	Warnings     []string        `json:"warnings,omitempty"`
}
