package models

import "time"

// Series is an immutable snapshot of a rolling price series, ordered by
// strictly non-decreasing timestamps. Snapshots are taken by the store;
// indicator functions never mutate them.
type Series []PriceTick

// Last returns the most recent tick, or false when the series is empty.
func (s Series) Last() (PriceTick, bool) {
	if len(s) == 0 {
		return PriceTick{}, false
	}
	return s[len(s)-1], true
}

// Span is the duration covered between the first and last sample.
func (s Series) Span() time.Duration {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Timestamp.Sub(s[0].Timestamp)
}

// Prices returns the price values in order.
func (s Series) Prices() []float64 {
	out := make([]float64, len(s))
	for i, t := range s {
		out[i] = t.Price
	}
	return out
}
