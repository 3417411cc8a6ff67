// Package indicator provides pure computations over series snapshots.
// No hidden state: every function is deterministic in its inputs.
package indicator

import (
	"errors"
	"time"

	"LagScalper/internal/domain/models"
)

// ErrInsufficientData means the series does not reach far enough back for
// the requested computation. Expected during warm-up; not an operational error.
var ErrInsufficientData = errors.New("insufficient data")

// PercentChange computes (price_now - price_then) / price_then * 100 where
// price_then is the nearest sample at or before lookback behind the series'
// latest timestamp.
func PercentChange(s models.Series, lookback time.Duration) (float64, error) {
	last, ok := s.Last()
	if !ok {
		return 0, ErrInsufficientData
	}
	cutoff := last.Timestamp.Add(-lookback)
	then, ok := at(s, cutoff)
	if !ok {
		return 0, ErrInsufficientData
	}
	if then.Price == 0 {
		return 0, ErrInsufficientData
	}
	return (last.Price - then.Price) / then.Price * 100, nil
}

// at returns the latest sample with Timestamp <= cutoff.
func at(s models.Series, cutoff time.Time) (models.PriceTick, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if !s[i].Timestamp.After(cutoff) {
			return s[i], true
		}
	}
	return models.PriceTick{}, false
}

// SMA is the simple moving average of the last period prices.
func SMA(s models.Series, period int) (float64, error) {
	if period <= 0 || len(s) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for _, t := range s[len(s)-period:] {
		sum += t.Price
	}
	return sum / float64(period), nil
}

// Extremum holds a rolling extreme value and when it was observed.
type Extremum struct {
	Value     float64
	Timestamp time.Time
}

// RollingMin scans samples within the trailing window (relative to the
// series' latest timestamp) and returns the lowest. The boundary is
// inclusive: a sample exactly window behind the latest timestamp counts,
// matching PercentChange's at-or-before anchor.
func RollingMin(s models.Series, window time.Duration) (Extremum, error) {
	return extremum(s, window, func(a, b float64) bool { return a < b })
}

// RollingMax scans samples within the trailing window and returns the highest.
func RollingMax(s models.Series, window time.Duration) (Extremum, error) {
	return extremum(s, window, func(a, b float64) bool { return a > b })
}

func extremum(s models.Series, window time.Duration, better func(a, b float64) bool) (Extremum, error) {
	last, ok := s.Last()
	if !ok {
		return Extremum{}, ErrInsufficientData
	}
	cutoff := last.Timestamp.Add(-window)
	found := false
	var ext Extremum
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].Timestamp.Before(cutoff) {
			break
		}
		if !found || better(s[i].Price, ext.Value) {
			ext = Extremum{Value: s[i].Price, Timestamp: s[i].Timestamp}
			found = true
		}
	}
	if !found {
		return Extremum{}, ErrInsufficientData
	}
	return ext, nil
}

// RSI computes Wilder's smoothed RSI over the series' value changes.
// The seed averages are the simple mean of the first period gains/losses and
// every later change is folded in as avg = (avg*(period-1) + x) / period.
// Convention for degenerate inputs: a series with gains and no losses is 100,
// a flat series (no gains, no losses) is 50.
func RSI(s models.Series, period int) (float64, error) {
	if period <= 0 || len(s) < period+1 {
		return 0, ErrInsufficientData
	}
	prices := s.Prices()
	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, nil
		}
		return 100, nil
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}
