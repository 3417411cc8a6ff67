// Package store owns the per-symbol rolling price history. Ingestion is
// single-writer per symbol; evaluation readers always get a snapshot copy.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"LagScalper/internal/domain/models"
)

// ErrOutOfOrderTick is returned when a tick's timestamp is older than the
// series' last recorded timestamp. The tick is rejected, never inserted.
var ErrOutOfOrderTick = errors.New("out of order tick")

type series struct {
	mu    sync.Mutex
	ticks []models.PriceTick
}

// RollingStore keeps bounded, time-ordered price series per symbol.
// Entries older than the retention window (relative to the newest tick in
// the same series) are evicted on insert.
type RollingStore struct {
	retention time.Duration
	warmup    time.Duration

	mu    sync.RWMutex
	bySym map[string]*series
}

// New creates a store. retention must be at least warmup; both are validated
// at config load, not here.
func New(retention, warmup time.Duration) *RollingStore {
	return &RollingStore{
		retention: retention,
		warmup:    warmup,
		bySym:     make(map[string]*series),
	}
}

func (r *RollingStore) get(symbol string) *series {
	r.mu.RLock()
	s := r.bySym[symbol]
	r.mu.RUnlock()
	if s != nil {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s = r.bySym[symbol]; s == nil {
		s = &series{}
		r.bySym[symbol] = s
	}
	return s
}

// Record appends a tick, evicting entries that fell out of the retention
// window. Ticks older than the series' last timestamp are rejected.
func (r *RollingStore) Record(t models.PriceTick) error {
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Price <= 0 {
		return fmt.Errorf("non-positive price %v", t.Price)
	}
	s := r.get(t.Symbol)
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.ticks); n > 0 && t.Timestamp.Before(s.ticks[n-1].Timestamp) {
		return fmt.Errorf("%w: %s at %s behind %s", ErrOutOfOrderTick,
			t.Symbol, t.Timestamp.Format(time.RFC3339), s.ticks[n-1].Timestamp.Format(time.RFC3339))
	}

	s.ticks = append(s.ticks, t)
	cutoff := t.Timestamp.Add(-r.retention)
	i := 0
	for i < len(s.ticks) && s.ticks[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		// Compact instead of re-slicing so the backing array does not pin
		// evicted entries forever.
		kept := make([]models.PriceTick, len(s.ticks)-i, cap(s.ticks))
		copy(kept, s.ticks[i:])
		s.ticks = kept
	}
	return nil
}

// Series returns a read-only snapshot of the symbol's series.
func (r *RollingStore) Series(symbol string) models.Series {
	s := r.get(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(models.Series, len(s.ticks))
	copy(out, s.ticks)
	return out
}

// LastPrice returns the most recent price for a symbol.
func (r *RollingStore) LastPrice(symbol string) (float64, bool) {
	s := r.get(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ticks) == 0 {
		return 0, false
	}
	return s.ticks[len(s.ticks)-1].Price, true
}

// IsWarm reports whether the symbol has enough contiguous history to support
// all derived metrics. Before warm-up every evaluation must short-circuit as
// insufficient data.
func (r *RollingStore) IsWarm(symbol string) bool {
	s := r.get(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ticks) < 2 {
		return false
	}
	span := s.ticks[len(s.ticks)-1].Timestamp.Sub(s.ticks[0].Timestamp)
	return span >= r.warmup
}

// RatioSeries synthesizes the alt/btc ratio series: each alt sample is
// divided by the nearest btc price at or before its timestamp. Alt samples
// older than the first btc sample are skipped.
func (r *RollingStore) RatioSeries(altSymbol, btcSymbol string) models.Series {
	alt := r.Series(altSymbol)
	btc := r.Series(btcSymbol)
	if len(alt) == 0 || len(btc) == 0 {
		return nil
	}
	ratio := make(models.Series, 0, len(alt))
	j := 0
	for _, a := range alt {
		if a.Timestamp.Before(btc[0].Timestamp) {
			continue
		}
		for j+1 < len(btc) && !btc[j+1].Timestamp.After(a.Timestamp) {
			j++
		}
		if btc[j].Price == 0 {
			continue
		}
		ratio = append(ratio, models.PriceTick{
			Symbol:    altSymbol + "/" + btcSymbol,
			Timestamp: a.Timestamp,
			Price:     a.Price / btc[j].Price,
		})
	}
	return ratio
}

// SymbolStatus summarizes one series for the status endpoint.
type SymbolStatus struct {
	Samples int       `json:"samples"`
	Warm    bool      `json:"warm"`
	Oldest  time.Time `json:"oldest,omitempty"`
	Newest  time.Time `json:"newest,omitempty"`
}

// Status reports per-symbol series depth and warmth.
func (r *RollingStore) Status() map[string]SymbolStatus {
	r.mu.RLock()
	symbols := make([]string, 0, len(r.bySym))
	for sym := range r.bySym {
		symbols = append(symbols, sym)
	}
	r.mu.RUnlock()

	out := make(map[string]SymbolStatus, len(symbols))
	for _, sym := range symbols {
		s := r.get(sym)
		s.mu.Lock()
		st := SymbolStatus{Samples: len(s.ticks)}
		if len(s.ticks) > 0 {
			st.Oldest = s.ticks[0].Timestamp
			st.Newest = s.ticks[len(s.ticks)-1].Timestamp
			st.Warm = len(s.ticks) >= 2 && st.Newest.Sub(st.Oldest) >= r.warmup
		}
		s.mu.Unlock()
		out[sym] = st
	}
	return out
}
