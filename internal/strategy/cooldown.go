package strategy

import (
	"sync"
	"time"
)

// CooldownGate suppresses repeated alerts per symbol. It is the single point
// of mutation for alert suppression and must be consulted only after all
// conditions have passed, so a failed evaluation never consumes the cooldown.
type CooldownGate struct {
	window time.Duration

	mu        sync.Mutex
	lastAlert map[string]time.Time
}

func NewCooldownGate(window time.Duration) *CooldownGate {
	return &CooldownGate{window: window, lastAlert: make(map[string]time.Time)}
}

// TryConsume records now as the symbol's last alert time and returns true
// iff no prior alert happened within the cooldown window. On false the state
// is left untouched.
func (g *CooldownGate) TryConsume(symbol string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if last, ok := g.lastAlert[symbol]; ok && now.Sub(last) < g.window {
		return false
	}
	g.lastAlert[symbol] = now
	return true
}

// Remaining returns how long the symbol stays suppressed, zero when clear.
func (g *CooldownGate) Remaining(symbol string, now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	last, ok := g.lastAlert[symbol]
	if !ok {
		return 0
	}
	rem := g.window - now.Sub(last)
	if rem < 0 {
		return 0
	}
	return rem
}

// Active lists symbols currently in cooldown with their remaining durations.
func (g *CooldownGate) Active(now time.Time) map[string]time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]time.Duration)
	for sym, last := range g.lastAlert {
		if rem := g.window - now.Sub(last); rem > 0 {
			out[sym] = rem
		}
	}
	return out
}
