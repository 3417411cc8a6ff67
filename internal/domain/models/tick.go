package models

import "time"

// PriceTick is a single price observation for a symbol. Immutable once recorded.
type PriceTick struct {
	Symbol    string
	Timestamp time.Time
	Price     float64
	Volume    float64
}

// FundingSnapshot is a point-in-time funding rate observation from an
// external poller. Rate is a percentage (e.g. -0.05 for -0.05%).
type FundingSnapshot struct {
	Symbol    string
	Rate      float64
	FetchedAt time.Time
}

// Stale reports whether the snapshot is older than the freshness threshold.
func (f FundingSnapshot) Stale(now time.Time, freshness time.Duration) bool {
	return now.Sub(f.FetchedAt) > freshness
}

// LiquidationCluster is a liquidation level near the current price.
// Side is "long" for clusters below price and "short" for clusters above.
type LiquidationCluster struct {
	Symbol          string
	PriceLevel      float64
	SizeUSD         float64
	Side            string
	DistancePercent float64
}

// LiquidationSnapshot aggregates clusters around the current price for a symbol.
type LiquidationSnapshot struct {
	Symbol        string
	FetchedAt     time.Time
	CurrentPrice  float64
	ClustersAbove []LiquidationCluster
	ClustersBelow []LiquidationCluster
}

// LargestBelow returns the largest long-liquidation cluster within the given
// distance below the current price, or nil.
func (l *LiquidationSnapshot) LargestBelow(withinPercent float64) *LiquidationCluster {
	return largest(l.ClustersBelow, withinPercent)
}

// LargestAbove returns the largest short-liquidation cluster within the given
// distance above the current price, or nil.
func (l *LiquidationSnapshot) LargestAbove(withinPercent float64) *LiquidationCluster {
	return largest(l.ClustersAbove, withinPercent)
}

func largest(clusters []LiquidationCluster, withinPercent float64) *LiquidationCluster {
	var best *LiquidationCluster
	for i := range clusters {
		c := &clusters[i]
		if c.DistancePercent > withinPercent {
			continue
		}
		if best == nil || c.SizeUSD > best.SizeUSD {
			best = c
		}
	}
	return best
}
