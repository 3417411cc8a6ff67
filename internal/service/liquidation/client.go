// Package liquidation polls aggregated liquidation levels. The data only
// annotates alerts; every failure path degrades to "no annotation".
package liquidation

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"LagScalper/internal/domain/models"
	drepo "LagScalper/internal/domain/repository"
	"LagScalper/internal/store"
	phttp "LagScalper/pkg/http"
	"LagScalper/pkg/logger"
)

// Poller fetches liquidation levels from the Coinglass API on a fixed
// interval and groups them into clusters above and below the current price.
type Poller struct {
	baseURL  string
	apiKey   string
	symbols  []string
	interval time.Duration
	client   *phttp.Client
	store    *store.RollingStore
	metrics  drepo.Metrics
	log      *logger.Logger
	now      func() time.Time

	mu    sync.RWMutex
	snaps map[string]*models.LiquidationSnapshot
}

// New creates a new liquidation Poller.
func New(baseURL, apiKey string, symbols []string, interval time.Duration, client *phttp.Client, st *store.RollingStore, metrics drepo.Metrics, log *logger.Logger) *Poller {
	return &Poller{
		baseURL:  baseURL,
		apiKey:   apiKey,
		symbols:  symbols,
		interval: interval,
		client:   client,
		store:    st,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
		snaps:    make(map[string]*models.LiquidationSnapshot),
	}
}

// Latest returns the most recent snapshot for a symbol, or nil.
func (p *Poller) Latest(symbol string) *models.LiquidationSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snaps[symbol]
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.pollAll(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollAll(ctx)
		}
	}
}

func (p *Poller) pollAll(ctx context.Context) {
	for _, sym := range p.symbols {
		if err := p.poll(ctx, sym); err != nil {
			p.metrics.RecordError("liquidation")
			p.log.Warn("liquidation poll failed", logger.String("symbol", sym), logger.Error(err))
		}
	}
}

type liqLevel struct {
	Price  float64 `json:"price"`
	LiqUSD float64 `json:"liqUsd"`
	Side   int     `json:"side"` // 1 long, 2 short
}

type liqResponse struct {
	Code string     `json:"code"`
	Data []liqLevel `json:"data"`
}

func (p *Poller) poll(ctx context.Context, symbol string) error {
	price, ok := p.store.LastPrice(symbol)
	if !ok || price <= 0 {
		// No reference price yet; try again next interval.
		return nil
	}

	var resp liqResponse
	opts := &phttp.RequestOptions{
		Method:      phttp.MethodGet,
		URL:         p.baseURL + "/api/futures/liquidation/aggregated-heatmap",
		Headers:     map[string]string{"CG-API-KEY": p.apiKey},
		QueryParams: map[string][]string{"symbol": {symbol}},
	}
	if err := p.client.SendAndParse(ctx, opts, &resp); err != nil {
		return err
	}

	snap := buildSnapshot(symbol, price, p.now(), resp.Data)
	p.mu.Lock()
	p.snaps[symbol] = snap
	p.mu.Unlock()
	return nil
}

// buildSnapshot splits levels around the reference price. Levels on the
// wrong side for their type (long liquidations above price, shorts below)
// are stale artifacts and dropped.
func buildSnapshot(symbol string, price float64, at time.Time, levels []liqLevel) *models.LiquidationSnapshot {
	snap := &models.LiquidationSnapshot{
		Symbol:       symbol,
		FetchedAt:    at,
		CurrentPrice: price,
	}
	for _, lv := range levels {
		if lv.Price <= 0 || lv.LiqUSD <= 0 {
			continue
		}
		c := models.LiquidationCluster{
			Symbol:          symbol,
			PriceLevel:      lv.Price,
			SizeUSD:         lv.LiqUSD,
			DistancePercent: math.Abs(lv.Price-price) / price * 100,
		}
		switch {
		case lv.Side == 1 && lv.Price < price:
			c.Side = "long"
			snap.ClustersBelow = append(snap.ClustersBelow, c)
		case lv.Side == 2 && lv.Price > price:
			c.Side = "short"
			snap.ClustersAbove = append(snap.ClustersAbove, c)
		}
	}
	sort.Slice(snap.ClustersBelow, func(i, j int) bool {
		return snap.ClustersBelow[i].DistancePercent < snap.ClustersBelow[j].DistancePercent
	})
	sort.Slice(snap.ClustersAbove, func(i, j int) bool {
		return snap.ClustersAbove[i].DistancePercent < snap.ClustersAbove[j].DistancePercent
	})
	return snap
}
