// Package funding polls perpetual funding rates. The strategy tolerates this
// source being down: an absent or stale snapshot passes the gate as neutral.
package funding

import (
	"context"
	"strconv"
	"sync"
	"time"

	"LagScalper/internal/domain/models"
	drepo "LagScalper/internal/domain/repository"
	phttp "LagScalper/pkg/http"
	"LagScalper/pkg/logger"
)

// Poller fetches funding rates from the Binance futures premium index
// endpoint on a fixed interval and caches the latest snapshot per symbol.
type Poller struct {
	baseURL  string
	symbols  []string
	interval time.Duration
	client   *phttp.Client
	metrics  drepo.Metrics
	log      *logger.Logger
	now      func() time.Time

	mu    sync.RWMutex
	snaps map[string]models.FundingSnapshot
}

// New creates a new funding Poller.
func New(baseURL string, symbols []string, interval time.Duration, client *phttp.Client, metrics drepo.Metrics, log *logger.Logger) *Poller {
	return &Poller{
		baseURL:  baseURL,
		symbols:  symbols,
		interval: interval,
		client:   client,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
		snaps:    make(map[string]models.FundingSnapshot),
	}
}

// Latest returns the most recent snapshot for a symbol.
func (p *Poller) Latest(symbol string) (models.FundingSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap, ok := p.snaps[symbol]
	return snap, ok
}

// Run polls until ctx is done. The first poll happens immediately so the
// gate has data as soon as the feed warms up.
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
			p.metrics.RecordError("funding")
			p.log.Warn("funding poll failed", logger.String("symbol", sym), logger.Error(err))
		}
	}
}

type premiumIndex struct {
	Symbol          string `json:"symbol"`
	LastFundingRate string `json:"lastFundingRate"`
}

func (p *Poller) poll(ctx context.Context, symbol string) error {
	var resp premiumIndex
	opts := &phttp.RequestOptions{
		Method:      phttp.MethodGet,
		URL:         p.baseURL + "/fapi/v1/premiumIndex",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}
	if err := p.client.SendAndParse(ctx, opts, &resp); err != nil {
		return err
	}
	fraction, err := strconv.ParseFloat(resp.LastFundingRate, 64)
	if err != nil {
		return err
	}
	// The exchange reports a fraction per interval; thresholds are percent.
	snap := models.FundingSnapshot{
		Symbol:    symbol,
		Rate:      fraction * 100,
		FetchedAt: p.now(),
	}
	p.mu.Lock()
	p.snaps[symbol] = snap
	p.mu.Unlock()
	return nil
}
