package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"LagScalper/internal/domain/models"
)

// SchemaStatements creates the signal history table. Idempotent.
func SchemaStatements(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts            DateTime64(3, 'UTC'),
		symbol        LowCardinality(String),
		direction     LowCardinality(String),
		strength      LowCardinality(String),
		price         Float64,
		entry_low     Float64,
		entry_high    Float64,
		stop_loss     Float64,
		target_1      Float64,
		target_2      Float64,
		btc_change_1h Float64,
		alt_change_1h Float64,
		spread        Float64,
		ratio_rsi     Nullable(Float64),
		funding_rate  Nullable(Float64),
		warnings      Array(String)
	) ENGINE = MergeTree()
	ORDER BY (symbol, ts)
	TTL toDateTime(ts) + INTERVAL 90 DAY`, table)}
}

// SignalHistory persists emitted signals to ClickHouse for later review and
// backtest comparison. It participates in the alert fan-out as one more
// destination; a write failure never affects delivery to the others.
type SignalHistory struct {
	db    *sql.DB
	table string
}

// NewSignalHistory creates a new SignalHistory store.
func NewSignalHistory(db *sql.DB, table string) *SignalHistory {
	return &SignalHistory{db: db, table: table}
}

func (s *SignalHistory) Name() string { return "clickhouse" }

// Send inserts one signal event.
func (s *SignalHistory) Send(ctx context.Context, ev *models.SignalEvent) error {
	q := fmt.Sprintf(`INSERT INTO %s
		(ts, symbol, direction, strength, price, entry_low, entry_high, stop_loss, target_1, target_2,
		 btc_change_1h, alt_change_1h, spread, ratio_rsi, funding_rate, warnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q,
		ev.Timestamp,
		ev.Symbol,
		string(ev.Direction),
		string(ev.Strength),
		ev.CurrentPrice,
		ev.EntryLow,
		ev.EntryHigh,
		ev.StopLoss,
		ev.Target1,
		ev.Target2,
		ev.Metrics.BTCChange1h,
		ev.Metrics.AltChange1h,
		ev.Metrics.Spread,
		ev.Metrics.RatioRSI,
		ev.Metrics.FundingRate,
		ev.Warnings,
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// Recent returns the latest signals for a symbol, newest first. An empty
// symbol returns signals across all symbols.
func (s *SignalHistory) Recent(ctx context.Context, symbol string, since time.Time, limit int) ([]*models.SignalEvent, error) {
	q := fmt.Sprintf(`SELECT ts, symbol, direction, strength, price, entry_low, entry_high, stop_loss,
		target_1, target_2, btc_change_1h, alt_change_1h, spread, ratio_rsi, funding_rate
		FROM %s WHERE ts >= ?`, s.table)
	args := []interface{}{since}
	if symbol != "" {
		q += " AND symbol = ?"
		args = append(args, symbol)
	}
	q += " ORDER BY ts DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var out []*models.SignalEvent
	for rows.Next() {
		var ev models.SignalEvent
		var direction, strength string
		var rsi, funding sql.NullFloat64
		if err := rows.Scan(&ev.Timestamp, &ev.Symbol, &direction, &strength,
			&ev.CurrentPrice, &ev.EntryLow, &ev.EntryHigh, &ev.StopLoss,
			&ev.Target1, &ev.Target2,
			&ev.Metrics.BTCChange1h, &ev.Metrics.AltChange1h, &ev.Metrics.Spread,
			&rsi, &funding); err != nil {
			return nil, err
		}
		ev.Direction = models.Direction(direction)
		ev.Strength = models.Strength(strength)
		if rsi.Valid {
			v := rsi.Float64
			ev.Metrics.RatioRSI = &v
		}
		if funding.Valid {
			v := funding.Float64
			ev.Metrics.FundingRate = &v
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// Health pings the connection pool.
func (s *SignalHistory) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
