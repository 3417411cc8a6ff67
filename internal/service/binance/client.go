// Package binance implements a MarketStream over the Binance spot
// websocket trade feed.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"LagScalper/internal/domain/models"
	drepo "LagScalper/internal/domain/repository"
	"LagScalper/pkg/logger"
)

// Client implements a MarketStream backed by the Binance websocket API.
type Client struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	conn      *websocket.Conn
	connected bool
}

// New creates a new Binance MarketStream.
func New(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) drepo.MarketStream {
	return &Client{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
	}
}

// Connect establishes the websocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	c.log.Info("binance stream connected", logger.String("url", c.websocketURL))
	return nil
}

// Subscribe subscribes to the trade stream of every configured symbol.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("binance not connected")
	}
	params := make([]string, 0, len(c.symbols))
	for _, s := range c.symbols {
		params = append(params, strings.ToLower(s)+"@trade")
	}
	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     1,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	c.log.Info("binance streams subscribed", logger.Strings("streams", params))
	return nil
}

// tradeEvent claims every short key of a Binance trade frame. The decoder
// matches tags case-insensitively when no exact match exists, so "e"/"E" and
// "t"/"T" must each have their own field or the number lands in the string.
type tradeEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"` // ms
	Symbol    string `json:"s"`
	TradeID   int64  `json:"t"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"` // ms
}

// parseTick converts a raw frame into a tick, returning false for control
// frames, subscribe acks, and anything that is not a trade event.
func parseTick(raw []byte) (*models.PriceTick, bool) {
	var ev tradeEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, false
	}
	if ev.EventType != "trade" {
		return nil, false
	}
	price, err := strconv.ParseFloat(ev.Price, 64)
	if err != nil || price <= 0 {
		return nil, false
	}
	qty, _ := strconv.ParseFloat(ev.Quantity, 64)
	return &models.PriceTick{
		Symbol:    ev.Symbol,
		Timestamp: time.UnixMilli(ev.TradeTime).UTC(),
		Price:     price,
		Volume:    qty,
	}, true
}

// Read streams price ticks and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.PriceTick, <-chan error) {
	ticks := make(chan *models.PriceTick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				tick, ok := parseTick(b)
				if !ok {
					continue
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the websocket connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
