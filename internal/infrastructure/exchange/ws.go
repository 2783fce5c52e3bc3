package exchange

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vitos/bybit_dca_bot/internal/domain"
	"go.uber.org/zap"
)

// TickerStream delivers live ticker updates for one symbol over the
// Bybit V5 public websocket.
type TickerStream struct {
	url    string
	symbol string
	logger *zap.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	callbacks []func(*domain.Ticker)
	last      domain.Ticker
}

func NewTickerStream(url, symbol string, logger *zap.Logger) *TickerStream {
	if url == "" {
		url = BybitWSURL
	}
	return &TickerStream{url: url, symbol: symbol, logger: logger}
}

// OnTicker registers a callback invoked for every ticker update.
func (t *TickerStream) OnTicker(callback func(*domain.Ticker)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callbacks = append(t.callbacks, callback)
}

// Connect dials the stream, subscribes to the symbol's ticker topic and
// starts the read loop.
func (t *TickerStream) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return nil
	}

	c, _, err := websocket.DefaultDialer.Dial(t.url, nil)
	if err != nil {
		return err
	}
	t.conn = c

	subMsg := map[string]interface{}{
		"op":   "subscribe",
		"args": []interface{}{"tickers." + t.symbol},
	}
	if err := c.WriteJSON(subMsg); err != nil {
		c.Close()
		t.conn = nil
		return err
	}

	go t.readLoop(c)
	return nil
}

func (t *TickerStream) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

func (t *TickerStream) readLoop(c *websocket.Conn) {
	defer func() {
		c.Close()
		t.mu.Lock()
		if t.conn == c {
			t.conn = nil
		}
		t.mu.Unlock()
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			t.logger.Warn("ticker stream read error", zap.Error(err))
			return
		}

		var event struct {
			Topic string `json:"topic"`
			Data  struct {
				Symbol    string `json:"symbol"`
				LastPrice string `json:"lastPrice"`
				MarkPrice string `json:"markPrice"`
				Bid1Price string `json:"bid1Price"`
				Ask1Price string `json:"ask1Price"`
			} `json:"data"`
		}
		if err := json.Unmarshal(message, &event); err != nil {
			t.logger.Warn("ticker stream unmarshal error", zap.Error(err))
			continue
		}
		if event.Topic == "" || event.Data.Symbol == "" {
			continue
		}

		t.mu.Lock()
		// Delta frames carry only changed fields; merge into the last
		// known snapshot.
		ticker := t.last
		ticker.Symbol = event.Data.Symbol
		mergeField(&ticker.LastPrice, event.Data.LastPrice)
		mergeField(&ticker.MarkPrice, event.Data.MarkPrice)
		mergeField(&ticker.BidPrice, event.Data.Bid1Price)
		mergeField(&ticker.AskPrice, event.Data.Ask1Price)
		t.last = ticker
		callbacks := t.callbacks
		t.mu.Unlock()

		for _, cb := range callbacks {
			cb(&ticker)
		}
	}
}

func mergeField(dst *float64, raw string) {
	if raw == "" {
		return
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*dst = f
	}
}
