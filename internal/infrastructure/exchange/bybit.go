package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vitos/bybit_dca_bot/internal/domain"
)

const (
	BybitBaseURL = "https://api.bybit.com"
	BybitWSURL   = "wss://stream.bybit.com/v5/public/linear"

	category = "linear"
)

// BybitAdapter implements domain.Exchange against the Bybit V5 REST API.
type BybitAdapter struct {
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
}

func NewBybitAdapter(apiKey, apiSecret, baseURL string) *BybitAdapter {
	if baseURL == "" {
		baseURL = BybitBaseURL
	}
	return &BybitAdapter{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *BybitAdapter) sign(params string, timestamp int64, recvWindow int) string {
	// timestamp + apiKey + recvWindow + params
	toSign := fmt.Sprintf("%d%s%d%s", timestamp, b.apiKey, recvWindow, params)
	h := hmac.New(sha256.New, []byte(b.apiSecret))
	h.Write([]byte(toSign))
	return hex.EncodeToString(h.Sum(nil))
}

func (b *BybitAdapter) sendRequest(ctx context.Context, method, path string, payload map[string]interface{}) ([]byte, error) {
	timestamp := time.Now().UnixMilli()
	recvWindow := 5000

	var body []byte
	var paramsStr string

	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = jsonBody
		paramsStr = string(jsonBody)
	} else if method == http.MethodGet {
		// For GET, the signature covers the query string
		if idx := strings.Index(path, "?"); idx != -1 {
			paramsStr = path[idx+1:]
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	signature := b.sign(paramsStr, timestamp, recvWindow)

	req.Header.Set("X-BAPI-API-KEY", b.apiKey)
	req.Header.Set("X-BAPI-TIMESTAMP", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-BAPI-SIGN", signature)
	req.Header.Set("X-BAPI-RECV-WINDOW", strconv.Itoa(recvWindow))
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", string(respBody))
	}

	return respBody, nil
}

// call sends a request and maps a non-zero retCode to ErrExchangeRejected.
func (b *BybitAdapter) call(ctx context.Context, method, path string, payload map[string]interface{}, out interface{}) error {
	respBody, err := b.sendRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}

	var resp struct {
		RetCode int             `json:"retCode"`
		RetMsg  string          `json:"retMsg"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return err
	}
	if resp.RetCode != 0 {
		return fmt.Errorf("%w: %s", domain.ErrExchangeRejected, resp.RetMsg)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return err
		}
	}
	return nil
}

func (b *BybitAdapter) GetTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	path := "/v5/market/tickers?category=" + category + "&symbol=" + symbol

	var result struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
			MarkPrice string `json:"markPrice"`
			Bid1Price string `json:"bid1Price"`
			Ask1Price string `json:"ask1Price"`
		} `json:"list"`
	}
	if err := b.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if len(result.List) == 0 {
		return nil, fmt.Errorf("symbol %s not found", symbol)
	}

	raw := result.List[0]
	return &domain.Ticker{
		Symbol:    raw.Symbol,
		LastPrice: parseFloat(raw.LastPrice),
		MarkPrice: parseFloat(raw.MarkPrice),
		BidPrice:  parseFloat(raw.Bid1Price),
		AskPrice:  parseFloat(raw.Ask1Price),
	}, nil
}

// GetPositions returns both sides of the hedge-mode position. Sides the
// exchange omits come back with zero size.
func (b *BybitAdapter) GetPositions(ctx context.Context, symbol string) (*domain.PositionPair, error) {
	path := "/v5/position/list?category=" + category + "&symbol=" + symbol

	var result struct {
		List []struct {
			Symbol        string `json:"symbol"`
			Side          string `json:"side"`
			Size          string `json:"size"`
			AvgPrice      string `json:"avgPrice"`
			Leverage      string `json:"leverage"`
			UnrealisedPnl string `json:"unrealisedPnl"`
		} `json:"list"`
	}
	if err := b.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}

	pair := &domain.PositionPair{
		Long:  &domain.Position{Symbol: symbol, Side: domain.SideBuy},
		Short: &domain.Position{Symbol: symbol, Side: domain.SideSell},
	}
	for _, raw := range result.List {
		lev, _ := strconv.Atoi(raw.Leverage)
		pos := &domain.Position{
			Symbol:        raw.Symbol,
			Size:          parseFloat(raw.Size),
			EntryPrice:    parseFloat(raw.AvgPrice),
			Leverage:      lev,
			UnrealizedPnL: parseFloat(raw.UnrealisedPnl),
		}
		switch raw.Side {
		case "Buy":
			pos.Side = domain.SideBuy
			pair.Long = pos
		case "Sell":
			pos.Side = domain.SideSell
			pair.Short = pos
		}
	}
	return pair, nil
}

func (b *BybitAdapter) GetActiveOrders(ctx context.Context, symbol string) ([]*domain.Order, error) {
	path := "/v5/order/realtime?category=" + category + "&symbol=" + symbol

	var result rawOrderList
	if err := b.call(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(result.List))
	for _, raw := range result.List {
		orders = append(orders, raw.toOrder())
	}
	return orders, nil
}

// GetOrder looks the order up among open orders first; orders that
// filled between polls have already moved to history.
func (b *BybitAdapter) GetOrder(ctx context.Context, symbol, orderID string) (*domain.Order, error) {
	for _, endpoint := range []string{"/v5/order/realtime", "/v5/order/history"} {
		path := endpoint + "?category=" + category + "&symbol=" + symbol + "&orderId=" + orderID

		var result rawOrderList
		if err := b.call(ctx, http.MethodGet, path, nil, &result); err != nil {
			return nil, err
		}
		if len(result.List) > 0 {
			return result.List[0].toOrder(), nil
		}
	}
	return nil, fmt.Errorf("order %s not found", orderID)
}

func (b *BybitAdapter) PlaceMarketOrder(ctx context.Context, symbol string, qty float64, side domain.Side) (*domain.Order, error) {
	return b.placeOrder(ctx, symbol, qty, 0, side, domain.OrderTypeMarket, false)
}

func (b *BybitAdapter) PlaceLimitOrder(ctx context.Context, symbol string, qty, price float64, side domain.Side, reduceOnly bool) (*domain.Order, error) {
	return b.placeOrder(ctx, symbol, qty, price, side, domain.OrderTypeLimit, reduceOnly)
}

func (b *BybitAdapter) placeOrder(ctx context.Context, symbol string, qty, price float64, side domain.Side, orderType domain.OrderType, reduceOnly bool) (*domain.Order, error) {
	payload := map[string]interface{}{
		"category":    category,
		"symbol":      symbol,
		"side":        string(side),
		"orderType":   string(orderType),
		"qty":         strconv.FormatFloat(qty, 'f', -1, 64),
		"timeInForce": "GTC",
		"reduceOnly":  reduceOnly,
	}
	if orderType == domain.OrderTypeLimit {
		payload["price"] = strconv.FormatFloat(price, 'f', -1, 64)
	}

	var result struct {
		OrderID string `json:"orderId"`
	}
	if err := b.call(ctx, http.MethodPost, "/v5/order/create", payload, &result); err != nil {
		return nil, err
	}

	return &domain.Order{
		ID:         result.OrderID,
		Symbol:     symbol,
		Side:       side,
		Type:       orderType,
		Qty:        qty,
		Price:      price,
		ReduceOnly: reduceOnly,
		Status:     domain.OrderStatusNew,
		CreatedAt:  time.Now(),
	}, nil
}

func (b *BybitAdapter) CancelOrders(ctx context.Context, symbol string, orderIDs []string) error {
	for _, id := range orderIDs {
		payload := map[string]interface{}{
			"category": category,
			"symbol":   symbol,
			"orderId":  id,
		}
		if err := b.call(ctx, http.MethodPost, "/v5/order/cancel", payload, nil); err != nil {
			return fmt.Errorf("cancel order %s: %w", id, err)
		}
	}
	return nil
}

func (b *BybitAdapter) CancelAllOrders(ctx context.Context, symbol string) error {
	payload := map[string]interface{}{
		"category": category,
		"symbol":   symbol,
	}
	return b.call(ctx, http.MethodPost, "/v5/order/cancel-all", payload, nil)
}

type rawOrderList struct {
	List []rawOrder `json:"list"`
}

type rawOrder struct {
	OrderID     string `json:"orderId"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"orderType"`
	Qty         string `json:"qty"`
	Price       string `json:"price"`
	ReduceOnly  bool   `json:"reduceOnly"`
	OrderStatus string `json:"orderStatus"`
	AvgPrice    string `json:"avgPrice"`
	CumExecQty  string `json:"cumExecQty"`
	CreatedTime string `json:"createdTime"`
}

func (r rawOrder) toOrder() *domain.Order {
	createdMs, _ := strconv.ParseInt(r.CreatedTime, 10, 64)
	return &domain.Order{
		ID:         r.OrderID,
		Symbol:     r.Symbol,
		Side:       domain.Side(r.Side),
		Type:       domain.OrderType(r.OrderType),
		Qty:        parseFloat(r.Qty),
		Price:      parseFloat(r.Price),
		ReduceOnly: r.ReduceOnly,
		Status:     domain.OrderStatus(r.OrderStatus),
		AvgPrice:   parseFloat(r.AvgPrice),
		CumExecQty: parseFloat(r.CumExecQty),
		CreatedAt:  time.UnixMilli(createdMs),
	}
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
