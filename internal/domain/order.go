package domain

import "time"

type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Opposite returns the side that reduces a position opened on s.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type OrderType string

const (
	OrderTypeMarket OrderType = "Market"
	OrderTypeLimit  OrderType = "Limit"
)

type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "New"
	OrderStatusPartiallyFilled OrderStatus = "PartiallyFilled"
	OrderStatusFilled          OrderStatus = "Filled"
	OrderStatusCancelled       OrderStatus = "Cancelled"
	OrderStatusRejected        OrderStatus = "Rejected"
)

// TradeType is an order's role in a position's lifecycle, derived from
// its side and reduce-only flag.
type TradeType string

const (
	TradeOpenLong   TradeType = "OpenLong"
	TradeCloseLong  TradeType = "CloseLong"
	TradeOpenShort  TradeType = "OpenShort"
	TradeCloseShort TradeType = "CloseShort"
)

// TradeTypeOf classifies an order. Total over the 2x2 input space: a
// non-reduce-only order opens a position on its own side, a reduce-only
// order closes the position on the opposite side.
func TradeTypeOf(side Side, reduceOnly bool) TradeType {
	switch {
	case side == SideBuy && !reduceOnly:
		return TradeOpenLong
	case side == SideSell && reduceOnly:
		return TradeCloseLong
	case side == SideSell && !reduceOnly:
		return TradeOpenShort
	default:
		return TradeCloseShort
	}
}

// IsLong reports whether the trade type belongs to the long side of the book.
func (t TradeType) IsLong() bool {
	return t == TradeOpenLong || t == TradeCloseLong
}

// Order is owned by the exchange; the bot only reads it and requests
// creation or cancellation.
type Order struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Side       Side        `json:"side"`
	Type       OrderType   `json:"type"`
	Qty        float64     `json:"qty"`
	Price      float64     `json:"price"`
	ReduceOnly bool        `json:"reduce_only"`
	Status     OrderStatus `json:"status"`
	AvgPrice   float64     `json:"avg_price"`
	CumExecQty float64     `json:"cum_exec_qty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TradeType returns the order's role in a position's lifecycle.
func (o *Order) TradeType() TradeType {
	return TradeTypeOf(o.Side, o.ReduceOnly)
}

// Position is one side of a hedge-mode position on the exchange.
type Position struct {
	Symbol        string  `json:"symbol"`
	Side          Side    `json:"side"`
	Size          float64 `json:"size"`
	EntryPrice    float64 `json:"entry_price"`
	Leverage      int     `json:"leverage"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// PositionPair is the per-cycle snapshot of both sides.
type PositionPair struct {
	Long  *Position `json:"long"`
	Short *Position `json:"short"`
}

type Ticker struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
	MarkPrice float64 `json:"mark_price"`
	BidPrice  float64 `json:"bid_price"`
	AskPrice  float64 `json:"ask_price"`
}
