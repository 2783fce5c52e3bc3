package domain

import "context"

// Exchange defines the trading operations the strategy needs from a
// derivatives exchange.
type Exchange interface {
	GetTicker(ctx context.Context, symbol string) (*Ticker, error)
	GetPositions(ctx context.Context, symbol string) (*PositionPair, error)
	GetActiveOrders(ctx context.Context, symbol string) ([]*Order, error)
	GetOrder(ctx context.Context, symbol, orderID string) (*Order, error)
	PlaceMarketOrder(ctx context.Context, symbol string, qty float64, side Side) (*Order, error)
	PlaceLimitOrder(ctx context.Context, symbol string, qty, price float64, side Side, reduceOnly bool) (*Order, error)
	CancelOrders(ctx context.Context, symbol string, orderIDs []string) error
	CancelAllOrders(ctx context.Context, symbol string) error
}

// DocumentStore defines persistence for strategy documents, keyed by a
// type tag and ordered by timestamp.
type DocumentStore interface {
	GetConfig(ctx context.Context) (*StrategyConfig, error)
	GetTriggerState(ctx context.Context) (*TriggerState, error)
	GetLastEntryRecord(ctx context.Context) (*EntryRecord, error)
	AppendEntryRecord(ctx context.Context, record *EntryRecord) error

	SaveConfig(ctx context.Context, cfg *StrategyConfig) error
	SaveTriggerState(ctx context.Context, state *TriggerState) error
}
