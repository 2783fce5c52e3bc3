package domain

import "time"

// Document type tags used to partition the document store.
const (
	DocTypeConfig  = "config"
	DocTypeTrigger = "trigger"
	DocTypeEntry   = "entry"
)

// StrategyConfig holds the trading parameters. Loaded once per session
// from the document store; a fresh load is a new session.
type StrategyConfig struct {
	MaxHoldPositions float64 `json:"max_hold_positions"`
	MinQty           float64 `json:"min_qty"`
	LongProfit       float64 `json:"long_profit"`
	ShortProfit      float64 `json:"short_profit"`
	LongNextEntry    float64 `json:"long_next_entry"`
	ShortNextEntry   float64 `json:"short_next_entry"`
}

// TriggerState gates whether each side runs at all.
type TriggerState struct {
	LongEnabled  bool `json:"long_trigger"`
	ShortEnabled bool `json:"short_trigger"`
}

// EntryRecord captures the outcome of one ladder action. Append-only,
// ordered by timestamp. FilledOrder is only set on the cold-start path.
type EntryRecord struct {
	Side        Side      `json:"side"`
	FilledOrder *Order    `json:"filled_order,omitempty"`
	EntryOrder  *Order    `json:"entry_order"`
	CloseOrder  *Order    `json:"close_order"`
	Timestamp   time.Time `json:"timestamp"`
}
