package domain

import "errors"

var (
	// ErrExchangeRejected wraps a non-success status returned by any
	// exchange call. The exchange's own message is attached by the caller.
	ErrExchangeRejected = errors.New("exchange rejected request")

	// ErrFillTimeout means a market order did not report Filled within
	// the fill-wait budget.
	ErrFillTimeout = errors.New("order not filled in time")

	// ErrConfigUnavailable means the store holds no strategy config or
	// trigger document at session start.
	ErrConfigUnavailable = errors.New("strategy config unavailable")

	// ErrNoDocument means the store holds no document of the requested type.
	ErrNoDocument = errors.New("document not found")
)
