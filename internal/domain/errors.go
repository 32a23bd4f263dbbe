package domain

import (
	"errors"
	"fmt"
)

// Order rejection causes. Every validation failure in the trading core maps
// to exactly one of these sentinels so callers can branch with errors.Is
// instead of string matching.
var (
	// ErrDuplicateInstrument is returned when registering a symbol twice.
	ErrDuplicateInstrument = errors.New("duplicate instrument")

	// ErrInvalidPrice is returned when an instrument price is zero or negative.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrUnknownInstrument is returned when a symbol is not registered.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrInvalidQuantity is returned when an order quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidSide is returned when an order side is neither BUY nor SELL.
	ErrInvalidSide = errors.New("invalid side")

	// ErrInvalidAmount is returned when a cash movement amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is returned when a buy or withdrawal exceeds the cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares is returned when a sell or debit exceeds the share balance.
	ErrInsufficientShares = errors.New("insufficient shares")
)

// RejectionError annotates a rejected order with the request that caused it.
// It unwraps to one of the sentinel errors above. A rejection is terminal:
// nothing is retried and no account state has been touched.
type RejectionError struct {
	Symbol string
	Qty    int64
	Side   Side
	Err    error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("order rejected [%s %s x%d]: %s", e.Side, e.Symbol, e.Qty, e.Err.Error())
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Reject wraps a sentinel error with order context.
func Reject(symbol string, qty int64, side Side, cause error) *RejectionError {
	return &RejectionError{Symbol: symbol, Qty: qty, Side: side, Err: cause}
}
