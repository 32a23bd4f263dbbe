package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the two known directions.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Order is the immutable record of a filled trade. It is created exactly
// once by the execution engine and appended to the account history; it is
// never mutated or deleted afterward.
type Order struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Qty        int64           `json:"qty"`
	Side       Side            `json:"side"`
	Price      decimal.Decimal `json:"price"` // execution price snapshot
	ExecutedAt time.Time       `json:"executed_at"`
}

// Notional returns price * quantity for this order.
func (o Order) Notional() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Qty))
}
