// Package event defines the messages flowing from the trading core to its
// observers (feed server, journal).
package event

import (
	"stock_sim/internal/domain"
)

// PriceEvent is a full market snapshot produced by one simulation tick.
type PriceEvent struct {
	Quotes []domain.Quote `json:"quotes"`
	Ts     int64          `json:"ts"` // Unix milliseconds
}

// FillEvent wraps an executed order for observers.
type FillEvent struct {
	Account string       `json:"account"`
	Order   domain.Order `json:"order"`
}
