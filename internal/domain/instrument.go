package domain

import "github.com/shopspring/decimal"

// Instrument is a tradable symbol with its current quoted price.
// Instances are created once at registration and live for the whole run;
// Price is mutated only by the registry's tick step.
type Instrument struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// Quote is a point-in-time read-only view of an instrument, safe to hand
// out to display and feed layers.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}
