package market

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

// PriceModel produces the next price for an instrument given its current
// price. It is called synchronously by the registry under its write lock,
// once per instrument per tick.
type PriceModel interface {
	Next(price decimal.Decimal) decimal.Decimal
}

// RandomWalk applies an independent multiplicative perturbation in
// [-maxMovePct, +maxMovePct] and clamps the result to a floor so a price
// can never reach zero or go negative. The clamp is silent: the original
// simulator never surfaced it as an error, and neither do we.
type RandomWalk struct {
	maxMovePct float64
	floor      decimal.Decimal
	rng        *rand.Rand
}

// NewRandomWalk creates a random walk model. A seed of 0 seeds from the
// wall clock; any other value gives a reproducible price sequence, which
// the tests rely on.
func NewRandomWalk(maxMovePct float64, floor decimal.Decimal, seed int64) *RandomWalk {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomWalk{
		maxMovePct: maxMovePct,
		floor:      floor,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Next returns the perturbed, floored price.
func (w *RandomWalk) Next(price decimal.Decimal) decimal.Decimal {
	pct := (w.rng.Float64()*2 - 1) * w.maxMovePct
	next := price.Mul(decimal.NewFromFloat(1 + pct))
	if next.LessThan(w.floor) {
		return w.floor
	}
	return next
}

// Floor returns the configured minimum price.
func (w *RandomWalk) Floor() decimal.Decimal {
	return w.floor
}
