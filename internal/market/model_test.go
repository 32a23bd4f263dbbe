package market

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRandomWalk_StaysWithinBounds(t *testing.T) {
	w := NewRandomWalk(0.05, decimal.NewFromFloat(0.1), 42)
	price := decimal.NewFromInt(100)

	for i := 0; i < 1000; i++ {
		next := w.Next(price)

		move := next.Sub(price).Div(price).Abs()
		if move.GreaterThan(decimal.NewFromFloat(0.0500001)) {
			t.Fatalf("step %d: move %s exceeds 5%% (from %s to %s)", i, move, price, next)
		}
		price = next
	}
}

func TestRandomWalk_ClampsToFloor(t *testing.T) {
	floor := decimal.NewFromFloat(0.1)
	w := NewRandomWalk(0.05, floor, 7)

	// Start at the floor: the walk can only move -5%..+5%, and anything
	// below the floor must clamp back to it.
	price := floor
	for i := 0; i < 1000; i++ {
		price = w.Next(price)
		if price.LessThan(floor) {
			t.Fatalf("step %d: price %s fell below floor %s", i, price, floor)
		}
		if !price.IsPositive() {
			t.Fatalf("step %d: price %s is not positive", i, price)
		}
	}
}

func TestRandomWalk_SeededSequencesAreReproducible(t *testing.T) {
	a := NewRandomWalk(0.05, decimal.NewFromFloat(0.1), 99)
	b := NewRandomWalk(0.05, decimal.NewFromFloat(0.1), 99)

	pa := decimal.NewFromInt(100)
	pb := decimal.NewFromInt(100)
	for i := 0; i < 50; i++ {
		pa = a.Next(pa)
		pb = b.Next(pb)
		if !pa.Equal(pb) {
			t.Fatalf("step %d: sequences diverged (%s vs %s)", i, pa, pb)
		}
	}
}
