package market

import (
	"fmt"
	"sort"
	"sync"

	"stock_sim/internal/domain"

	"github.com/shopspring/decimal"
)

// Registry owns all tradable instruments and their current prices.
// It is the only mutator of prices: external code reads through Lookup
// and Snapshot, and price evolution happens exclusively in Tick.
type Registry struct {
	mu          sync.RWMutex
	instruments map[string]*domain.Instrument
	model       PriceModel
}

// NewRegistry creates an empty registry driven by the given price model.
func NewRegistry(model PriceModel) *Registry {
	return &Registry{
		instruments: make(map[string]*domain.Instrument),
		model:       model,
	}
}

// Register adds an instrument with its initial price. Instruments are
// created once at setup and never deleted during a run.
func (r *Registry) Register(symbol string, initialPrice decimal.Decimal) error {
	if !initialPrice.IsPositive() {
		return fmt.Errorf("register %s: %w", symbol, domain.ErrInvalidPrice)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instruments[symbol]; exists {
		return fmt.Errorf("register %s: %w", symbol, domain.ErrDuplicateInstrument)
	}
	r.instruments[symbol] = &domain.Instrument{Symbol: symbol, Price: initialPrice}
	return nil
}

// Lookup returns the current price for a symbol. Reads observe a
// self-consistent snapshot: a tick in progress is never half visible.
func (r *Registry) Lookup(symbol string) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instruments[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("lookup %s: %w", symbol, domain.ErrUnknownInstrument)
	}
	return inst.Price, nil
}

// Tick advances every instrument price by one model step. All updates
// are applied as one logical step under the write lock; two ticks
// compound rather than cancel.
func (r *Registry) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, inst := range r.instruments {
		inst.Price = r.model.Next(inst.Price)
	}
}

// Snapshot returns all quotes sorted by symbol for consistent ordering.
func (r *Registry) Snapshot() []domain.Quote {
	r.mu.RLock()
	defer r.mu.RUnlock()

	quotes := make([]domain.Quote, 0, len(r.instruments))
	for _, inst := range r.instruments {
		quotes = append(quotes, domain.Quote{Symbol: inst.Symbol, Price: inst.Price})
	}
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Symbol < quotes[j].Symbol
	})
	return quotes
}

// Len returns the number of registered instruments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instruments)
}
