package domain

// Portfolio is the holdings ledger: symbol -> non-negative share count.
// Absent symbols are equivalent to a balance of zero. All mutation goes
// through Credit/Debit; the owning account serializes access, so the
// ledger itself carries no lock.
type Portfolio struct {
	holdings map[string]int64
}

// NewPortfolio creates an empty holdings ledger.
func NewPortfolio() *Portfolio {
	return &Portfolio{
		holdings: make(map[string]int64),
	}
}

// ShareBalance returns the held quantity for a symbol, 0 if unseen.
func (p *Portfolio) ShareBalance(symbol string) int64 {
	return p.holdings[symbol]
}

// Credit adds qty shares to the symbol's balance. qty must be positive.
func (p *Portfolio) Credit(symbol string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	p.holdings[symbol] += qty
	return nil
}

// Debit removes qty shares from the symbol's balance. The check and the
// subtraction are a single step: a balance can never be observed negative.
func (p *Portfolio) Debit(symbol string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	current := p.holdings[symbol]
	if qty > current {
		return ErrInsufficientShares
	}
	p.holdings[symbol] = current - qty
	return nil
}

// Snapshot returns a copy of all non-zero balances.
func (p *Portfolio) Snapshot() map[string]int64 {
	result := make(map[string]int64, len(p.holdings))
	for sym, qty := range p.holdings {
		if qty != 0 {
			result[sym] = qty
		}
	}
	return result
}
