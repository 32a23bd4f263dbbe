// Package account holds a participant's cash balance, holdings ledger and
// append-only order history. Accounts are independent of each other: there
// is no cross-account invariant anywhere in the core.
package account

import (
	"fmt"
	"sync"

	"stock_sim/internal/domain"

	"github.com/shopspring/decimal"
)

// Account is a single participant's trading state. Every method is
// individually atomic under the account lock; check-then-mutate pairs
// (Withdraw, DebitShares) never expose an intermediate state.
type Account struct {
	mu        sync.RWMutex
	name      string
	cash      decimal.Decimal
	portfolio *domain.Portfolio
	history   []domain.Order
}

// New creates an account with an initial cash balance and an empty
// ledger and history.
func New(name string, initialCash decimal.Decimal) *Account {
	return &Account{
		name:      name,
		cash:      initialCash,
		portfolio: domain.NewPortfolio(),
	}
}

// Name returns the account holder name.
func (a *Account) Name() string {
	return a.name
}

// Deposit increases the cash balance. amount must be positive.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("deposit %s: %w", amount, domain.ErrInvalidAmount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cash = a.cash.Add(amount)
	return nil
}

// Withdraw decreases the cash balance. The balance check and the
// subtraction happen under one lock hold, so cash can never go negative.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("withdraw %s: %w", amount, domain.ErrInvalidAmount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if amount.GreaterThan(a.cash) {
		return fmt.Errorf("withdraw %s (cash %s): %w", amount, a.cash, domain.ErrInsufficientFunds)
	}
	a.cash = a.cash.Sub(amount)
	return nil
}

// CreditShares adds shares to the holdings ledger.
func (a *Account) CreditShares(symbol string, qty int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolio.Credit(symbol, qty)
}

// DebitShares removes shares from the holdings ledger, failing with
// ErrInsufficientShares if the balance does not cover qty.
func (a *Account) DebitShares(symbol string, qty int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.portfolio.Debit(symbol, qty)
}

// RecordOrder appends a filled order to the history. History is
// append-only: never reordered, never pruned.
func (a *Account) RecordOrder(order domain.Order) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, order)
}

// CashBalance returns the current cash balance.
func (a *Account) CashBalance() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cash
}

// ShareBalance returns the held quantity for a symbol, 0 if unseen.
func (a *Account) ShareBalance(symbol string) int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.portfolio.ShareBalance(symbol)
}

// Holdings returns a copy of all non-zero share balances.
func (a *Account) Holdings() map[string]int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.portfolio.Snapshot()
}

// History returns a copy of the order history in execution order.
func (a *Account) History() []domain.Order {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]domain.Order, len(a.history))
	copy(result, a.history)
	return result
}
