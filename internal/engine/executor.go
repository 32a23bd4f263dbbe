// Package engine implements order execution against the instrument
// registry and an account. It is the sole coordinator of registry reads
// with account writes: an execute call either fully succeeds or leaves
// zero partial state behind.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"stock_sim/internal/account"
	"stock_sim/internal/domain"
	"stock_sim/internal/infra"
	"stock_sim/internal/market"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Journal receives successfully executed orders for audit persistence.
// Journal writes happen after the fill is committed and never fail the
// execute itself.
type Journal interface {
	AppendFill(accountName string, order domain.Order) error
}

// Executor validates and executes market orders. A single mutex
// serializes execute calls so that two concurrent orders cannot both pass
// validation against a balance only one of them can satisfy.
type Executor struct {
	registry *market.Registry
	journal  Journal        // may be nil
	metrics  *infra.Metrics // may be nil
	mu       sync.Mutex     // held for the whole validate-then-mutate sequence
}

// NewExecutor creates an execution engine over the given registry.
// journal and metrics are optional and may be nil.
func NewExecutor(registry *market.Registry, journal Journal, metrics *infra.Metrics) *Executor {
	return &Executor{
		registry: registry,
		journal:  journal,
		metrics:  metrics,
	}
}

// Execute validates and fills a market order for qty shares of symbol on
// the given account. The instrument price at the moment of execution
// becomes the order's execution price: no slippage, no partial fills.
//
// All validation happens before any mutation. On rejection the returned
// error unwraps to one of the domain sentinels and the account is
// untouched; on success cash, holdings and history are updated together
// and the recorded order is returned. A rejected order is terminal: the
// caller decides whether to resubmit with different parameters.
func (e *Executor) Execute(acct *account.Account, symbol string, qty int64, side domain.Side) (domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, err := e.execute(acct, symbol, qty, side)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordOrderRejected()
		}
		return domain.Order{}, err
	}

	if e.metrics != nil {
		e.metrics.RecordOrderFilled()
	}
	if e.journal != nil {
		if jerr := e.journal.AppendFill(acct.Name(), order); jerr != nil {
			slog.Warn("fill journal write failed",
				slog.String("order_id", order.ID),
				slog.Any("error", jerr))
		}
	}

	slog.Info("order filled",
		slog.String("account", acct.Name()),
		slog.String("symbol", order.Symbol),
		slog.String("side", string(order.Side)),
		slog.Int64("qty", order.Qty),
		slog.String("price", order.Price.String()))

	return order, nil
}

func (e *Executor) execute(acct *account.Account, symbol string, qty int64, side domain.Side) (domain.Order, error) {
	if qty <= 0 {
		return domain.Order{}, domain.Reject(symbol, qty, side, domain.ErrInvalidQuantity)
	}
	if !side.Valid() {
		return domain.Order{}, domain.Reject(symbol, qty, side, domain.ErrInvalidSide)
	}

	price, err := e.registry.Lookup(symbol)
	if err != nil {
		return domain.Order{}, domain.Reject(symbol, qty, side, domain.ErrUnknownInstrument)
	}

	notional := price.Mul(decimal.NewFromInt(qty))

	switch side {
	case domain.SideBuy:
		if notional.GreaterThan(acct.CashBalance()) {
			return domain.Order{}, domain.Reject(symbol, qty, side, domain.ErrInsufficientFunds)
		}
		// Validation passed under the executor lock: neither call below
		// can fail, and both must apply.
		if err := acct.Withdraw(notional); err != nil {
			return domain.Order{}, err
		}
		if err := acct.CreditShares(symbol, qty); err != nil {
			return domain.Order{}, err
		}

	case domain.SideSell:
		if qty > acct.ShareBalance(symbol) {
			return domain.Order{}, domain.Reject(symbol, qty, side, domain.ErrInsufficientShares)
		}
		if err := acct.DebitShares(symbol, qty); err != nil {
			return domain.Order{}, err
		}
		if err := acct.Deposit(notional); err != nil {
			return domain.Order{}, err
		}
	}

	order := domain.Order{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		Qty:        qty,
		Side:       side,
		Price:      price,
		ExecutedAt: time.Now(),
	}
	acct.RecordOrder(order)

	return order, nil
}
