package engine

import (
	"errors"
	"sync"
	"testing"

	"stock_sim/internal/account"
	"stock_sim/internal/domain"
	"stock_sim/internal/infra"
	"stock_sim/internal/market"

	"github.com/shopspring/decimal"
)

func testMarket(t *testing.T) *market.Registry {
	t.Helper()
	r := market.NewRegistry(market.NewRandomWalk(0.05, decimal.NewFromFloat(0.1), 1))
	if err := r.Register("ABC", decimal.NewFromFloat(100.0)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return r
}

func TestExecutor_BuySellRoundTrip(t *testing.T) {
	exec := NewExecutor(testMarket(t), nil, nil)
	acct := account.New("alice", decimal.NewFromFloat(10000.0))

	// BUY 50 @ 100 -> cash 5000, holdings 50
	order, err := exec.Execute(acct, "ABC", 50, domain.SideBuy)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if !order.Price.Equal(decimal.NewFromFloat(100.0)) {
		t.Errorf("execution price = %s, want 100", order.Price)
	}
	if order.ID == "" {
		t.Error("order ID must be set")
	}
	if !acct.CashBalance().Equal(decimal.NewFromFloat(5000.0)) {
		t.Errorf("cash after buy = %s, want 5000", acct.CashBalance())
	}
	if got := acct.ShareBalance("ABC"); got != 50 {
		t.Errorf("holdings after buy = %d, want 50", got)
	}

	// SELL 60 -> rejected, nothing changes
	_, err = exec.Execute(acct, "ABC", 60, domain.SideSell)
	if !errors.Is(err, domain.ErrInsufficientShares) {
		t.Fatalf("oversell = %v, want ErrInsufficientShares", err)
	}
	if !acct.CashBalance().Equal(decimal.NewFromFloat(5000.0)) {
		t.Errorf("cash after rejected sell = %s, want 5000", acct.CashBalance())
	}
	if got := acct.ShareBalance("ABC"); got != 50 {
		t.Errorf("holdings after rejected sell = %d, want 50", got)
	}

	// SELL 50 @ 100 -> cash back to 10000, holdings 0
	if _, err := exec.Execute(acct, "ABC", 50, domain.SideSell); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if !acct.CashBalance().Equal(decimal.NewFromFloat(10000.0)) {
		t.Errorf("cash after round trip = %s, want 10000", acct.CashBalance())
	}
	if got := acct.ShareBalance("ABC"); got != 0 {
		t.Errorf("holdings after round trip = %d, want 0", got)
	}

	history := acct.History()
	if len(history) != 2 {
		t.Fatalf("history len = %d, want 2 (rejections leave no trace)", len(history))
	}
	if history[0].Side != domain.SideBuy || history[1].Side != domain.SideSell {
		t.Errorf("history order wrong: %v", history)
	}
}

func TestExecutor_BuyInsufficientFunds(t *testing.T) {
	exec := NewExecutor(testMarket(t), nil, nil)
	acct := account.New("bob", decimal.NewFromFloat(4999.99))

	_, err := exec.Execute(acct, "ABC", 50, domain.SideBuy)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("Execute = %v, want ErrInsufficientFunds", err)
	}

	if !acct.CashBalance().Equal(decimal.NewFromFloat(4999.99)) {
		t.Errorf("cash changed on rejected buy: %s", acct.CashBalance())
	}
	if got := acct.ShareBalance("ABC"); got != 0 {
		t.Errorf("holdings changed on rejected buy: %d", got)
	}
	if len(acct.History()) != 0 {
		t.Error("rejected buy must not be recorded in history")
	}
}

func TestExecutor_BuyExactBalance(t *testing.T) {
	exec := NewExecutor(testMarket(t), nil, nil)
	acct := account.New("carol", decimal.NewFromFloat(5000.0))

	// notional == cash is allowed
	if _, err := exec.Execute(acct, "ABC", 50, domain.SideBuy); err != nil {
		t.Fatalf("buy at exact balance failed: %v", err)
	}
	if !acct.CashBalance().Equal(decimal.Zero) {
		t.Errorf("cash = %s, want 0", acct.CashBalance())
	}
}

func TestExecutor_UnknownInstrument(t *testing.T) {
	exec := NewExecutor(testMarket(t), nil, nil)
	acct := account.New("alice", decimal.NewFromFloat(10000.0))

	_, err := exec.Execute(acct, "ZZZ", 1, domain.SideBuy)
	if !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Fatalf("Execute = %v, want ErrUnknownInstrument", err)
	}
	if !acct.CashBalance().Equal(decimal.NewFromFloat(10000.0)) {
		t.Error("cash changed on unknown instrument")
	}
	if len(acct.History()) != 0 {
		t.Error("history grew on unknown instrument")
	}
}

func TestExecutor_InvalidQuantity(t *testing.T) {
	exec := NewExecutor(testMarket(t), nil, nil)
	acct := account.New("alice", decimal.NewFromFloat(10000.0))

	for _, qty := range []int64{0, -1, -50} {
		_, err := exec.Execute(acct, "ABC", qty, domain.SideBuy)
		if !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Errorf("Execute(qty=%d) = %v, want ErrInvalidQuantity", qty, err)
		}
	}
}

func TestExecutor_InvalidSide(t *testing.T) {
	exec := NewExecutor(testMarket(t), nil, nil)
	acct := account.New("alice", decimal.NewFromFloat(10000.0))

	_, err := exec.Execute(acct, "ABC", 1, domain.Side("HOLD"))
	if !errors.Is(err, domain.ErrInvalidSide) {
		t.Fatalf("Execute = %v, want ErrInvalidSide", err)
	}
}

func TestExecutor_ExecutionPriceIsSnapshot(t *testing.T) {
	reg := testMarket(t)
	exec := NewExecutor(reg, nil, nil)
	acct := account.New("alice", decimal.NewFromFloat(10000.0))

	order, err := exec.Execute(acct, "ABC", 10, domain.SideBuy)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	reg.Tick()

	// The recorded order keeps the price at execution time even after
	// the market moves on.
	if !order.Price.Equal(decimal.NewFromFloat(100.0)) {
		t.Errorf("order price = %s, want the 100.0 snapshot", order.Price)
	}
	if !acct.History()[0].Price.Equal(decimal.NewFromFloat(100.0)) {
		t.Error("history order price drifted after tick")
	}
}

type recordingJournal struct {
	mu    sync.Mutex
	fills []domain.Order
}

func (j *recordingJournal) AppendFill(accountName string, order domain.Order) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fills = append(j.fills, order)
	return nil
}

func TestExecutor_JournalAndMetrics(t *testing.T) {
	journal := &recordingJournal{}
	metrics := &infra.Metrics{}
	exec := NewExecutor(testMarket(t), journal, metrics)
	acct := account.New("alice", decimal.NewFromFloat(10000.0))

	if _, err := exec.Execute(acct, "ABC", 10, domain.SideBuy); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if _, err := exec.Execute(acct, "ZZZ", 1, domain.SideBuy); err == nil {
		t.Fatal("expected rejection for unknown instrument")
	}

	if len(journal.fills) != 1 {
		t.Errorf("journal fills = %d, want 1 (rejections are not journaled)", len(journal.fills))
	}

	snap := metrics.Snapshot()
	if snap.OrdersFilled != 1 {
		t.Errorf("OrdersFilled = %d, want 1", snap.OrdersFilled)
	}
	if snap.OrdersRejected != 1 {
		t.Errorf("OrdersRejected = %d, want 1", snap.OrdersRejected)
	}
}

func TestExecutor_ConcurrentOrdersConserveValue(t *testing.T) {
	exec := NewExecutor(testMarket(t), nil, nil)
	acct := account.New("alice", decimal.NewFromFloat(1000.0))

	// 1000 cash covers exactly two BUY 5 @ 100 orders. Whatever the
	// interleaving, successes and rejections must sum consistently.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = exec.Execute(acct, "ABC", 5, domain.SideBuy)
		}()
	}
	wg.Wait()

	filled := len(acct.History())
	if filled != 2 {
		t.Fatalf("filled = %d, want exactly 2", filled)
	}
	if !acct.CashBalance().Equal(decimal.Zero) {
		t.Errorf("cash = %s, want 0", acct.CashBalance())
	}
	if got := acct.ShareBalance("ABC"); got != 10 {
		t.Errorf("holdings = %d, want 10", got)
	}
}
