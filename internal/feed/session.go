package feed

import (
	"errors"
	"log/slog"
	"time"

	"stock_sim/internal/account"
	"stock_sim/internal/domain"
	"stock_sim/internal/engine"
	"stock_sim/internal/event"
	"stock_sim/internal/service"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// request is an inbound client message.
type request struct {
	Action string `json:"action"` // "order" | "account"
	Symbol string `json:"symbol,omitempty"`
	Qty    int64  `json:"qty,omitempty"`
	Side   string `json:"side,omitempty"`
}

// Outbound message shapes. Every message carries a "type" discriminator.
type priceMessage struct {
	Type   string         `json:"type"` // "prices"
	Quotes []domain.Quote `json:"quotes"`
	Ts     int64          `json:"ts"`
}

type fillMessage struct {
	Type  string       `json:"type"` // "fill"
	Order domain.Order `json:"order"`
}

type rejectMessage struct {
	Type   string `json:"type"` // "rejected"
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

type accountMessage struct {
	Type     string           `json:"type"` // "account"
	Account  string           `json:"account"`
	Cash     decimal.Decimal  `json:"cash"`
	Holdings map[string]int64 `json:"holdings"`
	History  []domain.Order   `json:"history"`
}

type session struct {
	conn   *websocket.Conn
	acct   *account.Account
	exec   *engine.Executor
	svc    *service.MarketService
	out    chan any
	prices chan event.PriceEvent
	done   chan struct{}
}

func newSession(conn *websocket.Conn, acct *account.Account, exec *engine.Executor, svc *service.MarketService) *session {
	return &session{
		conn: conn,
		acct: acct,
		exec: exec,
		svc:  svc,
		out:  make(chan any, 16),
		done: make(chan struct{}),
	}
}

// run blocks until the client disconnects.
func (s *session) run() {
	s.prices = s.svc.Subscribe()
	defer s.svc.Unsubscribe(s.prices)
	defer s.conn.Close()

	go s.writePump()
	defer close(s.done)

	s.out <- accountMessage{
		Type:     "account",
		Account:  s.acct.Name(),
		Cash:     s.acct.CashBalance(),
		Holdings: s.acct.Holdings(),
		History:  s.acct.History(),
	}

	s.readPump()
}

func (s *session) readPump() {
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req request
		if err := s.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("feed read failed", slog.String("account", s.acct.Name()), slog.Any("error", err))
			}
			return
		}
		s.handle(req)
	}
}

func (s *session) handle(req request) {
	switch req.Action {
	case "order":
		order, err := s.exec.Execute(s.acct, req.Symbol, req.Qty, domain.Side(req.Side))
		if err != nil {
			s.enqueue(rejectMessage{
				Type:   "rejected",
				Reason: rejectionReason(err),
				Detail: err.Error(),
			})
			return
		}
		s.enqueue(fillMessage{Type: "fill", Order: order})

	case "account":
		s.enqueue(accountMessage{
			Type:     "account",
			Account:  s.acct.Name(),
			Cash:     s.acct.CashBalance(),
			Holdings: s.acct.Holdings(),
			History:  s.acct.History(),
		})

	default:
		s.enqueue(rejectMessage{
			Type:   "rejected",
			Reason: "UNKNOWN_ACTION",
			Detail: "unknown action: " + req.Action,
		})
	}
}

func (s *session) enqueue(msg any) {
	select {
	case s.out <- msg:
	default:
		// Outbound buffer full: the client is too slow, drop the message.
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return

		case msg := <-s.out:
			if err := s.write(msg); err != nil {
				return
			}

		case ev, ok := <-s.prices:
			if !ok {
				return
			}
			if err := s.write(priceMessage{Type: "prices", Quotes: ev.Quotes, Ts: ev.Ts}); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) write(msg any) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

// rejectionReason maps a typed rejection to a stable wire code.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownInstrument):
		return "UNKNOWN_INSTRUMENT"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrInvalidSide):
		return "INVALID_SIDE"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, domain.ErrInsufficientShares):
		return "INSUFFICIENT_SHARES"
	default:
		return "REJECTED"
	}
}
