// Package feed serves simulated market data over WebSocket and lets each
// connected session trade against its own account. The host UI renders
// whatever it receives; all validation stays in the core.
package feed

import (
	"log/slog"
	"net/http"

	"stock_sim/internal/account"
	"stock_sim/internal/engine"
	"stock_sim/internal/infra"
	"stock_sim/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Hub upgrades HTTP connections and runs one session per client. Each
// session gets a fresh account funded with the configured starting cash;
// accounts never interact, so sessions need no shared locking.
type Hub struct {
	svc         *service.MarketService
	exec        *engine.Executor
	sessionCash decimal.Decimal
	metrics     *infra.Metrics // may be nil
	upgrader    websocket.Upgrader
}

// NewHub creates a feed hub over the market service and execution engine.
func NewHub(svc *service.MarketService, exec *engine.Executor, sessionCash decimal.Decimal, metrics *infra.Metrics) *Hub {
	return &Hub{
		svc:         svc,
		exec:        exec,
		sessionCash: sessionCash,
		metrics:     metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local simulator: any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles one WebSocket client for its whole lifetime.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	name := "session-" + uuid.NewString()[:8]
	sess := newSession(conn, account.New(name, h.sessionCash), h.exec, h.svc)

	if h.metrics != nil {
		h.metrics.IncrementSessions()
		defer h.metrics.DecrementSessions()
	}
	slog.Info("feed session opened", slog.String("account", name))

	sess.run()
	slog.Info("feed session closed", slog.String("account", name))
}
