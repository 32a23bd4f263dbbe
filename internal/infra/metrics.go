package infra

import (
	"sync/atomic"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ticksApplied   atomic.Uint64
	ordersFilled   atomic.Uint64
	ordersRejected atomic.Uint64

	// Gauges
	activeSessions atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordTick records one completed price tick over the whole registry.
func (m *Metrics) RecordTick() {
	m.ticksApplied.Add(1)
}

// RecordOrderFilled records a successfully executed order.
func (m *Metrics) RecordOrderFilled() {
	m.ordersFilled.Add(1)
}

// RecordOrderRejected records an order that failed validation.
func (m *Metrics) RecordOrderRejected() {
	m.ordersRejected.Add(1)
}

// IncrementSessions increments active feed sessions by 1.
func (m *Metrics) IncrementSessions() {
	m.activeSessions.Add(1)
}

// DecrementSessions decrements active feed sessions by 1.
func (m *Metrics) DecrementSessions() {
	m.activeSessions.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TicksApplied   uint64 `json:"ticks_applied"`
	OrdersFilled   uint64 `json:"orders_filled"`
	OrdersRejected uint64 `json:"orders_rejected"`
	ActiveSessions int32  `json:"active_sessions"`
}

// Snapshot returns a consistent-enough view for logging and debugging.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TicksApplied:   m.ticksApplied.Load(),
		OrdersFilled:   m.ordersFilled.Load(),
		OrdersRejected: m.ordersRejected.Load(),
		ActiveSessions: m.activeSessions.Load(),
	}
}
