package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stock_sim/internal/event"
	"stock_sim/internal/infra"
	"stock_sim/internal/market"
)

// MarketService drives the price simulation and fans market snapshots out
// to subscribers. One Run loop owns the tick cadence; subscribers receive
// a PriceEvent per tick on their own buffered channel. Slow consumers
// drop updates rather than stall the loop.
type MarketService struct {
	mu       sync.RWMutex
	registry *market.Registry
	subs     map[chan event.PriceEvent]struct{}
	interval time.Duration
	metrics  *infra.Metrics // may be nil
}

// NewMarketService creates a service over the given registry, ticking at
// the given interval.
func NewMarketService(registry *market.Registry, interval time.Duration, metrics *infra.Metrics) *MarketService {
	return &MarketService{
		registry: registry,
		subs:     make(map[chan event.PriceEvent]struct{}),
		interval: interval,
		metrics:  metrics,
	}
}

// Registry exposes the underlying instrument registry.
func (s *MarketService) Registry() *market.Registry {
	return s.registry
}

// Subscribe returns a channel that receives one PriceEvent per tick.
// The caller must Unsubscribe when done.
func (s *MarketService) Subscribe() chan event.PriceEvent {
	ch := make(chan event.PriceEvent, 16)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (s *MarketService) Unsubscribe(ch chan event.PriceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}

// Tick advances the market by one step and broadcasts the snapshot.
// Exposed separately from Run so a host can step the simulation manually.
func (s *MarketService) Tick() {
	s.registry.Tick()
	if s.metrics != nil {
		s.metrics.RecordTick()
	}
	s.broadcast()
}

// Run ticks the market at the configured interval until ctx is done.
func (s *MarketService) Run(ctx context.Context) {
	slog.Info("market simulation started",
		slog.Duration("interval", s.interval),
		slog.Int("instruments", s.registry.Len()))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("market simulation stopping")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

func (s *MarketService) broadcast() {
	ev := event.PriceEvent{
		Quotes: s.registry.Snapshot(),
		Ts:     time.Now().UnixMilli(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber buffer full: drop this update for them.
		}
	}
}
