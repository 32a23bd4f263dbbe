package app

import (
	"log/slog"

	"stock_sim/internal/infra"
	"stock_sim/internal/infra/storage"
	"stock_sim/internal/market"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config   *infra.Config
	Store    *storage.Store
	Registry *market.Registry
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, wires the logger, opens storage and
// seeds the instrument registry.
func (b *Bootstrap) Initialize(configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("bootstrapping",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version))

	store, err := storage.NewStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("database initialized", slog.String("path", cfg.Storage.Path))

	model := market.NewRandomWalk(cfg.Market.MaxMovePct, cfg.Market.PriceFloor, cfg.Market.Seed)
	registry := market.NewRegistry(model)
	for _, seed := range cfg.Market.Instruments {
		if err := registry.Register(seed.Symbol, seed.Price); err != nil {
			return err
		}
		if err := store.UpsertInstrument(seed.Symbol, seed.Price); err != nil {
			slog.Warn("catalog upsert failed", slog.String("symbol", seed.Symbol), slog.Any("error", err))
		}
	}
	b.Registry = registry
	slog.Info("registry seeded", slog.Int("instruments", registry.Len()))

	return nil
}

// SyncCatalog writes the current prices into the instrument catalog.
// Called at shutdown so the catalog reflects the last simulated state.
func (b *Bootstrap) SyncCatalog() {
	for _, q := range b.Registry.Snapshot() {
		if err := b.Store.UpsertInstrument(q.Symbol, q.Price); err != nil {
			slog.Warn("catalog sync failed", slog.String("symbol", q.Symbol), slog.Any("error", err))
		}
	}
}
