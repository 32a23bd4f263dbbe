package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InstrumentSeed is one instrument registered at startup.
type InstrumentSeed struct {
	Symbol string          `yaml:"symbol"`
	Price  decimal.Decimal `yaml:"price"`
}

// Config holds all application settings. After LoadConfig, selected values
// can be overridden through environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		Instruments    []InstrumentSeed `yaml:"instruments"`
		TickIntervalMS int              `yaml:"tick_interval_ms"`
		MaxMovePct     float64          `yaml:"max_move_pct"`
		PriceFloor     decimal.Decimal  `yaml:"price_floor"`
		Seed           int64            `yaml:"seed"` // 0 = time-seeded
	} `yaml:"market"`

	Feed struct {
		ListenAddr  string          `yaml:"listen_addr"`
		SessionCash decimal.Decimal `yaml:"session_cash"`
	} `yaml:"feed"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if len(c.Market.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	seen := make(map[string]bool)
	for _, inst := range c.Market.Instruments {
		if inst.Symbol == "" {
			return fmt.Errorf("instrument symbol must not be empty")
		}
		if seen[inst.Symbol] {
			return fmt.Errorf("duplicate instrument in config: %s", inst.Symbol)
		}
		seen[inst.Symbol] = true
		if !inst.Price.IsPositive() {
			return fmt.Errorf("instrument %s: initial price must be positive", inst.Symbol)
		}
	}

	if c.Market.TickIntervalMS <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.Market.MaxMovePct <= 0 || c.Market.MaxMovePct >= 1 {
		return fmt.Errorf("max move pct must be in (0, 1)")
	}
	if !c.Market.PriceFloor.IsPositive() {
		return fmt.Errorf("price floor must be positive")
	}

	if c.Feed.ListenAddr == "" {
		return fmt.Errorf("feed listen address is required")
	}
	if !c.Feed.SessionCash.IsPositive() {
		return fmt.Errorf("session cash must be positive")
	}

	return nil
}

// overrideWithEnv applies environment overrides where present.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("STOCKSIM_FEED_ADDR"); addr != "" {
		cfg.Feed.ListenAddr = addr
	}
	if path := os.Getenv("STOCKSIM_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if level := os.Getenv("STOCKSIM_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
