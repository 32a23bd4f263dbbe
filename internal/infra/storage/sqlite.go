// Package storage persists an append-only audit trail of fills and an
// instrument catalog to SQLite. It is write-only from the core's point of
// view: nothing in the trading state is ever restored from it.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stock_sim/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OrderRecord is one journaled fill.
type OrderRecord struct {
	ID         string          `gorm:"primaryKey" json:"id"`
	Account    string          `gorm:"index" json:"account"`
	Symbol     string          `gorm:"index" json:"symbol"`
	Side       string          `json:"side"`
	Qty        int64           `json:"qty"`
	Price      decimal.Decimal `gorm:"type:text" json:"price"`
	Notional   decimal.Decimal `gorm:"type:text" json:"notional"`
	ExecutedAt time.Time       `json:"executed_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// InstrumentInfo is one catalog row per registered symbol.
type InstrumentInfo struct {
	Symbol    string          `gorm:"primaryKey" json:"symbol"`
	LastPrice decimal.Decimal `gorm:"type:text" json:"last_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store wraps the SQLite database.
type Store struct {
	db *gorm.DB
}

// NewStore opens (or creates) the database at path and migrates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Pure Go SQLite
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&OrderRecord{}, &InstrumentInfo{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// AppendFill journals one executed order. Records are never updated or
// deleted afterward.
func (s *Store) AppendFill(accountName string, order domain.Order) error {
	rec := OrderRecord{
		ID:         order.ID,
		Account:    accountName,
		Symbol:     order.Symbol,
		Side:       string(order.Side),
		Qty:        order.Qty,
		Price:      order.Price,
		Notional:   order.Notional(),
		ExecutedAt: order.ExecutedAt,
	}
	return s.db.Create(&rec).Error
}

// Fills returns the most recent journaled fills, newest first.
func (s *Store) Fills(limit int) ([]OrderRecord, error) {
	var records []OrderRecord
	err := s.db.Order("executed_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// FillsBySymbol returns journaled fills for one symbol, newest first.
func (s *Store) FillsBySymbol(symbol string, limit int) ([]OrderRecord, error) {
	var records []OrderRecord
	err := s.db.Where("symbol = ?", symbol).
		Order("executed_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// UpsertInstrument creates or updates a catalog row with the last seen price.
func (s *Store) UpsertInstrument(symbol string, price decimal.Decimal) error {
	info := InstrumentInfo{
		Symbol:    symbol,
		LastPrice: price,
	}
	return s.db.Save(&info).Error
}

// Instruments returns the full instrument catalog.
func (s *Store) Instruments() ([]InstrumentInfo, error) {
	var infos []InstrumentInfo
	err := s.db.Find(&infos).Error
	return infos, err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
