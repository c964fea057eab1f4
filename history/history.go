// Package history persists executed swaps and liquidity changes so
// front-ends can show per-market activity without replaying the engine.
package history

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/basinlabs/baseswap/types"
)

// SwapRecord is one executed swap. Amounts are stored as base-10
// strings to keep big-integer fidelity in sqlite.
type SwapRecord struct {
	ID        uint   `gorm:"primarykey"`
	Asset     string `gorm:"index"`
	Caller    string
	Direction string
	AmountIn  string
	AmountOut string
	CreatedAt time.Time
}

// LiquidityRecord is one liquidity change on a pair.
type LiquidityRecord struct {
	ID          uint   `gorm:"primarykey"`
	Asset       string `gorm:"index"`
	Caller      string
	Kind        string
	AssetAmount string
	BaseAmount  string
	Shares      string
	CreatedAt   time.Time
}

// Store journals engine activity in a sqlite database.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&SwapRecord{}, &LiquidityRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// RecordSwap appends a swap event to the journal.
func (s *Store) RecordSwap(event types.SwapEvent) error {
	record := SwapRecord{
		Asset:     event.Asset.Hex(),
		Caller:    event.Caller.Hex(),
		Direction: string(event.Direction),
		AmountIn:  event.AmountIn.String(),
		AmountOut: event.AmountOut.String(),
		CreatedAt: event.Time,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record swap: %w", err)
	}
	return nil
}

// RecordLiquidity appends a liquidity event to the journal.
func (s *Store) RecordLiquidity(event types.LiquidityEvent) error {
	record := LiquidityRecord{
		Asset:       event.Asset.Hex(),
		Caller:      event.Caller.Hex(),
		Kind:        string(event.Kind),
		AssetAmount: event.AssetAmount.String(),
		BaseAmount:  event.BaseAmount.String(),
		Shares:      event.Shares.String(),
		CreatedAt:   event.Time,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record liquidity change: %w", err)
	}
	return nil
}

// RecentSwaps returns the latest swaps for an asset, newest first. An
// empty asset returns activity across all pairs.
func (s *Store) RecentSwaps(asset string, limit int) ([]SwapRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.db.Order("id desc").Limit(limit)
	if asset != "" {
		query = query.Where("asset = ?", asset)
	}

	var records []SwapRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query swaps: %w", err)
	}
	return records, nil
}

// RecentLiquidity returns the latest liquidity changes, newest first.
func (s *Store) RecentLiquidity(asset string, limit int) ([]LiquidityRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.db.Order("id desc").Limit(limit)
	if asset != "" {
		query = query.Where("asset = ?", asset)
	}

	var records []LiquidityRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query liquidity changes: %w", err)
	}
	return records, nil
}
