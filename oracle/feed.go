package oracle

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Quote is one price observation from a feed: the raw integer price,
// the fixed-decimal convention it is expressed in (typically 8) and the
// feed's report time.
type Quote struct {
	Price     *big.Int
	Decimals  uint8
	Timestamp time.Time
}

// PriceFeed reports the most recent quote for an asset. Implementations
// do not retry; callers own retry semantics.
type PriceFeed interface {
	LatestQuote(ctx context.Context, asset common.Address) (*Quote, error)
}

// StaticFeed is a PriceFeed with a fixed, settable price per asset.
// Used for tests and offline operation.
type StaticFeed struct {
	mu       sync.RWMutex
	decimals uint8
	prices   map[common.Address]*big.Int
}

// NewStaticFeed creates a StaticFeed reporting the given decimal convention.
func NewStaticFeed(decimals uint8) *StaticFeed {
	return &StaticFeed{
		decimals: decimals,
		prices:   make(map[common.Address]*big.Int),
	}
}

// SetPrice fixes the price reported for asset.
func (f *StaticFeed) SetPrice(asset common.Address, price *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[asset] = new(big.Int).Set(price)
}

// LatestQuote returns the configured price for asset.
func (f *StaticFeed) LatestQuote(ctx context.Context, asset common.Address) (*Quote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	price, ok := f.prices[asset]
	if !ok {
		return nil, ErrPriceFeedNotFound
	}
	return &Quote{
		Price:     new(big.Int).Set(price),
		Decimals:  f.decimals,
		Timestamp: time.Now(),
	}, nil
}
