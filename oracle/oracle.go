// Package oracle binds assets to external price feeds and performs
// decimal-safe conversion between 18-decimal token amounts and
// USD-denominated values expressed in the feed's decimal convention.
package oracle

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/basinlabs/baseswap/auth"
	bigmath "github.com/basinlabs/baseswap/utils/math"
	"github.com/basinlabs/baseswap/utils/metrics"
)

// Token amounts are pre-scaled down by 1e10 before multiplying by the
// price, so amounts below 1e10 wei convert to zero. Consumers depend on
// the exact truncated values, so the order of operations is fixed.
var preScale = bigmath.Pow10(10)

// Adapter resolves per-asset feed bindings and converts amounts.
// Bindings are unconditional overwrites gated by the access-control
// collaborator; no history is kept.
type Adapter struct {
	log     *zap.Logger
	metrics *metrics.OracleMetrics
	auth    auth.Authority

	mu       sync.RWMutex
	feeds    map[common.Address]PriceFeed
	baseFeed PriceFeed
}

// AdapterConfig carries the Adapter's collaborators.
type AdapterConfig struct {
	// Authority gates SetPriceFeed and UpdateBasePriceFeed.
	Authority auth.Authority
	// Logger is optional; a no-op logger is used when nil.
	Logger *zap.Logger
	// Metrics is optional.
	Metrics *metrics.OracleMetrics
}

// NewAdapter creates an Adapter with no bindings.
func NewAdapter(cfg AdapterConfig) (*Adapter, error) {
	if cfg.Authority == nil {
		return nil, fmt.Errorf("authority is required")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Adapter{
		log:     log,
		metrics: cfg.Metrics,
		auth:    cfg.Authority,
		feeds:   make(map[common.Address]PriceFeed),
	}, nil
}

// SetPriceFeed binds (or rebinds) the feed consulted for asset.
func (a *Adapter) SetPriceFeed(caller, asset common.Address, feed PriceFeed) error {
	if !a.auth.IsOwner(caller) {
		return fmt.Errorf("%w: %s is not an owner", ErrUnauthorized, caller.Hex())
	}
	if asset == (common.Address{}) || feed == nil {
		return fmt.Errorf("%w: zero asset or nil feed", ErrInvalidArgument)
	}

	a.mu.Lock()
	a.feeds[asset] = feed
	a.mu.Unlock()

	a.log.Info("price feed bound", zap.String("asset", asset.Hex()))
	return nil
}

// UpdateBasePriceFeed binds the dedicated settlement-asset/USD feed.
func (a *Adapter) UpdateBasePriceFeed(caller common.Address, feed PriceFeed) error {
	if !a.auth.IsOwner(caller) {
		return fmt.Errorf("%w: %s is not an owner", ErrUnauthorized, caller.Hex())
	}
	if feed == nil {
		return fmt.Errorf("%w: nil feed", ErrInvalidArgument)
	}

	a.mu.Lock()
	a.baseFeed = feed
	a.mu.Unlock()

	a.log.Info("base price feed bound")
	return nil
}

// GetLatestPrice returns the most recent quote for asset.
func (a *Adapter) GetLatestPrice(ctx context.Context, asset common.Address) (*Quote, error) {
	a.mu.RLock()
	feed, ok := a.feeds[asset]
	a.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPriceFeedNotFound, asset.Hex())
	}
	return a.fetch(ctx, feed, asset)
}

// GetLatestBasePrice returns the most recent settlement-asset/USD quote.
func (a *Adapter) GetLatestBasePrice(ctx context.Context) (*Quote, error) {
	a.mu.RLock()
	feed := a.baseFeed
	a.mu.RUnlock()
	if feed == nil {
		return nil, fmt.Errorf("%w: base feed unbound", ErrPriceFeedNotFound)
	}
	return a.fetch(ctx, feed, common.Address{})
}

// GetPriceFeedDecimals returns the decimal convention the bound feed reports.
func (a *Adapter) GetPriceFeedDecimals(ctx context.Context, asset common.Address) (uint8, error) {
	quote, err := a.GetLatestPrice(ctx, asset)
	if err != nil {
		return 0, err
	}
	return quote.Decimals, nil
}

// ConvertTokenToUSD values an 18-decimal token amount in USD, expressed
// in the feed's decimal convention. The amount is scaled down by 1e10
// before the multiply, then the product is divided by 10^decimals; all
// divisions truncate.
func (a *Adapter) ConvertTokenToUSD(ctx context.Context, asset common.Address, amount *big.Int) (usd *big.Int, err error) {
	start := time.Now()
	defer func() { a.observeConvert(start) }()

	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: amount must be non-negative", ErrInvalidArgument)
	}

	quote, err := a.GetLatestPrice(ctx, asset)
	if err != nil {
		return nil, err
	}

	scaled := new(big.Int).Div(amount, preScale)
	usd = scaled.Mul(scaled, quote.Price)
	usd.Div(usd, bigmath.Pow10(int(quote.Decimals)))
	return usd, nil
}

// ConvertUSDToToken is the inverse: a USD amount in the feed's decimal
// convention becomes an 18-decimal token amount.
func (a *Adapter) ConvertUSDToToken(ctx context.Context, asset common.Address, usdAmount *big.Int) (amount *big.Int, err error) {
	start := time.Now()
	defer func() { a.observeConvert(start) }()

	if usdAmount == nil || usdAmount.Sign() < 0 {
		return nil, fmt.Errorf("%w: amount must be non-negative", ErrInvalidArgument)
	}

	quote, err := a.GetLatestPrice(ctx, asset)
	if err != nil {
		return nil, err
	}

	amount = new(big.Int).Mul(usdAmount, bigmath.Pow10(int(quote.Decimals)))
	amount.Mul(amount, preScale)
	amount.Div(amount, quote.Price)
	return amount, nil
}

func (a *Adapter) fetch(ctx context.Context, feed PriceFeed, asset common.Address) (*Quote, error) {
	if a.metrics != nil {
		a.metrics.Requests.Inc()
	}

	quote, err := feed.LatestQuote(ctx, asset)
	if err != nil {
		if a.metrics != nil {
			a.metrics.Errors.Inc()
		}
		return nil, err
	}
	if quote.Price == nil || quote.Price.Sign() <= 0 {
		if a.metrics != nil {
			a.metrics.Errors.Inc()
		}
		return nil, fmt.Errorf("%w: feed reported %v", ErrInvalidPrice, quote.Price)
	}
	return quote, nil
}

func (a *Adapter) observeConvert(start time.Time) {
	if a.metrics != nil {
		a.metrics.ConvertLatency.Observe(time.Since(start).Seconds())
	}
}

