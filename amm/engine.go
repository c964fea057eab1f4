// Package amm implements a constant-product market maker over pairs of
// an arbitrary fungible asset and a single settlement ("base") asset.
// All arithmetic uses arbitrary-precision integers with truncating
// division; every mutating operation is atomic against its pair.
package amm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/basinlabs/baseswap/ledger"
	bigmath "github.com/basinlabs/baseswap/utils/math"
	"github.com/basinlabs/baseswap/utils/metrics"
)

// Swap fee is 0.3%: 997/1000 of the input participates in the product formula.
const (
	feeNumerator   = 997
	feeDenominator = 1000
)

// Engine owns the pair registry, liquidity accounting and swap pricing.
// Reserves are held under the engine's own ledger account; each pair is
// guarded by an exclusive lock so a quote and its reserve update form
// one indivisible step.
type Engine struct {
	log     *zap.Logger
	metrics *metrics.EngineMetrics
	ledger  ledger.Ledger
	account common.Address
	base    common.Address

	mu    sync.RWMutex
	pairs map[common.Address]*pair
}

// EngineConfig carries the collaborators an Engine needs.
type EngineConfig struct {
	// Ledger settles all asset movement.
	Ledger ledger.Ledger
	// Account is the engine's own ledger account holding the reserves.
	Account common.Address
	// Base is the settlement asset identifier.
	Base common.Address
	// Logger is optional; a no-op logger is used when nil.
	Logger *zap.Logger
	// Metrics is optional.
	Metrics *metrics.EngineMetrics
}

// NewEngine creates an Engine with an empty pair registry.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if cfg.Account == (common.Address{}) {
		return nil, fmt.Errorf("engine account is required")
	}
	if cfg.Base == (common.Address{}) {
		return nil, fmt.Errorf("base asset is required")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		log:     log,
		metrics: cfg.Metrics,
		ledger:  cfg.Ledger,
		account: cfg.Account,
		base:    cfg.Base,
		pairs:   make(map[common.Address]*pair),
	}, nil
}

// BaseAsset returns the settlement asset identifier.
func (e *Engine) BaseAsset() common.Address {
	return e.base
}

// Account returns the ledger account holding the reserves.
func (e *Engine) Account() common.Address {
	return e.account
}

// PairExists reports whether a pair has been created for asset.
func (e *Engine) PairExists(asset common.Address) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.pairs[asset]
	return ok
}

// GetLiquidity returns copies of the pair's two reserves.
func (e *Engine) GetLiquidity(asset common.Address) (assetReserve, baseReserve *big.Int, err error) {
	p, err := e.lookup(asset)
	if err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return bigmath.Clone(p.assetReserve), bigmath.Clone(p.baseReserve), nil
}

// GetExchangeRate returns assetReserve * 1e18 / baseReserve, truncated.
func (e *Engine) GetExchangeRate(asset common.Address) (*big.Int, error) {
	p, err := e.lookup(asset)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.baseReserve.Sign() == 0 {
		return nil, fmt.Errorf("%w: base reserve is zero", ErrInsufficientLiquidity)
	}

	rate := new(big.Int).Mul(p.assetReserve, bigmath.RateScale)
	return rate.Div(rate, p.baseReserve), nil
}

// TotalShares returns the pair's total minted liquidity shares.
func (e *Engine) TotalShares(asset common.Address) (*big.Int, error) {
	p, err := e.lookup(asset)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return bigmath.Clone(p.totalShares), nil
}

// SharesOf returns the provider's share balance for the pair.
func (e *Engine) SharesOf(asset, provider common.Address) (*big.Int, error) {
	p, err := e.lookup(asset)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return bigmath.Clone(p.shares[provider]), nil
}

func (e *Engine) lookup(asset common.Address) (*pair, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.pairs[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPairNotFound, asset.Hex())
	}
	return p, nil
}

// pull moves amount of asset from the caller into the engine account.
func (e *Engine) pull(ctx context.Context, asset, from common.Address, amount *big.Int) error {
	if err := e.ledger.Transfer(ctx, asset, from, e.account, amount); err != nil {
		e.countTransferFailure()
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

// push moves amount of asset from the engine account to the caller.
func (e *Engine) push(ctx context.Context, asset, to common.Address, amount *big.Int) error {
	if err := e.ledger.Transfer(ctx, asset, e.account, to, amount); err != nil {
		e.countTransferFailure()
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}

// refund returns previously pulled funds to the caller. Failures are
// logged: at this point the operation has already failed and the ledger
// itself is misbehaving.
func (e *Engine) refund(ctx context.Context, asset, to common.Address, amount *big.Int) {
	if err := e.ledger.Transfer(ctx, asset, e.account, to, amount); err != nil {
		e.log.Error("refund transfer failed",
			zap.String("asset", asset.Hex()),
			zap.String("to", to.Hex()),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
	}
}

func (e *Engine) countTransferFailure() {
	if e.metrics != nil {
		e.metrics.TransferFailures.Inc()
	}
}

func (e *Engine) recordOperation(success bool) {
	if e.metrics != nil {
		e.metrics.RecordOperation(success)
	}
}

func validAddress(addr common.Address) bool {
	return addr != (common.Address{})
}

