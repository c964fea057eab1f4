package amm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	bigmath "github.com/basinlabs/baseswap/utils/math"
)

// LiquidityResult reports the amounts a liquidity operation actually
// moved and the shares it minted or burned.
type LiquidityResult struct {
	AssetAmount *big.Int
	BaseAmount  *big.Int
	Shares      *big.Int
}

// CreatePair registers a new market for asset, seeds its reserves with
// the supplied amounts and mints the initial shares to the caller. The
// initial mint equals assetAmount.
func (e *Engine) CreatePair(ctx context.Context, caller, asset common.Address, assetAmount, baseAmount *big.Int) (result *LiquidityResult, err error) {
	defer func() { e.recordOperation(err == nil) }()

	if !validAddress(caller) || !validAddress(asset) {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidArgument)
	}
	if !bigmath.IsPositive(assetAmount) || !bigmath.IsPositive(baseAmount) {
		return nil, fmt.Errorf("%w: amounts must be positive", ErrInvalidArgument)
	}
	if e.PairExists(asset) {
		return nil, fmt.Errorf("%w: %s", ErrPairAlreadyExists, asset.Hex())
	}

	// Pull both sides before the pair becomes visible so a half-funded
	// market can never be observed.
	if err := e.pull(ctx, asset, caller, assetAmount); err != nil {
		return nil, err
	}
	if err := e.pull(ctx, e.base, caller, baseAmount); err != nil {
		e.refund(ctx, asset, caller, assetAmount)
		return nil, err
	}

	e.mu.Lock()
	if _, ok := e.pairs[asset]; ok {
		e.mu.Unlock()
		e.refund(ctx, asset, caller, assetAmount)
		e.refund(ctx, e.base, caller, baseAmount)
		return nil, fmt.Errorf("%w: %s", ErrPairAlreadyExists, asset.Hex())
	}
	e.pairs[asset] = newPair(assetAmount, baseAmount, assetAmount, caller)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.PairsCreated.Inc()
		e.metrics.LiquidityOps.WithLabelValues("create").Inc()
	}
	e.log.Info("pair created",
		zap.String("asset", asset.Hex()),
		zap.String("asset_reserve", assetAmount.String()),
		zap.String("base_reserve", baseAmount.String()),
	)

	return &LiquidityResult{
		AssetAmount: new(big.Int).Set(assetAmount),
		BaseAmount:  new(big.Int).Set(baseAmount),
		Shares:      new(big.Int).Set(assetAmount),
	}, nil
}

// AddLiquidity deposits into an existing pair at its current ratio. The
// binding side is whichever offered amount is smaller relative to the
// ratio: only the ratio-matching portion of the other side is consumed,
// the rest never leaves the caller. Shares minted are proportional to
// the asset added against the pre-update reserve.
func (e *Engine) AddLiquidity(ctx context.Context, caller, asset common.Address, assetAmount, baseOffered *big.Int) (result *LiquidityResult, err error) {
	defer func() { e.recordOperation(err == nil) }()

	if !validAddress(caller) || !validAddress(asset) {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidArgument)
	}
	if !bigmath.IsPositive(assetAmount) || !bigmath.IsPositive(baseOffered) {
		return nil, fmt.Errorf("%w: amounts must be positive", ErrInvalidArgument)
	}

	p, err := e.lookup(asset)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalShares.Sign() == 0 || p.assetReserve.Sign() == 0 || p.baseReserve.Sign() == 0 {
		return nil, fmt.Errorf("%w: pair is drained", ErrInsufficientLiquidity)
	}

	baseRequired := new(big.Int).Mul(assetAmount, p.baseReserve)
	baseRequired.Div(baseRequired, p.assetReserve)

	var assetAdded, baseAdded *big.Int
	if baseOffered.Cmp(baseRequired) >= 0 {
		assetAdded = new(big.Int).Set(assetAmount)
		baseAdded = baseRequired
	} else {
		assetAdded = new(big.Int).Mul(baseOffered, p.assetReserve)
		assetAdded.Div(assetAdded, p.baseReserve)
		baseAdded = new(big.Int).Set(baseOffered)
	}

	if assetAdded.Sign() == 0 || baseAdded.Sign() == 0 {
		return nil, fmt.Errorf("%w: deposit rounds to zero", ErrInvalidArgument)
	}

	shares := new(big.Int).Mul(assetAdded, p.totalShares)
	shares.Div(shares, p.assetReserve)
	if shares.Sign() == 0 {
		return nil, fmt.Errorf("%w: deposit mints no shares", ErrInvalidArgument)
	}

	if err := e.pull(ctx, asset, caller, assetAdded); err != nil {
		return nil, err
	}
	if err := e.pull(ctx, e.base, caller, baseAdded); err != nil {
		e.refund(ctx, asset, caller, assetAdded)
		return nil, err
	}

	p.assetReserve.Add(p.assetReserve, assetAdded)
	p.baseReserve.Add(p.baseReserve, baseAdded)
	p.totalShares.Add(p.totalShares, shares)
	p.creditShares(caller, shares)

	if e.metrics != nil {
		e.metrics.LiquidityOps.WithLabelValues("add").Inc()
	}
	e.log.Debug("liquidity added",
		zap.String("asset", asset.Hex()),
		zap.String("asset_added", assetAdded.String()),
		zap.String("base_added", baseAdded.String()),
		zap.String("shares", shares.String()),
	)

	return &LiquidityResult{
		AssetAmount: assetAdded,
		BaseAmount:  baseAdded,
		Shares:      shares,
	}, nil
}

// RemoveLiquidity burns shareAmount of the caller's shares and pays out
// the proportional slice of both reserves. Bookkeeping is finalized
// before the outbound transfers; if a transfer fails the whole
// operation is rolled back.
func (e *Engine) RemoveLiquidity(ctx context.Context, caller, asset common.Address, shareAmount *big.Int) (result *LiquidityResult, err error) {
	defer func() { e.recordOperation(err == nil) }()

	if !validAddress(caller) || !validAddress(asset) {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidArgument)
	}
	if !bigmath.IsPositive(shareAmount) {
		return nil, fmt.Errorf("%w: share amount must be positive", ErrInvalidArgument)
	}

	p, err := e.lookup(asset)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalShares.Sign() == 0 {
		return nil, fmt.Errorf("%w: no shares outstanding", ErrInsufficientLiquidity)
	}
	if p.holderShares(caller).Cmp(shareAmount) < 0 {
		return nil, fmt.Errorf("%w: share balance too low", ErrInsufficientLiquidity)
	}

	assetOut := new(big.Int).Mul(shareAmount, p.assetReserve)
	assetOut.Div(assetOut, p.totalShares)
	baseOut := new(big.Int).Mul(shareAmount, p.baseReserve)
	baseOut.Div(baseOut, p.totalShares)

	saved := p.snapshot(caller)

	p.assetReserve.Sub(p.assetReserve, assetOut)
	p.baseReserve.Sub(p.baseReserve, baseOut)
	p.totalShares.Sub(p.totalShares, shareAmount)
	p.shares[caller].Sub(p.shares[caller], shareAmount)

	if assetOut.Sign() > 0 {
		if err := e.push(ctx, asset, caller, assetOut); err != nil {
			p.restore(saved)
			return nil, err
		}
	}
	if baseOut.Sign() > 0 {
		if err := e.push(ctx, e.base, caller, baseOut); err != nil {
			p.restore(saved)
			if assetOut.Sign() > 0 {
				e.reclaim(ctx, asset, caller, assetOut)
			}
			return nil, err
		}
	}

	if e.metrics != nil {
		e.metrics.LiquidityOps.WithLabelValues("remove").Inc()
	}
	e.log.Debug("liquidity removed",
		zap.String("asset", asset.Hex()),
		zap.String("asset_out", assetOut.String()),
		zap.String("base_out", baseOut.String()),
		zap.String("shares", shareAmount.String()),
	)

	return &LiquidityResult{
		AssetAmount: assetOut,
		BaseAmount:  baseOut,
		Shares:      new(big.Int).Set(shareAmount),
	}, nil
}

// reclaim pulls back an already-paid leg after a later leg failed.
func (e *Engine) reclaim(ctx context.Context, asset, from common.Address, amount *big.Int) {
	if err := e.ledger.Transfer(ctx, asset, from, e.account, amount); err != nil {
		e.log.Error("reclaim transfer failed",
			zap.String("asset", asset.Hex()),
			zap.String("from", from.Hex()),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
	}
}
