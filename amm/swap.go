package amm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/basinlabs/baseswap/types"
	bigmath "github.com/basinlabs/baseswap/utils/math"
)

// swapOutput computes the constant-product output with the 0.3% fee
// deducted from the input side. Every division truncates toward zero.
// The intermediate products are held in arbitrary precision, so two
// 1e18-scale operands cannot overflow.
func swapOutput(amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	amountInWithFee := new(big.Int).Mul(amountIn, big.NewInt(feeNumerator))
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Add(
		new(big.Int).Mul(reserveIn, big.NewInt(feeDenominator)),
		amountInWithFee,
	)
	return numerator.Div(numerator, denominator)
}

// GetAssetOutForBase quotes the asset amount a swap of baseIn would
// yield against the current reserves. The result is numerically
// identical to what SwapBaseForAsset would pay out.
func (e *Engine) GetAssetOutForBase(asset common.Address, baseIn *big.Int) (*big.Int, error) {
	if !bigmath.IsPositive(baseIn) {
		return nil, fmt.Errorf("%w: input must be positive", ErrInvalidArgument)
	}

	p, err := e.lookup(asset)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.assetReserve.Sign() == 0 || p.baseReserve.Sign() == 0 {
		return nil, fmt.Errorf("%w: pair is drained", ErrInsufficientLiquidity)
	}
	return swapOutput(baseIn, p.baseReserve, p.assetReserve), nil
}

// GetBaseOutForAsset quotes the base amount a swap of assetIn would
// yield against the current reserves.
func (e *Engine) GetBaseOutForAsset(asset common.Address, assetIn *big.Int) (*big.Int, error) {
	if !bigmath.IsPositive(assetIn) {
		return nil, fmt.Errorf("%w: input must be positive", ErrInvalidArgument)
	}

	p, err := e.lookup(asset)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.assetReserve.Sign() == 0 || p.baseReserve.Sign() == 0 {
		return nil, fmt.Errorf("%w: pair is drained", ErrInsufficientLiquidity)
	}
	return swapOutput(assetIn, p.assetReserve, p.baseReserve), nil
}

// SwapBaseForAsset spends baseIn of the settlement asset and pays out
// the constant-product amount of the paired asset. The swap fails with
// ErrSlippageExceeded, leaving state unchanged, when the output falls
// below minAssetOut.
func (e *Engine) SwapBaseForAsset(ctx context.Context, caller, asset common.Address, baseIn, minAssetOut *big.Int) (*big.Int, error) {
	return e.swap(ctx, caller, asset, types.BaseToAsset, baseIn, minAssetOut)
}

// SwapAssetForBase spends assetIn of the paired asset and pays out the
// constant-product amount of the settlement asset.
func (e *Engine) SwapAssetForBase(ctx context.Context, caller, asset common.Address, assetIn, minBaseOut *big.Int) (*big.Int, error) {
	return e.swap(ctx, caller, asset, types.AssetToBase, assetIn, minBaseOut)
}

func (e *Engine) swap(ctx context.Context, caller, asset common.Address, direction types.SwapDirection, amountIn, minOut *big.Int) (amountOut *big.Int, err error) {
	start := time.Now()
	defer func() {
		e.recordOperation(err == nil)
		if e.metrics != nil {
			e.metrics.SwapLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				e.metrics.SwapFailures.Inc()
			}
		}
	}()

	if !validAddress(caller) || !validAddress(asset) {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidArgument)
	}
	if !bigmath.IsPositive(amountIn) {
		return nil, fmt.Errorf("%w: input must be positive", ErrInvalidArgument)
	}
	if minOut == nil {
		minOut = new(big.Int)
	}

	p, err := e.lookup(asset)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.assetReserve.Sign() == 0 || p.baseReserve.Sign() == 0 {
		return nil, fmt.Errorf("%w: pair is drained", ErrInsufficientLiquidity)
	}

	var inAsset, outAsset common.Address
	var reserveIn, reserveOut *big.Int
	if direction == types.BaseToAsset {
		inAsset, outAsset = e.base, asset
		reserveIn, reserveOut = p.baseReserve, p.assetReserve
	} else {
		inAsset, outAsset = asset, e.base
		reserveIn, reserveOut = p.assetReserve, p.baseReserve
	}

	out := swapOutput(amountIn, reserveIn, reserveOut)
	if out.Cmp(minOut) < 0 {
		if e.metrics != nil {
			e.metrics.SlippageRejections.Inc()
		}
		return nil, fmt.Errorf("%w: output %s below minimum %s", ErrSlippageExceeded, out, minOut)
	}
	if out.Sign() == 0 {
		return nil, fmt.Errorf("%w: swap output rounds to zero", ErrInvalidArgument)
	}

	if err := e.pull(ctx, inAsset, caller, amountIn); err != nil {
		return nil, err
	}

	saved := p.snapshot(caller)
	reserveIn.Add(reserveIn, amountIn)
	reserveOut.Sub(reserveOut, out)

	if err := e.push(ctx, outAsset, caller, out); err != nil {
		p.restore(saved)
		e.refund(ctx, inAsset, caller, amountIn)
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.SwapsTotal.WithLabelValues(string(direction)).Inc()
	}
	e.log.Debug("swap executed",
		zap.String("asset", asset.Hex()),
		zap.String("direction", string(direction)),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", out.String()),
	)

	return out, nil
}
