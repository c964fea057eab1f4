package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SwapDirection identifies which side of a pair is the swap input.
type SwapDirection string

const (
	// BaseToAsset spends the settlement asset and receives the paired asset.
	BaseToAsset SwapDirection = "base_to_asset"
	// AssetToBase spends the paired asset and receives the settlement asset.
	AssetToBase SwapDirection = "asset_to_base"
)

// Valid reports whether d is one of the two known directions.
func (d SwapDirection) Valid() bool {
	return d == BaseToAsset || d == AssetToBase
}

// LiquidityKind classifies a liquidity change for journaling.
type LiquidityKind string

const (
	LiquidityCreate LiquidityKind = "create"
	LiquidityAdd    LiquidityKind = "add"
	LiquidityRemove LiquidityKind = "remove"
)

// SwapEvent describes one executed swap against a pair.
type SwapEvent struct {
	Asset     common.Address
	Caller    common.Address
	Direction SwapDirection
	AmountIn  *big.Int
	AmountOut *big.Int
	Time      time.Time
}

// LiquidityEvent describes one liquidity change on a pair.
type LiquidityEvent struct {
	Asset       common.Address
	Caller      common.Address
	Kind        LiquidityKind
	AssetAmount *big.Int
	BaseAmount  *big.Int
	Shares      *big.Int
	Time        time.Time
}
