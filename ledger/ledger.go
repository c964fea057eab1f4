// Package ledger defines the asset transfer collaborator used by the
// pricing engine. Transfers are atomic: they either fully succeed or
// leave both balances untouched.
package ledger

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientBalance is returned when the sender cannot cover a transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount is returned for nil, zero or negative transfer amounts.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Ledger tracks fungible asset balances per holder.
type Ledger interface {
	// Transfer moves amount of asset from one holder to another.
	Transfer(ctx context.Context, asset, from, to common.Address, amount *big.Int) error

	// BalanceOf returns the holder's balance of asset.
	BalanceOf(ctx context.Context, asset, holder common.Address) (*big.Int, error)
}
