package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type balanceKey struct {
	asset  common.Address
	holder common.Address
}

// MemoryLedger is an in-process Ledger implementation. It is the
// default collaborator when the engine runs without an external
// settlement backend.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[balanceKey]*big.Int
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[balanceKey]*big.Int),
	}
}

// Mint credits amount of asset to holder. Intended for bootstrap and tests.
func (l *MemoryLedger) Mint(asset, holder common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(asset, holder, amount)
}

// Transfer moves amount of asset between holders as a single atomic step.
func (l *MemoryLedger) Transfer(ctx context.Context, asset, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balance(asset, from)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s of %s, needs %s",
			ErrInsufficientBalance, from.Hex(), balance, asset.Hex(), amount)
	}

	balance.Sub(balance, amount)
	l.credit(asset, to, amount)
	return nil
}

// BalanceOf returns a copy of the holder's balance of asset.
func (l *MemoryLedger) BalanceOf(ctx context.Context, asset, holder common.Address) (*big.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balance(asset, holder)), nil
}

func (l *MemoryLedger) balance(asset, holder common.Address) *big.Int {
	key := balanceKey{asset: asset, holder: holder}
	if b, ok := l.balances[key]; ok {
		return b
	}
	b := new(big.Int)
	l.balances[key] = b
	return b
}

func (l *MemoryLedger) credit(asset, holder common.Address, amount *big.Int) {
	l.balance(asset, holder).Add(l.balance(asset, holder), amount)
}
