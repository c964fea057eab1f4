package amm

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// pair holds one market's reserve and share state. The mutex serializes
// every operation touching the pair, so a quote computation and the
// reserve update it leads to can never interleave with another call.
// A pair is created exactly once and never removed, even when its
// reserves are fully withdrawn.
type pair struct {
	mu           sync.Mutex
	assetReserve *big.Int
	baseReserve  *big.Int
	totalShares  *big.Int
	shares       map[common.Address]*big.Int
}

func newPair(assetReserve, baseReserve, initialShares *big.Int, provider common.Address) *pair {
	return &pair{
		assetReserve: new(big.Int).Set(assetReserve),
		baseReserve:  new(big.Int).Set(baseReserve),
		totalShares:  new(big.Int).Set(initialShares),
		shares: map[common.Address]*big.Int{
			provider: new(big.Int).Set(initialShares),
		},
	}
}

// snapshot captures the mutable pair state so a failed operation can be
// rolled back as a unit. Share balances are only copied for the holder
// the operation touches.
type snapshot struct {
	assetReserve *big.Int
	baseReserve  *big.Int
	totalShares  *big.Int
	holder       common.Address
	holderShares *big.Int
}

func (p *pair) snapshot(holder common.Address) snapshot {
	s := snapshot{
		assetReserve: new(big.Int).Set(p.assetReserve),
		baseReserve:  new(big.Int).Set(p.baseReserve),
		totalShares:  new(big.Int).Set(p.totalShares),
		holder:       holder,
	}
	if balance, ok := p.shares[holder]; ok {
		s.holderShares = new(big.Int).Set(balance)
	}
	return s
}

func (p *pair) restore(s snapshot) {
	p.assetReserve.Set(s.assetReserve)
	p.baseReserve.Set(s.baseReserve)
	p.totalShares.Set(s.totalShares)
	if s.holderShares == nil {
		delete(p.shares, s.holder)
	} else {
		p.shares[s.holder] = new(big.Int).Set(s.holderShares)
	}
}

func (p *pair) creditShares(holder common.Address, amount *big.Int) {
	if balance, ok := p.shares[holder]; ok {
		balance.Add(balance, amount)
		return
	}
	p.shares[holder] = new(big.Int).Set(amount)
}

func (p *pair) holderShares(holder common.Address) *big.Int {
	if balance, ok := p.shares[holder]; ok {
		return balance
	}
	return new(big.Int)
}
