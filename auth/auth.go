// Package auth provides the access-control collaborator gating
// administrative operations such as price feed rebinding.
package auth

import (
	"github.com/ethereum/go-ethereum/common"
)

// Authority answers ownership checks for administrative calls.
type Authority interface {
	IsOwner(caller common.Address) bool
}

// StaticOwners is an Authority backed by a fixed owner set.
type StaticOwners struct {
	owners map[common.Address]struct{}
}

// NewStaticOwners builds an Authority from a list of owner addresses.
func NewStaticOwners(owners ...common.Address) *StaticOwners {
	set := make(map[common.Address]struct{}, len(owners))
	for _, owner := range owners {
		set[owner] = struct{}{}
	}
	return &StaticOwners{owners: set}
}

// IsOwner reports whether caller is in the owner set.
func (s *StaticOwners) IsOwner(caller common.Address) bool {
	_, ok := s.owners[caller]
	return ok
}
