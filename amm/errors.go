package amm

import "errors"

var (
	// ErrInvalidArgument covers zero addresses, nil or non-positive
	// amounts, and inputs too small to produce any effect.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPairAlreadyExists is returned when creating a pair that exists.
	ErrPairAlreadyExists = errors.New("pair already exists")

	// ErrPairNotFound is returned for operations on an unknown pair.
	ErrPairNotFound = errors.New("pair not found")

	// ErrInsufficientLiquidity is returned when a share balance is too
	// low or a pair's reserves cannot support the operation.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrSlippageExceeded is returned when a swap's output falls below
	// the caller's minimum. The pair state is left unchanged.
	ErrSlippageExceeded = errors.New("slippage exceeded")

	// ErrTransferFailed wraps a ledger transfer failure. Bookkeeping is
	// rolled back as a unit before it is returned.
	ErrTransferFailed = errors.New("transfer failed")
)
