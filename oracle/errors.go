package oracle

import "errors"

var (
	// ErrPriceFeedNotFound is returned when no feed is bound for an asset.
	ErrPriceFeedNotFound = errors.New("price feed not found")

	// ErrInvalidPrice is returned when a feed reports a non-positive price.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrUnauthorized is returned when a non-owner attempts a binding change.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument covers zero addresses, nil feeds and negative amounts.
	ErrInvalidArgument = errors.New("invalid argument")
)
