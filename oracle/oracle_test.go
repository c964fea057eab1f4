package oracle

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/basinlabs/baseswap/auth"
)

var (
	owner    = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	stranger = common.HexToAddress("0x0000000000000000000000000000000000000a02")
	tokenT   = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(AdapterConfig{
		Authority: auth.NewStaticOwners(owner),
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return adapter
}

func TestFeedBinding(t *testing.T) {
	ctx := context.Background()

	t.Run("UnboundAssetFails", func(t *testing.T) {
		adapter := newTestAdapter(t)
		_, err := adapter.GetLatestPrice(ctx, tokenT)
		assert.ErrorIs(t, err, ErrPriceFeedNotFound)

		_, err = adapter.GetLatestBasePrice(ctx)
		assert.ErrorIs(t, err, ErrPriceFeedNotFound)
	})

	t.Run("OnlyOwnerBinds", func(t *testing.T) {
		adapter := newTestAdapter(t)
		feed := NewStaticFeed(8)

		err := adapter.SetPriceFeed(stranger, tokenT, feed)
		assert.ErrorIs(t, err, ErrUnauthorized)

		err = adapter.UpdateBasePriceFeed(stranger, feed)
		assert.ErrorIs(t, err, ErrUnauthorized)

		require.NoError(t, adapter.SetPriceFeed(owner, tokenT, feed))
		require.NoError(t, adapter.UpdateBasePriceFeed(owner, feed))
	})

	t.Run("RebindTakesEffectImmediately", func(t *testing.T) {
		adapter := newTestAdapter(t)

		first := NewStaticFeed(8)
		first.SetPrice(tokenT, big.NewInt(100))
		require.NoError(t, adapter.SetPriceFeed(owner, tokenT, first))

		quote, err := adapter.GetLatestPrice(ctx, tokenT)
		require.NoError(t, err)
		assert.EqualValues(t, 100, quote.Price.Int64())

		second := NewStaticFeed(8)
		second.SetPrice(tokenT, big.NewInt(200))
		require.NoError(t, adapter.SetPriceFeed(owner, tokenT, second))

		quote, err = adapter.GetLatestPrice(ctx, tokenT)
		require.NoError(t, err)
		assert.EqualValues(t, 200, quote.Price.Int64())
	})

	t.Run("RejectsNilFeed", func(t *testing.T) {
		adapter := newTestAdapter(t)
		assert.ErrorIs(t, adapter.SetPriceFeed(owner, tokenT, nil), ErrInvalidArgument)
		assert.ErrorIs(t, adapter.UpdateBasePriceFeed(owner, nil), ErrInvalidArgument)
	})
}

func TestGetLatestPrice(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsNonPositivePrice", func(t *testing.T) {
		adapter := newTestAdapter(t)
		feed := NewStaticFeed(8)
		feed.SetPrice(tokenT, big.NewInt(0))
		require.NoError(t, adapter.SetPriceFeed(owner, tokenT, feed))

		_, err := adapter.GetLatestPrice(ctx, tokenT)
		assert.ErrorIs(t, err, ErrInvalidPrice)

		feed.SetPrice(tokenT, big.NewInt(-5))
		_, err = adapter.GetLatestPrice(ctx, tokenT)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("ReportsDecimals", func(t *testing.T) {
		adapter := newTestAdapter(t)
		feed := NewStaticFeed(8)
		feed.SetPrice(tokenT, big.NewInt(41_000_000))
		require.NoError(t, adapter.SetPriceFeed(owner, tokenT, feed))

		decimals, err := adapter.GetPriceFeedDecimals(ctx, tokenT)
		require.NoError(t, err)
		assert.EqualValues(t, 8, decimals)
	})
}

func TestConvertTokenToUSD(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter(t)

	feed := NewStaticFeed(8)
	feed.SetPrice(tokenT, big.NewInt(41_000_000)) // $0.41 in 8 decimals
	require.NoError(t, adapter.SetPriceFeed(owner, tokenT, feed))

	oneToken, _ := new(big.Int).SetString("1000000000000000000", 10)

	// floor(1e18/1e10) * 41000000 / 1e8 = 41_000_000: one token is
	// worth $0.41, reported in the feed's 8-decimal convention.
	usd, err := adapter.ConvertTokenToUSD(ctx, tokenT, oneToken)
	require.NoError(t, err)
	assert.EqualValues(t, 41_000_000, usd.Int64())

	// The 10 low-order digits are deliberately dropped before the
	// multiply: a sub-1e10 amount values to zero.
	dust := big.NewInt(9_999_999_999)
	usd, err = adapter.ConvertTokenToUSD(ctx, tokenT, dust)
	require.NoError(t, err)
	assert.Zero(t, usd.Sign())

	_, err = adapter.ConvertTokenToUSD(ctx, tokenT, big.NewInt(-1))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = adapter.ConvertTokenToUSD(ctx, stranger, oneToken)
	assert.ErrorIs(t, err, ErrPriceFeedNotFound)
}

func TestConvertUSDToToken(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter(t)

	feed := NewStaticFeed(8)
	feed.SetPrice(tokenT, big.NewInt(41_000_000))
	require.NoError(t, adapter.SetPriceFeed(owner, tokenT, feed))

	oneToken, _ := new(big.Int).SetString("1000000000000000000", 10)

	// $0.41 in 8 decimals buys exactly one token at this price.
	amount, err := adapter.ConvertUSDToToken(ctx, tokenT, big.NewInt(41_000_000))
	require.NoError(t, err)
	assert.Zero(t, amount.Cmp(oneToken))

	_, err = adapter.ConvertUSDToToken(ctx, tokenT, big.NewInt(-1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// Round trip: token -> USD -> token loses at most the pre-scale
// precision (1e10) plus one unit of price rounding.
func TestConversionRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := newTestAdapter(t)

	feed := NewStaticFeed(8)
	feed.SetPrice(tokenT, big.NewInt(4_100_000_000)) // $41
	require.NoError(t, adapter.SetPriceFeed(owner, tokenT, feed))

	amount, _ := new(big.Int).SetString("123456789012345678901", 10)

	usd, err := adapter.ConvertTokenToUSD(ctx, tokenT, amount)
	require.NoError(t, err)

	back, err := adapter.ConvertUSDToToken(ctx, tokenT, usd)
	require.NoError(t, err)

	assert.True(t, back.Cmp(amount) <= 0, "round trip must not create value")
	diff := new(big.Int).Sub(amount, back)
	bound := new(big.Int).Mul(big.NewInt(2), big.NewInt(10_000_000_000))
	assert.True(t, diff.Cmp(bound) < 0, "round trip lost %s, more than the pre-scale bound", diff)
}
