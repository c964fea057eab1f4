package history

import (
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basinlabs/baseswap/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	return store
}

func TestRecordSwap(t *testing.T) {
	store := openTestStore(t)
	asset := common.HexToAddress("0x1111111111111111111111111111111111111111")
	caller := common.HexToAddress("0xa11ce00000000000000000000000000000000001")

	for i := int64(1); i <= 3; i++ {
		err := store.RecordSwap(types.SwapEvent{
			Asset:     asset,
			Caller:    caller,
			Direction: types.BaseToAsset,
			AmountIn:  big.NewInt(i * 100),
			AmountOut: big.NewInt(i * 99),
			Time:      time.Now(),
		})
		require.NoError(t, err)
	}

	records, err := store.RecentSwaps(asset.Hex(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "300", records[0].AmountIn)
	assert.Equal(t, "200", records[1].AmountIn)
	assert.Equal(t, string(types.BaseToAsset), records[0].Direction)
}

func TestRecordLiquidity(t *testing.T) {
	store := openTestStore(t)
	asset := common.HexToAddress("0x2222222222222222222222222222222222222222")
	caller := common.HexToAddress("0xb0b0000000000000000000000000000000000002")

	big18, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	err := store.RecordLiquidity(types.LiquidityEvent{
		Asset:       asset,
		Caller:      caller,
		Kind:        types.LiquidityCreate,
		AssetAmount: big18,
		BaseAmount:  big.NewInt(5),
		Shares:      big18,
		Time:        time.Now(),
	})
	require.NoError(t, err)

	records, err := store.RecentLiquidity(asset.Hex(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Big integers survive the string round trip untruncated.
	assert.Equal(t, big18.String(), records[0].AssetAmount)
	assert.Equal(t, string(types.LiquidityCreate), records[0].Kind)
}

func TestRecentSwapsAcrossAssets(t *testing.T) {
	store := openTestStore(t)
	caller := common.HexToAddress("0xa11ce00000000000000000000000000000000001")

	for _, hexByte := range []byte{0x31, 0x32} {
		var asset common.Address
		asset[0] = hexByte
		err := store.RecordSwap(types.SwapEvent{
			Asset:     asset,
			Caller:    caller,
			Direction: types.AssetToBase,
			AmountIn:  big.NewInt(1),
			AmountOut: big.NewInt(1),
			Time:      time.Now(),
		})
		require.NoError(t, err)
	}

	records, err := store.RecentSwaps("", 10)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
