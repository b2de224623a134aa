package amm

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelpento.lv/arbx/asset"
)

var (
	poolAddr = common.HexToAddress("0x0000000000000000000000000000000000000011")
	tokenA   = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	tokenB   = common.HexToAddress("0x00000000000000000000000000000000000000B1")
	tokenX   = common.HexToAddress("0x00000000000000000000000000000000000000C1")
	trader   = common.HexToAddress("0x0000000000000000000000000000000000000001")
)

func newTestPool(t *testing.T, reserveA, reserveB int64) (*Pool, *asset.Ledger) {
	t.Helper()
	ledger := asset.NewLedger()
	pool := NewPool("test-pool", poolAddr, tokenA, tokenB, ledger)
	ledger.Mint(tokenA, poolAddr, big.NewInt(reserveA))
	ledger.Mint(tokenB, poolAddr, big.NewInt(reserveB))
	return pool, ledger
}

func TestQuote(t *testing.T) {
	pool, _ := newTestPool(t, 10_000_000, 5_000_000)

	amounts, err := pool.Quote(context.Background(), big.NewInt(1_000_000), []common.Address{tokenA, tokenB})
	require.NoError(t, err)
	require.Len(t, amounts, 2)

	out := amounts[1]
	assert.True(t, out.Sign() > 0)
	// Output must be below the no-fee constant-product bound of ~454545.
	assert.True(t, out.Cmp(big.NewInt(454546)) < 0)

	t.Run("RejectsUnknownPair", func(t *testing.T) {
		_, err := pool.Quote(context.Background(), big.NewInt(1), []common.Address{tokenA, tokenX})
		require.Error(t, err)
	})

	t.Run("RejectsBadPath", func(t *testing.T) {
		_, err := pool.Quote(context.Background(), big.NewInt(1), []common.Address{tokenA})
		require.Error(t, err)
	})
}

func TestSwapExactInput(t *testing.T) {
	pool, ledger := newTestPool(t, 10_000_000, 5_000_000)
	ledger.Mint(tokenA, trader, big.NewInt(1_000_000))

	amountIn := big.NewInt(1_000_000)
	quoted, err := pool.Quote(context.Background(), amountIn, []common.Address{tokenA, tokenB})
	require.NoError(t, err)

	require.NoError(t, ledger.Approve(tokenA, trader, poolAddr, amountIn))
	deadline := time.Now().Add(time.Minute)
	amounts, err := pool.SwapExactInput(context.Background(), trader, amountIn, big.NewInt(0),
		[]common.Address{tokenA, tokenB}, trader, deadline)
	require.NoError(t, err)

	// Realized output equals the quote under unchanged reserves.
	assert.Equal(t, quoted[1], amounts[1])
	assert.Equal(t, amounts[1], ledger.BalanceOf(tokenB, trader))
	assert.Equal(t, 0, ledger.BalanceOf(tokenA, trader).Sign())
	assert.Equal(t, big.NewInt(11_000_000), ledger.BalanceOf(tokenA, poolAddr))
}

func TestSwapRequiresAllowance(t *testing.T) {
	pool, ledger := newTestPool(t, 10_000_000, 5_000_000)
	ledger.Mint(tokenA, trader, big.NewInt(1_000_000))

	_, err := pool.SwapExactInput(context.Background(), trader, big.NewInt(1_000_000), big.NewInt(0),
		[]common.Address{tokenA, tokenB}, trader, time.Now().Add(time.Minute))
	require.ErrorIs(t, err, asset.ErrInsufficientAllowance)
}

func TestSwapMinimumOutput(t *testing.T) {
	pool, ledger := newTestPool(t, 10_000_000, 5_000_000)
	ledger.Mint(tokenA, trader, big.NewInt(1_000_000))
	require.NoError(t, ledger.Approve(tokenA, trader, poolAddr, big.NewInt(1_000_000)))

	_, err := pool.SwapExactInput(context.Background(), trader, big.NewInt(1_000_000), big.NewInt(5_000_000),
		[]common.Address{tokenA, tokenB}, trader, time.Now().Add(time.Minute))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")

	// Nothing moved.
	assert.Equal(t, big.NewInt(1_000_000), ledger.BalanceOf(tokenA, trader))
}

func TestSwapDeadline(t *testing.T) {
	pool, ledger := newTestPool(t, 10_000_000, 5_000_000)
	ledger.Mint(tokenA, trader, big.NewInt(1_000_000))
	require.NoError(t, ledger.Approve(tokenA, trader, poolAddr, big.NewInt(1_000_000)))

	_, err := pool.SwapExactInput(context.Background(), trader, big.NewInt(1_000_000), big.NewInt(0),
		[]common.Address{tokenA, tokenB}, trader, time.Now().Add(-2*time.Second))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline")

	// The current instant is accepted at second granularity.
	_, err = pool.SwapExactInput(context.Background(), trader, big.NewInt(1_000_000), big.NewInt(0),
		[]common.Address{tokenA, tokenB}, trader, time.Now())
	require.NoError(t, err)
}

func TestQuoteInsufficientLiquidity(t *testing.T) {
	ledger := asset.NewLedger()
	pool := NewPool("empty", poolAddr, tokenA, tokenB, ledger)

	_, err := pool.Quote(context.Background(), big.NewInt(1), []common.Address{tokenA, tokenB})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient liquidity")
}
