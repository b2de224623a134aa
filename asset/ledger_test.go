package asset

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	token  = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	token2 = common.HexToAddress("0x00000000000000000000000000000000000000B1")
	alice  = common.HexToAddress("0x0000000000000000000000000000000000000001")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000002")
	carol  = common.HexToAddress("0x0000000000000000000000000000000000000003")
)

func TestTransfer(t *testing.T) {
	ledger := NewLedger()
	ledger.Mint(token, alice, big.NewInt(100))

	require.NoError(t, ledger.Transfer(token, alice, bob, big.NewInt(40)))
	assert.Equal(t, big.NewInt(60), ledger.BalanceOf(token, alice))
	assert.Equal(t, big.NewInt(40), ledger.BalanceOf(token, bob))

	err := ledger.Transfer(token, alice, bob, big.NewInt(1000))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, big.NewInt(60), ledger.BalanceOf(token, alice))
}

func TestApproveAndTransferFrom(t *testing.T) {
	ledger := NewLedger()
	ledger.Mint(token, alice, big.NewInt(100))

	require.NoError(t, ledger.Approve(token, alice, bob, big.NewInt(50)))
	assert.Equal(t, big.NewInt(50), ledger.Allowance(token, alice, bob))

	require.NoError(t, ledger.TransferFrom(token, bob, alice, carol, big.NewInt(30)))
	assert.Equal(t, big.NewInt(70), ledger.BalanceOf(token, alice))
	assert.Equal(t, big.NewInt(30), ledger.BalanceOf(token, carol))
	assert.Equal(t, big.NewInt(20), ledger.Allowance(token, alice, bob))

	// Exceeding the remaining allowance fails.
	err := ledger.TransferFrom(token, bob, alice, carol, big.NewInt(21))
	require.ErrorIs(t, err, ErrInsufficientAllowance)

	// Approve replaces rather than accumulates.
	require.NoError(t, ledger.Approve(token, alice, bob, big.NewInt(5)))
	assert.Equal(t, big.NewInt(5), ledger.Allowance(token, alice, bob))
}

func TestTransferFromRequiresBalance(t *testing.T) {
	ledger := NewLedger()
	ledger.Mint(token, alice, big.NewInt(10))
	require.NoError(t, ledger.Approve(token, alice, bob, big.NewInt(100)))

	err := ledger.TransferFrom(token, bob, alice, carol, big.NewInt(50))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Allowance is untouched when the balance check fails.
	assert.Equal(t, big.NewInt(100), ledger.Allowance(token, alice, bob))
}

func TestBalanceOfReturnsCopy(t *testing.T) {
	ledger := NewLedger()
	ledger.Mint(token, alice, big.NewInt(100))

	bal := ledger.BalanceOf(token, alice)
	bal.SetInt64(0)
	assert.Equal(t, big.NewInt(100), ledger.BalanceOf(token, alice))
}

func TestSnapshotRestore(t *testing.T) {
	ledger := NewLedger()
	ledger.Mint(token, alice, big.NewInt(100))
	ledger.Mint(token2, bob, big.NewInt(7))
	require.NoError(t, ledger.Approve(token, alice, bob, big.NewInt(50)))

	snap := ledger.Snapshot()

	require.NoError(t, ledger.Transfer(token, alice, bob, big.NewInt(100)))
	require.NoError(t, ledger.TransferFrom(token, bob, alice, carol, big.NewInt(0)))
	require.NoError(t, ledger.Approve(token, alice, bob, big.NewInt(0)))
	ledger.Mint(token2, carol, big.NewInt(99))

	ledger.Restore(snap)

	assert.Equal(t, big.NewInt(100), ledger.BalanceOf(token, alice))
	assert.Equal(t, 0, ledger.BalanceOf(token, bob).Sign())
	assert.Equal(t, big.NewInt(7), ledger.BalanceOf(token2, bob))
	assert.Equal(t, 0, ledger.BalanceOf(token2, carol).Sign())
	assert.Equal(t, big.NewInt(50), ledger.Allowance(token, alice, bob))
}
