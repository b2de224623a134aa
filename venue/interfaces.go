package venue

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Venue represents a price venue offering quotes and exact-input swaps.
type Venue interface {
	// Name returns the venue name
	Name() string

	// Address returns the venue's on-ledger handle
	Address() common.Address

	// Quote simulates a swap along path and returns the amounts at each hop,
	// starting with amountIn. Read-only.
	Quote(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)

	// SwapExactInput executes a swap of exactly amountIn along path on behalf
	// of caller, paying the output to recipient. The venue pulls the input
	// through a previously granted allowance. Fails if the realized output is
	// below minAmountOut or the deadline has passed.
	SwapExactInput(ctx context.Context, caller common.Address, amountIn, minAmountOut *big.Int,
		path []common.Address, recipient common.Address, deadline time.Time) ([]*big.Int, error)
}
