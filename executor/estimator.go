package executor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/michaelpento.lv/arbx/venue"
)

// Estimate is the predicted outcome of running the route right now.
type Estimate struct {
	// Quote1 is venue-1's quoted bridge-asset output for the borrowed amount.
	Quote1 *big.Int

	// Quote2 is venue-2's quoted principal-asset output for Quote1.
	Quote2 *big.Int

	// Fee is the facility premium owed on the borrowed amount.
	Fee *big.Int

	// Profitable reports whether Quote2 clears principal plus fee.
	Profitable bool
}

// NetProfit returns the predicted retained surplus, which is negative when
// the route is unprofitable.
func (e *Estimate) NetProfit(borrowAmount *big.Int) *big.Int {
	net := new(big.Int).Sub(e.Quote2, borrowAmount)
	return net.Sub(net, e.Fee)
}

// Estimate simulates the two-hop route with each venue's quote function and
// reports whether it would clear the facility premium. Read-only: no funds
// move and no state changes.
func (e *Executor) Estimate(ctx context.Context) (*Estimate, error) {
	quote1, err := e.quoteHop(ctx, e.route.Venue1, e.route.Principal, e.route.Bridge, e.route.BorrowAmount)
	if err != nil {
		return nil, fmt.Errorf("hop 1 quote on %s: %w", e.route.Venue1.Name(), err)
	}

	quote2, err := e.quoteHop(ctx, e.route.Venue2, e.route.Bridge, e.route.Principal, quote1)
	if err != nil {
		return nil, fmt.Errorf("hop 2 quote on %s: %w", e.route.Venue2.Name(), err)
	}

	fee := e.lender.PremiumFor(e.route.BorrowAmount)
	breakeven := new(big.Int).Add(e.route.BorrowAmount, fee)

	return &Estimate{
		Quote1:     quote1,
		Quote2:     quote2,
		Fee:        fee,
		Profitable: quote2.Cmp(breakeven) > 0,
	}, nil
}

func (e *Executor) quoteHop(ctx context.Context, v venue.Venue, tokenIn, tokenOut common.Address,
	amountIn *big.Int) (*big.Int, error) {

	amounts, err := v.Quote(ctx, amountIn, []common.Address{tokenIn, tokenOut})
	if err != nil {
		return nil, err
	}
	if len(amounts) == 0 {
		return nil, fmt.Errorf("empty quote")
	}
	return amounts[len(amounts)-1], nil
}
