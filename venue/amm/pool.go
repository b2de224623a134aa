package amm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/michaelpento.lv/arbx/asset"
)

// Pool is a two-token constant-product venue. Reserves are the pool's own
// balances on the shared ledger, so unit-of-work rollback of the ledger
// reverts the pool as well.
type Pool struct {
	name   string
	addr   common.Address
	token0 common.Address
	token1 common.Address
	ledger *asset.Ledger
	feeBps uint16
}

// LP fee charged on the input amount, in basis points. 30 matches the
// standard V2-style 0.3%.
const DefaultFeeBps = 30

// NewPool creates a pool for the token0/token1 pair. Reserves are seeded by
// minting to the pool address on the ledger.
func NewPool(name string, addr, token0, token1 common.Address, ledger *asset.Ledger) *Pool {
	return &Pool{
		name:   name,
		addr:   addr,
		token0: token0,
		token1: token1,
		ledger: ledger,
		feeBps: DefaultFeeBps,
	}
}

// Name returns the venue name.
func (p *Pool) Name() string {
	return p.name
}

// Address returns the pool's on-ledger handle.
func (p *Pool) Address() common.Address {
	return p.addr
}

// Reserves returns the current reserves of tokenIn and tokenOut.
func (p *Pool) Reserves(tokenIn, tokenOut common.Address) (*big.Int, *big.Int, error) {
	if err := p.checkPair(tokenIn, tokenOut); err != nil {
		return nil, nil, err
	}
	return p.ledger.BalanceOf(tokenIn, p.addr), p.ledger.BalanceOf(tokenOut, p.addr), nil
}

// Quote simulates a swap along path without moving funds.
func (p *Pool) Quote(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	if len(path) != 2 {
		return nil, fmt.Errorf("invalid path length %d", len(path))
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("invalid input amount")
	}

	reserveIn, reserveOut, err := p.Reserves(path[0], path[1])
	if err != nil {
		return nil, err
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, fmt.Errorf("insufficient liquidity in %s", p.name)
	}

	out := p.getAmountOut(amountIn, reserveIn, reserveOut)
	return []*big.Int{new(big.Int).Set(amountIn), out}, nil
}

// SwapExactInput pulls amountIn from caller through its allowance, pays the
// constant-product output to recipient, and returns the realized amounts.
func (p *Pool) SwapExactInput(ctx context.Context, caller common.Address, amountIn, minAmountOut *big.Int,
	path []common.Address, recipient common.Address, deadline time.Time) ([]*big.Int, error) {

	// Deadline is compared at second granularity, matching venue conventions
	// where the bound is a timestamp.
	if !deadline.IsZero() && time.Now().Unix() > deadline.Unix() {
		return nil, fmt.Errorf("swap deadline expired on %s", p.name)
	}

	amounts, err := p.Quote(ctx, amountIn, path)
	if err != nil {
		return nil, err
	}
	out := amounts[len(amounts)-1]

	if minAmountOut != nil && out.Cmp(minAmountOut) < 0 {
		return nil, fmt.Errorf("output %s below minimum %s on %s", out, minAmountOut, p.name)
	}

	if err := p.ledger.TransferFrom(path[0], p.addr, caller, p.addr, amountIn); err != nil {
		return nil, fmt.Errorf("failed to pull input: %w", err)
	}
	if err := p.ledger.Transfer(path[1], p.addr, recipient, out); err != nil {
		return nil, fmt.Errorf("failed to pay output: %w", err)
	}

	return amounts, nil
}

// getAmountOut calculates output for an input amount using x*y=k with the LP
// fee taken on the input.
func (p *Pool) getAmountOut(amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	feeNumerator := big.NewInt(int64(10000 - p.feeBps))
	amountInWithFee := new(big.Int).Mul(amountIn, feeNumerator)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Add(
		new(big.Int).Mul(reserveIn, big.NewInt(10000)),
		amountInWithFee,
	)
	return new(big.Int).Div(numerator, denominator)
}

func (p *Pool) checkPair(tokenIn, tokenOut common.Address) error {
	if tokenIn == tokenOut {
		return fmt.Errorf("identical tokens in path")
	}
	if (tokenIn != p.token0 && tokenIn != p.token1) || (tokenOut != p.token0 && tokenOut != p.token1) {
		return fmt.Errorf("pair not supported by %s", p.name)
	}
	return nil
}
