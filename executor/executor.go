// Package executor implements the atomic cross-venue arbitrage state machine:
// borrow working capital from a credit facility, route it through two venues,
// verify a surplus, and repay principal plus premium inside one
// all-or-nothing unit of work.
package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/michaelpento.lv/arbx/asset"
	"github.com/michaelpento.lv/arbx/credit"
	"github.com/michaelpento.lv/arbx/events"
	"github.com/michaelpento.lv/arbx/venue"
)

// Route fixes the two-hop path and the borrowed notional for one executor.
type Route struct {
	Venue1    venue.Venue
	Venue2    venue.Venue
	Principal common.Address
	Bridge    common.Address

	// BorrowAmount is the fixed notional advanced per execution.
	BorrowAmount *big.Int

	// Hop1MinOutBps and Hop2MinOutBps set a per-hop output floor as a
	// tolerance below the venue's own quote, in basis points. Zero disables
	// the floor and accepts any output, leaving the final profit check as
	// the only safety net.
	Hop1MinOutBps uint16
	Hop2MinOutBps uint16

	// DeadlineBuffer is added to the current time to form each swap's
	// deadline. Zero passes the current instant.
	DeadlineBuffer time.Duration
}

// Executor orchestrates one fixed arbitrage route.
type Executor struct {
	addr     common.Address
	owner    common.Address
	route    Route
	lender   credit.Lender
	ledger   *asset.Ledger
	recorder *events.Recorder
	limiter  *rate.Limiter
	logger   *zap.Logger
	metrics  *executorMetrics
}

// New creates an executor for the given route. limiter may be nil to disable
// trigger throttling.
func New(addr, owner common.Address, route Route, lender credit.Lender, ledger *asset.Ledger,
	recorder *events.Recorder, limiter *rate.Limiter, logger *zap.Logger) (*Executor, error) {

	if lender == nil {
		return nil, fmt.Errorf("lender cannot be nil")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger cannot be nil")
	}
	if recorder == nil {
		return nil, fmt.Errorf("recorder cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if route.Venue1 == nil || route.Venue2 == nil {
		return nil, fmt.Errorf("route requires two venues")
	}
	if route.Principal == route.Bridge {
		return nil, fmt.Errorf("principal and bridge assets must differ")
	}
	if route.BorrowAmount == nil || route.BorrowAmount.Sign() <= 0 {
		return nil, fmt.Errorf("invalid borrow amount")
	}

	return &Executor{
		addr:     addr,
		owner:    owner,
		route:    route,
		lender:   lender,
		ledger:   ledger,
		recorder: recorder,
		limiter:  limiter,
		logger:   logger,
		metrics:  newExecutorMetrics(),
	}, nil
}

// Address returns the executor's on-ledger handle.
func (e *Executor) Address() common.Address {
	return e.addr
}

// Metrics returns the executor's collectors for registration.
func (e *Executor) Metrics() prometheus.Collector {
	return e.metrics
}

// Initiate triggers one arbitrage execution. Only the owner may call it. The
// call is synchronous: it returns once the whole advance-swap-repay sequence
// has settled, or with the error that discarded it.
func (e *Executor) Initiate(ctx context.Context, caller common.Address) error {
	if caller != e.owner {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller.Hex())
	}
	if e.limiter != nil && !e.limiter.Allow() {
		e.metrics.failures.WithLabelValues("throttled").Inc()
		return ErrThrottled
	}

	start := time.Now()
	e.metrics.executions.Inc()
	defer func() {
		e.metrics.executionLatency.Observe(time.Since(start).Seconds())
		e.metrics.updateSuccessRate()
	}()

	err := e.lender.Advance(ctx, e, e.route.Principal, e.route.BorrowAmount, nil, 0)
	if err != nil {
		e.metrics.failures.WithLabelValues(failureReason(err)).Inc()
		return err
	}

	e.metrics.successes.Inc()
	return nil
}

// OnLoanAdvanced runs the two-hop route against the advanced capital. Invoked
// by the credit facility inside the unit of work opened by Initiate.
func (e *Executor) OnLoanAdvanced(ctx context.Context, caller, token common.Address, amount, premium *big.Int,
	initiator common.Address, data []byte) error {

	if caller != e.lender.Address() {
		return fmt.Errorf("caller %s is not the credit facility", caller.Hex())
	}
	if token != e.route.Principal {
		return fmt.Errorf("unexpected asset %s, route borrows %s", token.Hex(), e.route.Principal.Hex())
	}

	// Captured after the advance landed, so it includes the borrowed amount.
	balanceBefore := e.ledger.BalanceOf(e.route.Principal, e.addr)

	bridgeAmount, err := e.swap(ctx, e.route.Venue1, e.route.Principal, e.route.Bridge, amount, e.route.Hop1MinOutBps)
	if err != nil {
		return fmt.Errorf("hop 1 on %s: %w", e.route.Venue1.Name(), err)
	}

	// The entire intermediate output feeds hop 2, so no bridge-asset balance
	// is ever stranded on this executor.
	principalReturned, err := e.swap(ctx, e.route.Venue2, e.route.Bridge, e.route.Principal, bridgeAmount, e.route.Hop2MinOutBps)
	if err != nil {
		return fmt.Errorf("hop 2 on %s: %w", e.route.Venue2.Name(), err)
	}

	balanceAfter := e.ledger.BalanceOf(e.route.Principal, e.addr)
	if balanceAfter.Cmp(balanceBefore) <= 0 {
		return fmt.Errorf("%w: balance %s -> %s", ErrUnprofitable, balanceBefore, balanceAfter)
	}

	profit := new(big.Int).Sub(balanceAfter, balanceBefore)
	executedAt := time.Now()
	e.recorder.Emit(events.ArbitrageExecuted{Profit: profit, Timestamp: executedAt})

	repayment := new(big.Int).Add(amount, premium)
	if err := e.ledger.Approve(e.route.Principal, e.addr, caller, repayment); err != nil {
		return fmt.Errorf("%w: facility repayment: %s", ErrApprovalFailed, err)
	}

	e.metrics.profitVolume.Add(bigFloat(profit))
	e.recorder.RecordExecution(events.ExecutionRecord{
		Asset:     token,
		Borrowed:  new(big.Int).Set(amount),
		Premium:   new(big.Int).Set(premium),
		Profit:    profit,
		Timestamp: executedAt,
	})

	e.logger.Info("Arbitrage executed",
		zap.String("borrowed", amount.String()),
		zap.String("premium", premium.String()),
		zap.String("returned", principalReturned.String()),
		zap.String("profit", profit.String()))
	return nil
}

// swap grants the venue an exact-amount allowance, executes the hop, and
// emits a SwapExecuted event. An unspent allowance is reset to zero if the
// venue rejects the swap.
func (e *Executor) swap(ctx context.Context, v venue.Venue, tokenIn, tokenOut common.Address,
	amountIn *big.Int, minOutBps uint16) (*big.Int, error) {

	if err := e.ledger.Approve(tokenIn, e.addr, v.Address(), amountIn); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrApprovalFailed, err)
	}

	minAmountOut := new(big.Int)
	if minOutBps > 0 {
		floor, err := e.quoteFloor(ctx, v, tokenIn, tokenOut, amountIn, minOutBps)
		if err != nil {
			return nil, err
		}
		minAmountOut = floor
	}

	deadline := time.Now().Add(e.route.DeadlineBuffer)
	path := []common.Address{tokenIn, tokenOut}
	amounts, err := v.SwapExactInput(ctx, e.addr, amountIn, minAmountOut, path, e.addr, deadline)
	if err != nil {
		_ = e.ledger.Approve(tokenIn, e.addr, v.Address(), new(big.Int))
		return nil, err
	}

	amountOut := amounts[len(amounts)-1]
	e.recorder.Emit(events.SwapExecuted{
		Venue:     v.Address(),
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: new(big.Int).Set(amountOut),
	})
	return amountOut, nil
}

// quoteFloor derives the hop's minimum acceptable output as the venue's own
// quote less the configured tolerance.
func (e *Executor) quoteFloor(ctx context.Context, v venue.Venue, tokenIn, tokenOut common.Address,
	amountIn *big.Int, toleranceBps uint16) (*big.Int, error) {

	amounts, err := v.Quote(ctx, amountIn, []common.Address{tokenIn, tokenOut})
	if err != nil {
		return nil, fmt.Errorf("failed to quote output floor: %w", err)
	}
	expected := amounts[len(amounts)-1]
	floor := new(big.Int).Mul(expected, big.NewInt(int64(10000-toleranceBps)))
	return floor.Div(floor, big.NewInt(10000)), nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrUnprofitable):
		return "unprofitable"
	case errors.Is(err, ErrApprovalFailed):
		return "approval"
	case errors.Is(err, credit.ErrInsufficientRepayment):
		return "repayment"
	case errors.Is(err, credit.ErrInsufficientLiquidity):
		return "liquidity"
	default:
		return "venue"
	}
}

func bigFloat(x *big.Int) float64 {
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}
