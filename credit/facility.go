package credit

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/michaelpento.lv/arbx/asset"
	"github.com/michaelpento.lv/arbx/uow"
)

var (
	// ErrInsufficientLiquidity is returned when the facility cannot cover an advance.
	ErrInsufficientLiquidity = errors.New("insufficient facility liquidity")

	// ErrInsufficientRepayment is returned when the post-callback pull of
	// principal plus premium fails.
	ErrInsufficientRepayment = errors.New("insufficient repayment")
)

// Facility is an in-memory credit facility holding its liquidity on the
// shared ledger. Every advance runs inside the configured unit-of-work scope:
// if the borrower's callback fails, or the repayment pull comes up short, all
// state changes made since the advance are discarded.
type Facility struct {
	addr       common.Address
	ledger     *asset.Ledger
	scope      *uow.Scope
	premiumBps uint16
	logger     *zap.Logger
}

// NewFacility creates a facility charging premiumBps on each advance.
func NewFacility(addr common.Address, ledger *asset.Ledger, scope *uow.Scope, premiumBps uint16, logger *zap.Logger) *Facility {
	return &Facility{
		addr:       addr,
		ledger:     ledger,
		scope:      scope,
		premiumBps: premiumBps,
		logger:     logger,
	}
}

// Address returns the facility's on-ledger handle.
func (f *Facility) Address() common.Address {
	return f.addr
}

// PremiumFor returns the flat fee owed on an advance of amount.
func (f *Facility) PremiumFor(amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return new(big.Int)
	}
	premium := new(big.Int).Mul(amount, big.NewInt(int64(f.premiumBps)))
	return premium.Div(premium, big.NewInt(10000))
}

// Liquidity returns the facility's available balance of token.
func (f *Facility) Liquidity(token common.Address) *big.Int {
	return f.ledger.BalanceOf(token, f.addr)
}

// Advance lends amount of token to the borrower and settles atomically.
func (f *Facility) Advance(ctx context.Context, borrower Borrower, token common.Address, amount *big.Int,
	data []byte, referralCode uint16) error {

	if borrower == nil {
		return fmt.Errorf("nil borrower")
	}
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("invalid advance amount")
	}

	liquidity := f.ledger.BalanceOf(token, f.addr)
	if liquidity.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientLiquidity, liquidity, amount)
	}

	premium := f.PremiumFor(amount)
	repayment := new(big.Int).Add(amount, premium)

	err := f.scope.Run(func() error {
		if err := f.ledger.Transfer(token, f.addr, borrower.Address(), amount); err != nil {
			return fmt.Errorf("failed to advance principal: %w", err)
		}

		if err := borrower.OnLoanAdvanced(ctx, f.addr, token, amount, premium, borrower.Address(), data); err != nil {
			return err
		}

		if err := f.ledger.TransferFrom(token, f.addr, borrower.Address(), f.addr, repayment); err != nil {
			return fmt.Errorf("%w: %s", ErrInsufficientRepayment, err)
		}
		return nil
	})
	if err != nil {
		f.logger.Warn("Advance discarded",
			zap.String("token", token.Hex()),
			zap.String("amount", amount.String()),
			zap.Error(err))
		return err
	}

	f.logger.Info("Advance settled",
		zap.String("token", token.Hex()),
		zap.String("amount", amount.String()),
		zap.String("premium", premium.String()))
	return nil
}
