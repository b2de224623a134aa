package credit

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Borrower receives an uncollateralized advance and must leave the facility
// an allowance covering principal plus premium before the callback returns.
type Borrower interface {
	// Address returns the borrower's on-ledger handle.
	Address() common.Address

	// OnLoanAdvanced is invoked exactly once per advance, after the principal
	// has landed in the borrower's balance. caller is the facility's handle.
	OnLoanAdvanced(ctx context.Context, caller, token common.Address, amount, premium *big.Int,
		initiator common.Address, data []byte) error
}

// Lender advances temporary capital with repayment-or-abort semantics.
type Lender interface {
	// Address returns the lender's on-ledger handle.
	Address() common.Address

	// Advance lends amount of token to the borrower, runs its callback, and
	// pulls back amount plus premium. Any failure discards the entire unit of
	// work, including the advance itself.
	Advance(ctx context.Context, borrower Borrower, token common.Address, amount *big.Int,
		data []byte, referralCode uint16) error

	// PremiumFor returns the fee owed on top of an advance of amount.
	PremiumFor(amount *big.Int) *big.Int
}
