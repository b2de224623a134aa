package asset

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientBalance is returned when a holder cannot cover a transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance is returned when a spender exceeds its approval.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// Ledger is an in-memory fungible-asset ledger exposing the standard
// balance/transfer/allowance surface. Tokens and holders are identified by
// address; the caller of each mutating method is passed explicitly.
type Ledger struct {
	mu         sync.RWMutex
	balances   map[common.Address]map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]map[common.Address]*big.Int
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances:   make(map[common.Address]map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]map[common.Address]*big.Int),
	}
}

// BalanceOf returns the holder's balance of token. The returned value is a copy.
func (l *Ledger) BalanceOf(token, holder common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.balance(token, holder))
}

// Mint credits amount of token to the recipient. Used to seed venue reserves
// and facility liquidity.
func (l *Ledger) Mint(token, to common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(token, to, amount)
}

// Transfer moves amount of token from the caller to the recipient.
func (l *Ledger) Transfer(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid transfer amount")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.balance(token, from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s of %s, needs %s",
			ErrInsufficientBalance, from.Hex(), bal, token.Hex(), amount)
	}
	bal.Sub(bal, amount)
	l.credit(token, to, amount)
	return nil
}

// Approve sets the spender's allowance over the owner's token balance to
// exactly amount, replacing any prior approval.
func (l *Ledger) Approve(token, owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid approval amount")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	byOwner, ok := l.allowances[token]
	if !ok {
		byOwner = make(map[common.Address]map[common.Address]*big.Int)
		l.allowances[token] = byOwner
	}
	bySpender, ok := byOwner[owner]
	if !ok {
		bySpender = make(map[common.Address]*big.Int)
		byOwner[owner] = bySpender
	}
	bySpender[spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance returns the spender's remaining approval over the owner's token
// balance. The returned value is a copy.
func (l *Ledger) Allowance(token, owner, spender common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.allowance(token, owner, spender))
}

// TransferFrom moves amount of token from the owner to the recipient on
// behalf of the spender, consuming the spender's allowance.
func (l *Ledger) TransferFrom(token, spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid transfer amount")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	allowance := l.allowance(token, from, spender)
	if allowance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s approved %s of %s, needs %s",
			ErrInsufficientAllowance, spender.Hex(), allowance, token.Hex(), amount)
	}
	bal := l.balance(token, from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s of %s, needs %s",
			ErrInsufficientBalance, from.Hex(), bal, token.Hex(), amount)
	}
	allowance.Sub(allowance, amount)
	bal.Sub(bal, amount)
	l.credit(token, to, amount)
	return nil
}

// Snapshot captures a deep copy of all balances and allowances.
func (l *Ledger) Snapshot() any {
	l.mu.RLock()
	defer l.mu.RUnlock()

	balances := make(map[common.Address]map[common.Address]*big.Int, len(l.balances))
	for token, holders := range l.balances {
		copied := make(map[common.Address]*big.Int, len(holders))
		for holder, bal := range holders {
			copied[holder] = new(big.Int).Set(bal)
		}
		balances[token] = copied
	}

	allowances := make(map[common.Address]map[common.Address]map[common.Address]*big.Int, len(l.allowances))
	for token, byOwner := range l.allowances {
		owners := make(map[common.Address]map[common.Address]*big.Int, len(byOwner))
		for owner, bySpender := range byOwner {
			spenders := make(map[common.Address]*big.Int, len(bySpender))
			for spender, amt := range bySpender {
				spenders[spender] = new(big.Int).Set(amt)
			}
			owners[owner] = spenders
		}
		allowances[token] = owners
	}

	return &ledgerSnapshot{balances: balances, allowances: allowances}
}

// Restore discards current state in favor of a previously taken snapshot.
func (l *Ledger) Restore(snapshot any) {
	snap, ok := snapshot.(*ledgerSnapshot)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = snap.balances
	l.allowances = snap.allowances
}

type ledgerSnapshot struct {
	balances   map[common.Address]map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]map[common.Address]*big.Int
}

// balance returns the live balance entry, creating it if absent. Caller holds the lock.
func (l *Ledger) balance(token, holder common.Address) *big.Int {
	holders, ok := l.balances[token]
	if !ok {
		holders = make(map[common.Address]*big.Int)
		l.balances[token] = holders
	}
	bal, ok := holders[holder]
	if !ok {
		bal = new(big.Int)
		holders[holder] = bal
	}
	return bal
}

// allowance returns the live allowance entry, creating it if absent. Caller holds the lock.
func (l *Ledger) allowance(token, owner, spender common.Address) *big.Int {
	byOwner, ok := l.allowances[token]
	if !ok {
		byOwner = make(map[common.Address]map[common.Address]*big.Int)
		l.allowances[token] = byOwner
	}
	bySpender, ok := byOwner[owner]
	if !ok {
		bySpender = make(map[common.Address]*big.Int)
		byOwner[owner] = bySpender
	}
	amt, ok := bySpender[spender]
	if !ok {
		amt = new(big.Int)
		bySpender[spender] = amt
	}
	return amt
}

func (l *Ledger) credit(token, to common.Address, amount *big.Int) {
	bal := l.balance(token, to)
	bal.Add(bal, amount)
}
