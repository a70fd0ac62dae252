// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the protocol token ledger. Balances live in
// account state; supply bookkeeping and governance vote locks live in the
// engine's own storage.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/covermutual/sentinel/builtin/reverts"
	"github.com/covermutual/sentinel/builtin/sstore"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

var (
	slotTotalSupply = sentinel.BytesToBytes32([]byte("total-supply"))
	slotTotalBurned = sentinel.BytesToBytes32([]byte("total-burned"))
	slotVoteLocks   = sentinel.BytesToBytes32([]byte("vote-locks"))
)

// ErrInsufficientBalance the debited account holds less than the amount.
var ErrInsufficientBalance = reverts.New("insufficient balance")

// Token implements the token ledger.
type Token struct {
	addr        sentinel.Address
	state       *state.State
	totalSupply *sstore.Uint256
	totalBurned *sstore.Uint256
	voteLocks   *sstore.Mapping[sentinel.Address, uint64]
}

// New creates an instance bound to the given engine address.
func New(addr sentinel.Address, state *state.State) *Token {
	context := sstore.NewContext(addr, state)
	return &Token{
		addr:        addr,
		state:       state,
		totalSupply: sstore.NewUint256(context, slotTotalSupply),
		totalBurned: sstore.NewUint256(context, slotTotalBurned),
		voteLocks:   sstore.NewMapping[sentinel.Address, uint64](context, slotVoteLocks),
	}
}

// Get returns the balance of addr.
func (t *Token) Get(addr sentinel.Address) (*big.Int, error) {
	return t.state.GetBalance(addr)
}

// TotalSupply returns the amount of tokens ever minted, net of burns.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

// TotalBurned returns the amount of tokens ever burned.
func (t *Token) TotalBurned() (*big.Int, error) {
	return t.totalBurned.Get()
}

// Mint credits addr and grows total supply.
func (t *Token) Mint(addr sentinel.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	balance, err := t.state.GetBalance(addr)
	if err != nil {
		return errors.Wrap(err, "failed to get balance")
	}
	if err := t.state.SetBalance(addr, new(big.Int).Add(balance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return t.totalSupply.Add(amount)
}

// Burn debits addr, shrinks total supply and grows the burn counter.
func (t *Token) Burn(addr sentinel.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := t.sub(addr, amount); err != nil {
		return err
	}
	if err := t.totalSupply.Sub(amount); err != nil {
		return err
	}
	return t.totalBurned.Add(amount)
}

// Transfer moves amount from sender to recipient.
func (t *Token) Transfer(sender, recipient sentinel.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := t.sub(sender, amount); err != nil {
		return err
	}
	balance, err := t.state.GetBalance(recipient)
	if err != nil {
		return errors.Wrap(err, "failed to get balance")
	}
	if err := t.state.SetBalance(recipient, new(big.Int).Add(balance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

func (t *Token) sub(addr sentinel.Address, amount *big.Int) error {
	balance, err := t.state.GetBalance(addr)
	if err != nil {
		return errors.Wrap(err, "failed to get balance")
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := t.state.SetBalance(addr, new(big.Int).Sub(balance, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

// LockForVoting extends addr's governance lock to the given time. An
// earlier expiry is never shortened.
func (t *Token) LockForVoting(addr sentinel.Address, until uint64) error {
	current, err := t.voteLocks.Get(addr)
	if err != nil {
		return errors.Wrap(err, "failed to get vote lock")
	}
	if until <= current {
		return nil
	}
	return t.voteLocks.Set(addr, until)
}

// LockedUntil returns the expiry of addr's governance lock, zero when none.
func (t *Token) LockedUntil(addr sentinel.Address) (uint64, error) {
	until, err := t.voteLocks.Get(addr)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get vote lock")
	}
	return until, nil
}

// IsLocked reports whether addr's tokens are still governance-locked at now.
func (t *Token) IsLocked(addr sentinel.Address, now uint64) (bool, error) {
	until, err := t.LockedUntil(addr)
	if err != nil {
		return false, err
	}
	return until > now, nil
}
