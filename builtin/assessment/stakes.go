// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"math/big"

	"github.com/covermutual/sentinel/builtin/registry"
	"github.com/covermutual/sentinel/sentinel"
)

// Stake moves amount from the caller into the engine pool and credits the
// caller's collateral. Member-only and pause-gated.
func (a *Assessment) Stake(caller sentinel.Address, amount *big.Int) error {
	return a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		if err := a.requireRole(caller, registry.RoleMember, ErrNotMember); err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		if err := a.token.Transfer(caller, a.addr, amount); err != nil {
			return err
		}
		stake, err := a.getStake(caller)
		if err != nil {
			return err
		}
		stake.Amount = new(big.Int).Add(stake.Amount, amount)
		if err := a.setStake(caller, stake); err != nil {
			return err
		}
		a.events.Emit("StakeDeposited", caller, amount)
		metricStakeLocked().Add(gaugeValue(amount))
		return nil
	})
}

// Unstake withdraws amount of the caller's collateral to the given
// address. It fails while the post-vote lockup runs. A self-directed
// withdrawal is allowed even while the caller's tokens are locked for
// governance voting; redirecting elsewhere during such a lock is not.
func (a *Assessment) Unstake(caller sentinel.Address, amount *big.Int, to sentinel.Address, now uint64) error {
	return a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		return a.withdrawStake(caller, amount, to, now, true)
	})
}

// UnstakeFor withdraws on behalf of a staker. Restricted to the token
// controller and pause-gated; the post-vote lockup does not apply on this
// path.
func (a *Assessment) UnstakeFor(caller sentinel.Address, staker sentinel.Address, amount *big.Int, to sentinel.Address, now uint64) error {
	return a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		if err := a.requireRole(caller, registry.RoleTokenController, ErrOnlyTokenController); err != nil {
			return err
		}
		return a.withdrawStake(staker, amount, to, now, false)
	})
}

// UnstakeAllFor withdraws a staker's whole collateral back to the staker.
// Restricted to the token controller and pause-gated.
func (a *Assessment) UnstakeAllFor(caller sentinel.Address, staker sentinel.Address, now uint64) error {
	return a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		if err := a.requireRole(caller, registry.RoleTokenController, ErrOnlyTokenController); err != nil {
			return err
		}
		stake, err := a.getStake(staker)
		if err != nil {
			return err
		}
		if stake.Amount.Sign() == 0 {
			return nil
		}
		return a.withdrawStake(staker, stake.Amount, staker, now, false)
	})
}

func (a *Assessment) withdrawStake(staker sentinel.Address, amount *big.Int, to sentinel.Address, now uint64, enforceLockup bool) error {
	stake, err := a.getStake(staker)
	if err != nil {
		return err
	}
	if amount.Sign() <= 0 || amount.Cmp(stake.Amount) > 0 {
		return ErrInvalidAmount
	}
	if enforceLockup {
		lockup, err := a.stakeLockupPeriod()
		if err != nil {
			return err
		}
		if stake.LastVoteTimestamp != 0 && now < stake.LastVoteTimestamp+lockup {
			return ErrStakeLockedForAssessment
		}
	}
	if to != staker {
		locked, err := a.token.IsLocked(staker, now)
		if err != nil {
			return err
		}
		if locked {
			return ErrStakeLockedForGovernance
		}
	}
	stake.Amount = new(big.Int).Sub(stake.Amount, amount)
	if err := a.setStake(staker, stake); err != nil {
		return err
	}
	if err := a.token.Transfer(a.addr, to, amount); err != nil {
		return err
	}
	a.events.Emit("StakeWithdrawn", staker, to, amount)
	metricStakeLocked().Add(-gaugeValue(amount))
	return nil
}

// StakeOf returns the staker's current collateral.
func (a *Assessment) StakeOf(staker sentinel.Address) (*big.Int, error) {
	stake, err := a.getStake(staker)
	if err != nil {
		return nil, err
	}
	return stake.Amount, nil
}

// FraudCountOf returns the staker's fraud counter.
func (a *Assessment) FraudCountOf(staker sentinel.Address) (uint64, error) {
	stake, err := a.getStake(staker)
	if err != nil {
		return 0, err
	}
	return stake.FraudCount, nil
}
