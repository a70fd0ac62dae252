// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pooledstaking

import (
	"math/big"

	"github.com/covermutual/sentinel/builtin/registry"
	"github.com/covermutual/sentinel/sentinel"
)

// DepositAndStake moves amount into the pool and records the caller's
// stake allocation. The contracts array must repeat all previously staked
// contracts in their established order; stakes may only grow, each one is
// capped by the deposit, and the total is capped by deposit times the max
// exposure factor. Member-only, pause-gated, blocked while pending
// actions exist.
func (p *PooledStaking) DepositAndStake(caller sentinel.Address, amount *big.Int, contracts []sentinel.Address, stakes []*big.Int) error {
	return p.revertable(func() error {
		if err := p.requireNotPaused(); err != nil {
			return err
		}
		isMember, err := p.registry.IsMember(caller)
		if err != nil {
			return err
		}
		if !isMember {
			return ErrNotMember
		}
		pending, err := p.hasPendingActions()
		if err != nil {
			return err
		}
		if pending {
			return ErrPendingActions
		}
		if amount.Sign() < 0 {
			return ErrInvalidAmount
		}
		if len(contracts) != len(stakes) {
			return ErrInvalidArrayLength
		}
		for i := range contracts {
			for j := i + 1; j < len(contracts); j++ {
				if contracts[i] == contracts[j] {
					return ErrDuplicateContract
				}
			}
		}

		staker, err := p.getStaker(caller)
		if err != nil {
			return err
		}
		// previously staked contracts must reappear, in canonical order
		if len(contracts) < len(staker.Contracts) {
			return ErrFewerContracts
		}
		for i, prev := range staker.Contracts {
			if contracts[i] != prev {
				return ErrContractOrderMismatch
			}
		}

		newDeposit := new(big.Int).Add(staker.Deposit, amount)
		exposure, err := p.maxExposure()
		if err != nil {
			return err
		}
		maxTotal := new(big.Int).Mul(newDeposit, new(big.Int).SetUint64(exposure))

		total := new(big.Int)
		for i, contract := range contracts {
			stake := stakes[i]
			if stake.Sign() < 0 {
				return ErrInvalidAmount
			}
			prev, err := p.getStake(caller, contract)
			if err != nil {
				return err
			}
			if stake.Cmp(prev) < 0 {
				return ErrStakeDecrease
			}
			if stake.Cmp(newDeposit) > 0 {
				return ErrStakeExceedsDeposit
			}
			total.Add(total, stake)
		}
		if total.Cmp(maxTotal) > 0 {
			return ErrExposureExceeded
		}

		if amount.Sign() > 0 {
			if err := p.token.Transfer(caller, p.addr, amount); err != nil {
				return err
			}
			p.events.Emit("Deposited", caller, amount)
			metricDeposited().Add(gaugeValue(amount))
		}

		for i, contract := range contracts {
			stake := stakes[i]
			prev, err := p.getStake(caller, contract)
			if err != nil {
				return err
			}
			if stake.Cmp(prev) == 0 {
				continue
			}
			aggregate, err := p.getContractStaked(contract)
			if err != nil {
				return err
			}
			aggregate = new(big.Int).Add(aggregate, new(big.Int).Sub(stake, prev))
			if err := p.setContractStaked(contract, aggregate); err != nil {
				return err
			}
			if err := p.setStake(caller, contract, stake); err != nil {
				return err
			}
			if prev.Sign() == 0 {
				if err := p.joinContract(contract, caller); err != nil {
					return err
				}
			}
			p.events.Emit("Staked", contract, caller, stake)
		}

		staker.Deposit = newDeposit
		staker.Contracts = contracts
		return p.setStaker(caller, staker)
	})
}

// joinContract adds the staker to the contract's staker list, without
// duplication when rejoining after a prune.
func (p *PooledStaking) joinContract(contract, staker sentinel.Address) error {
	list, err := p.contractStakers.Get(contract)
	if err != nil {
		return err
	}
	for _, s := range list {
		if s == staker {
			return nil
		}
	}
	return p.contractStakers.Set(contract, append(list, staker))
}

// Withdraw returns part of the caller's deposit not needed to cover any
// single contract stake. Pause-gated, blocked while pending actions
// exist.
func (p *PooledStaking) Withdraw(caller sentinel.Address, amount *big.Int) error {
	return p.revertable(func() error {
		if err := p.requireNotPaused(); err != nil {
			return err
		}
		pending, err := p.hasPendingActions()
		if err != nil {
			return err
		}
		if pending {
			return ErrPendingActions
		}
		staker, err := p.getStaker(caller)
		if err != nil {
			return err
		}
		maxStake := new(big.Int)
		for _, contract := range staker.Contracts {
			stake, err := p.getStake(caller, contract)
			if err != nil {
				return err
			}
			if stake.Cmp(maxStake) > 0 {
				maxStake = stake
			}
		}
		withdrawable := new(big.Int).Sub(staker.Deposit, maxStake)
		if amount.Sign() <= 0 || amount.Cmp(withdrawable) > 0 {
			return ErrInvalidAmount
		}
		staker.Deposit = new(big.Int).Sub(staker.Deposit, amount)
		if err := p.setStaker(caller, staker); err != nil {
			return err
		}
		if err := p.token.Transfer(p.addr, caller, amount); err != nil {
			return err
		}
		p.events.Emit("Withdrawn", caller, amount)
		metricDeposited().Add(-gaugeValue(amount))
		return nil
	})
}

// onlyInternal gates the burn and reward push paths.
func (p *PooledStaking) onlyInternal(caller sentinel.Address) error {
	ok, err := p.registry.HasRole(caller, registry.RoleInternal)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOnlyInternal
	}
	return nil
}
