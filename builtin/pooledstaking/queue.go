// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pooledstaking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/covermutual/sentinel/sentinel"
)

// PushBurn queues a burn against a contract. Only one burn may be pending
// at a time; the amount is capped at the contract's aggregate stake.
// Restricted to internal engines and pause-gated.
func (p *PooledStaking) PushBurn(caller sentinel.Address, contract sentinel.Address, amount *big.Int, now uint64) error {
	return p.revertable(func() error {
		if err := p.requireNotPaused(); err != nil {
			return err
		}
		if err := p.onlyInternal(caller); err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		pending, err := p.hasPendingActions()
		if err != nil {
			return err
		}
		if pending {
			return ErrBurnPending
		}
		staked, err := p.getContractStaked(contract)
		if err != nil {
			return err
		}
		capped := new(big.Int).Set(amount)
		if capped.Cmp(staked) > 0 {
			capped.Set(staked)
		}
		if err := p.burn.Set(&pendingBurn{
			Contract:     contract,
			Amount:       capped,
			InitialStake: new(big.Int).Set(staked),
			BurnedAt:     now,
			Pending:      true,
		}); err != nil {
			return errors.Wrap(err, "failed to set pending burn")
		}
		p.events.Emit("BurnRequested", contract, capped)
		return nil
	})
}

// AccumulateReward adds to a contract's accrued reward without queueing a
// distribution yet. Restricted to internal engines and pause-gated.
func (p *PooledStaking) AccumulateReward(caller sentinel.Address, contract sentinel.Address, amount *big.Int) error {
	return p.revertable(func() error {
		if err := p.requireNotPaused(); err != nil {
			return err
		}
		if err := p.onlyInternal(caller); err != nil {
			return err
		}
		if amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		acc, err := p.accumulated.Get(contract)
		if err != nil {
			return errors.Wrap(err, "failed to get accumulated reward")
		}
		if acc == nil {
			acc = new(big.Int)
		}
		if err := p.accumulated.Set(contract, new(big.Int).Add(acc, amount)); err != nil {
			return errors.Wrap(err, "failed to set accumulated reward")
		}
		p.events.Emit("RewardRequested", contract, amount)
		return nil
	})
}

// PushRewards moves each contract's accrued reward into the FIFO
// distribution queue and mints the reward funds to the pool. Contracts
// with nothing accrued are skipped. Open to anyone, pause-gated.
func (p *PooledStaking) PushRewards(contracts []sentinel.Address) error {
	return p.revertable(func() error {
		if err := p.requireNotPaused(); err != nil {
			return err
		}
		for _, contract := range contracts {
			acc, err := p.accumulated.Get(contract)
			if err != nil {
				return errors.Wrap(err, "failed to get accumulated reward")
			}
			if acc == nil || acc.Sign() == 0 {
				continue
			}
			if err := p.accumulated.Delete(contract); err != nil {
				return errors.Wrap(err, "failed to clear accumulated reward")
			}
			if err := p.token.Mint(p.addr, acc); err != nil {
				return err
			}
			last, err := p.rewardLast.Get()
			if err != nil {
				return err
			}
			if err := p.rewardQueue.Set(index(last), &pendingReward{
				Contract:     contract,
				Amount:       acc,
				InitialStake: new(big.Int),
			}); err != nil {
				return errors.Wrap(err, "failed to queue reward")
			}
			p.rewardLast.Set(last + 1)
		}
		return nil
	})
}

// RequestUnstake queues stake reductions for the caller's contracts. Each
// request matures after the governed lock time. insertAfter names the
// queued request to insert behind (zero for the queue head) and must keep
// the queue ordered by maturity. Pause-gated.
func (p *PooledStaking) RequestUnstake(caller sentinel.Address, contracts []sentinel.Address, amounts []*big.Int, insertAfter uint64, now uint64) error {
	return p.revertable(func() error {
		if err := p.requireNotPaused(); err != nil {
			return err
		}
		if len(contracts) != len(amounts) {
			return ErrInvalidArrayLength
		}
		if len(contracts) == 0 {
			return ErrInvalidAmount
		}
		lockTime, err := p.unstakeLockTime()
		if err != nil {
			return err
		}
		unstakeAt := now + lockTime

		prevID := insertAfter
		var nextID uint64
		if prevID == 0 {
			nextID, err = p.requestHead.Get()
			if err != nil {
				return err
			}
		} else {
			prev, err := p.requests.Get(index(prevID))
			if err != nil {
				return errors.Wrap(err, "failed to get unstake request")
			}
			if prev.IsEmpty() || prev.UnstakeAt > unstakeAt {
				return ErrInvalidInsertPosition
			}
			nextID = prev.Next
		}
		if nextID != 0 {
			next, err := p.requests.Get(index(nextID))
			if err != nil {
				return errors.Wrap(err, "failed to get unstake request")
			}
			if next.UnstakeAt < unstakeAt {
				return ErrInvalidInsertPosition
			}
		}

		for i, contract := range contracts {
			amount := amounts[i]
			stake, err := p.getStake(caller, contract)
			if err != nil {
				return err
			}
			if amount.Sign() <= 0 || amount.Cmp(stake) > 0 {
				return ErrInvalidAmount
			}
			id, err := p.requestCounter.Next()
			if err != nil {
				return err
			}
			if err := p.requests.Set(index(id), &unstakeRequest{
				Staker:    caller,
				Contract:  contract,
				Amount:    amount,
				UnstakeAt: unstakeAt,
				Next:      nextID,
			}); err != nil {
				return errors.Wrap(err, "failed to set unstake request")
			}
			if err := p.linkRequest(prevID, id, nextID); err != nil {
				return err
			}
			p.events.Emit("UnstakeRequested", contract, caller, amount, unstakeAt)
			prevID = id
		}
		return nil
	})
}

// linkRequest splices id between prevID and nextID, maintaining the head
// and tail pointers.
func (p *PooledStaking) linkRequest(prevID, id, nextID uint64) error {
	if prevID == 0 {
		p.requestHead.Set(id)
	} else {
		prev, err := p.requests.Get(index(prevID))
		if err != nil {
			return errors.Wrap(err, "failed to get unstake request")
		}
		prev.Next = id
		if err := p.requests.Set(index(prevID), prev); err != nil {
			return errors.Wrap(err, "failed to set unstake request")
		}
	}
	if nextID == 0 {
		p.requestTail.Set(id)
	}
	return nil
}

// UnstakeRequestOf returns a queued request by id; the zero value when
// unknown or already executed.
func (p *PooledStaking) UnstakeRequestOf(id uint64) (staker, contract sentinel.Address, amount *big.Int, unstakeAt uint64, err error) {
	r, err := p.requests.Get(index(id))
	if err != nil {
		return sentinel.Address{}, sentinel.Address{}, nil, 0, errors.Wrap(err, "failed to get unstake request")
	}
	amount = r.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	return r.Staker, r.Contract, amount, r.UnstakeAt, nil
}

// HasPendingBurn reports whether a burn awaits processing.
func (p *PooledStaking) HasPendingBurn() (bool, error) {
	b, err := p.burn.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get pending burn")
	}
	return b.Pending, nil
}
