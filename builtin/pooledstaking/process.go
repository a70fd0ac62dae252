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

// budget counts down the caller-supplied iteration allowance. A zero
// maxIterations means unbounded.
type budget struct {
	remaining uint64
	unbounded bool
}

func newBudget(maxIterations uint64) *budget {
	return &budget{remaining: maxIterations, unbounded: maxIterations == 0}
}

func (b *budget) spend() bool {
	if b.unbounded {
		return true
	}
	if b.remaining == 0 {
		return false
	}
	b.remaining--
	return true
}

// ProcessPendingActions works through the queued burn, reward and due
// unstake requests in strict FIFO order, spending at most maxIterations
// staker visits (zero for unbounded). Progress cursors persist across
// calls, so an unfinished run resumes where it stopped. Pause-gated.
// Returns whether all pending work is done.
func (p *PooledStaking) ProcessPendingActions(maxIterations uint64, now uint64) (bool, error) {
	finished := false
	err := p.revertable(func() error {
		if err := p.requireNotPaused(); err != nil {
			return err
		}
		bud := newBudget(maxIterations)
		for {
			b, err := p.burn.Get()
			if err != nil {
				return errors.Wrap(err, "failed to get pending burn")
			}
			if b.Pending {
				done, err := p.processBurn(b, bud)
				if err != nil {
					return err
				}
				if !done {
					break
				}
				continue
			}

			first, err := p.rewardFirst.Get()
			if err != nil {
				return err
			}
			last, err := p.rewardLast.Get()
			if err != nil {
				return err
			}
			if first < last {
				done, err := p.processReward(first, bud)
				if err != nil {
					return err
				}
				if !done {
					break
				}
				continue
			}

			due, done, err := p.processUnstake(now, bud)
			if err != nil {
				return err
			}
			if !due {
				finished = true
				break
			}
			if !done {
				break
			}
		}
		p.events.Emit("PendingActionsProcessed", finished)
		return nil
	})
	if err != nil {
		return false, err
	}
	return finished, nil
}

// processBurn spreads the pending burn proportionally across the
// contract's stakers, resuming at the persisted cursor. Each visited
// staker loses burn*stake/initialStake from both the contract stake and
// the deposit, and their other stakes are capped at the shrunk deposit.
func (p *PooledStaking) processBurn(b *pendingBurn, bud *budget) (bool, error) {
	stakerList, err := p.contractStakers.Get(b.Contract)
	if err != nil {
		return false, errors.Wrap(err, "failed to get contract stakers")
	}
	for b.NextStaker < uint64(len(stakerList)) {
		if !bud.spend() {
			if err := p.burn.Set(b); err != nil {
				return false, errors.Wrap(err, "failed to set pending burn")
			}
			return false, nil
		}
		if err := p.burnStaker(b, stakerList[b.NextStaker]); err != nil {
			return false, err
		}
		b.NextStaker++
	}

	if err := p.pruneContractStakers(b.Contract, stakerList); err != nil {
		return false, err
	}
	if err := p.burn.Clear(); err != nil {
		return false, errors.Wrap(err, "failed to clear pending burn")
	}
	p.events.Emit("Burned", b.Contract, b.Amount)
	metricBurnsProcessed().Add(1)
	logger.Debug("burn processed", "contract", b.Contract, "amount", b.Amount)
	return true, nil
}

func (p *PooledStaking) burnStaker(b *pendingBurn, addr sentinel.Address) error {
	if b.InitialStake.Sign() == 0 {
		return nil
	}
	stake, err := p.getStake(addr, b.Contract)
	if err != nil {
		return err
	}
	if stake.Sign() == 0 {
		return nil
	}
	share := new(big.Int).Mul(b.Amount, stake)
	share.Quo(share, b.InitialStake)
	if share.Sign() == 0 {
		return nil
	}

	if err := p.setStake(addr, b.Contract, new(big.Int).Sub(stake, share)); err != nil {
		return err
	}
	aggregate, err := p.getContractStaked(b.Contract)
	if err != nil {
		return err
	}
	if err := p.setContractStaked(b.Contract, new(big.Int).Sub(aggregate, share)); err != nil {
		return err
	}

	staker, err := p.getStaker(addr)
	if err != nil {
		return err
	}
	staker.Deposit = new(big.Int).Sub(staker.Deposit, share)
	if staker.Deposit.Sign() < 0 {
		staker.Deposit = new(big.Int)
	}
	if err := p.setStaker(addr, staker); err != nil {
		return err
	}
	// the shrunk deposit caps every other stake of this staker
	for _, contract := range staker.Contracts {
		if contract == b.Contract {
			continue
		}
		other, err := p.getStake(addr, contract)
		if err != nil {
			return err
		}
		if other.Cmp(staker.Deposit) <= 0 {
			continue
		}
		excess := new(big.Int).Sub(other, staker.Deposit)
		if err := p.setStake(addr, contract, staker.Deposit); err != nil {
			return err
		}
		otherAggregate, err := p.getContractStaked(contract)
		if err != nil {
			return err
		}
		if err := p.setContractStaked(contract, new(big.Int).Sub(otherAggregate, excess)); err != nil {
			return err
		}
	}
	return p.token.Burn(p.addr, share)
}

// pruneContractStakers drops stakers whose stake on the contract went to
// zero. They rejoin the list on their next deposit.
func (p *PooledStaking) pruneContractStakers(contract sentinel.Address, stakerList []sentinel.Address) error {
	kept := stakerList[:0]
	for _, addr := range stakerList {
		stake, err := p.getStake(addr, contract)
		if err != nil {
			return err
		}
		if stake.Sign() > 0 {
			kept = append(kept, addr)
		}
	}
	if err := p.contractStakers.Set(contract, kept); err != nil {
		return errors.Wrap(err, "failed to set contract stakers")
	}
	return nil
}

// processReward distributes the queue-front reward proportionally to each
// staker's current contract stake, resuming at the persisted cursor.
func (p *PooledStaking) processReward(first uint64, bud *budget) (bool, error) {
	r, err := p.rewardQueue.Get(index(first))
	if err != nil {
		return false, errors.Wrap(err, "failed to get queued reward")
	}
	if r.InitialStake == nil || (r.InitialStake.Sign() == 0 && r.NextStaker == 0) {
		// denominator snapshots the aggregate as processing begins
		staked, err := p.getContractStaked(r.Contract)
		if err != nil {
			return false, err
		}
		r.InitialStake = staked
	}

	stakerList, err := p.contractStakers.Get(r.Contract)
	if err != nil {
		return false, errors.Wrap(err, "failed to get contract stakers")
	}
	if r.InitialStake.Sign() > 0 {
		for r.NextStaker < uint64(len(stakerList)) {
			if !bud.spend() {
				if err := p.rewardQueue.Set(index(first), r); err != nil {
					return false, errors.Wrap(err, "failed to set queued reward")
				}
				return false, nil
			}
			addr := stakerList[r.NextStaker]
			stake, err := p.getStake(addr, r.Contract)
			if err != nil {
				return false, err
			}
			share := new(big.Int).Mul(r.Amount, stake)
			share.Quo(share, r.InitialStake)
			if share.Sign() > 0 {
				staker, err := p.getStaker(addr)
				if err != nil {
					return false, err
				}
				staker.Deposit = new(big.Int).Add(staker.Deposit, share)
				if err := p.setStaker(addr, staker); err != nil {
					return false, err
				}
			}
			r.NextStaker++
		}
	}

	if err := p.rewardQueue.Delete(index(first)); err != nil {
		return false, errors.Wrap(err, "failed to delete queued reward")
	}
	p.rewardFirst.Set(first + 1)
	p.events.Emit("RewardAdded", r.Contract, r.Amount)
	metricRewardsProcessed().Add(1)
	return true, nil
}

// processUnstake executes the queue-head request when due. The executed
// amount is capped at the staker's contract stake at processing time.
// Returns (due, done): due is false when no matured request exists.
func (p *PooledStaking) processUnstake(now uint64, bud *budget) (bool, bool, error) {
	head, err := p.requestHead.Get()
	if err != nil {
		return false, false, err
	}
	if head == 0 {
		return false, false, nil
	}
	r, err := p.requests.Get(index(head))
	if err != nil {
		return false, false, errors.Wrap(err, "failed to get unstake request")
	}
	if r.IsEmpty() || r.UnstakeAt > now {
		return false, false, nil
	}
	if !bud.spend() {
		return true, false, nil
	}

	stake, err := p.getStake(r.Staker, r.Contract)
	if err != nil {
		return false, false, err
	}
	executed := new(big.Int).Set(r.Amount)
	if executed.Cmp(stake) > 0 {
		executed.Set(stake)
	}
	if executed.Sign() > 0 {
		if err := p.setStake(r.Staker, r.Contract, new(big.Int).Sub(stake, executed)); err != nil {
			return false, false, err
		}
		aggregate, err := p.getContractStaked(r.Contract)
		if err != nil {
			return false, false, err
		}
		if err := p.setContractStaked(r.Contract, new(big.Int).Sub(aggregate, executed)); err != nil {
			return false, false, err
		}
	}

	if err := p.requests.Delete(index(head)); err != nil {
		return false, false, errors.Wrap(err, "failed to delete unstake request")
	}
	p.requestHead.Set(r.Next)
	if r.Next == 0 {
		p.requestTail.Set(0)
	}
	p.events.Emit("Unstaked", r.Contract, r.Staker, executed)
	return true, true, nil
}
