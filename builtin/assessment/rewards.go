// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"math/big"

	"github.com/covermutual/sentinel/sentinel"
)

// rewardShare computes one vote's pro-rata share: totalReward scaled by
// the vote's stake snapshot over the poll's total voted stake. Integer
// division leaves the dust remainder in the pool.
func rewardShare(p *poll, snapshot *big.Int) *big.Int {
	if p.TotalVotedStake == nil || p.TotalVotedStake.Sign() == 0 || snapshot.Sign() == 0 {
		return new(big.Int)
	}
	share := new(big.Int).Mul(p.TotalReward, snapshot)
	return share.Quo(share, p.TotalVotedStake)
}

// GetRewards summarises the staker's reward position at now: rewards on
// finalized polls up to the first still-pending one are withdrawable, the
// rest of the history counts as pending.
func (a *Assessment) GetRewards(staker sentinel.Address, now uint64) (*Rewards, error) {
	stake, err := a.getStake(staker)
	if err != nil {
		return nil, err
	}
	out := &Rewards{
		TotalPending:           new(big.Int),
		Withdrawable:           new(big.Int),
		WithdrawableUntilIndex: stake.RewardsWithdrawnUntilIndex,
	}
	blocked := false
	for i := stake.RewardsWithdrawnUntilIndex; i < stake.VoteCount; i++ {
		record, err := a.getVoteRecord(staker, i)
		if err != nil {
			return nil, err
		}
		if record.Timestamp == 0 { // cancelled, nothing to pay
			if !blocked {
				out.WithdrawableUntilIndex = i + 1
			}
			continue
		}
		p, err := a.getPoll(sentinel.ClaimID(record.ClaimID))
		if err != nil {
			return nil, err
		}
		share := rewardShare(p, record.StakeSnapshot)
		if p.result(now) == ResultPending {
			blocked = true
		}
		if blocked {
			out.TotalPending.Add(out.TotalPending, share)
		} else {
			out.Withdrawable.Add(out.Withdrawable, share)
			out.WithdrawableUntilIndex = i + 1
		}
	}
	return out, nil
}

// WithdrawRewards pays the staker's withdrawable rewards to the staker.
// A non-zero batchSize bounds how many history entries are settled in
// this call; the cursor persists so later calls resume. Pause-gated.
func (a *Assessment) WithdrawRewards(staker sentinel.Address, batchSize uint64, now uint64) error {
	return a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		return a.withdrawRewards(staker, staker, batchSize, now)
	})
}

// WithdrawRewardsTo pays the caller's withdrawable rewards to another
// address. Only the stake owner may redirect their rewards. Pause-gated.
func (a *Assessment) WithdrawRewardsTo(caller sentinel.Address, staker sentinel.Address, to sentinel.Address, batchSize uint64, now uint64) error {
	return a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		if caller != staker {
			return ErrUnauthorized
		}
		return a.withdrawRewards(staker, to, batchSize, now)
	})
}

func (a *Assessment) withdrawRewards(staker, to sentinel.Address, batchSize, now uint64) error {
	stake, err := a.getStake(staker)
	if err != nil {
		return err
	}
	amount := new(big.Int)
	cursor := stake.RewardsWithdrawnUntilIndex
	settled := uint64(0)
	for i := cursor; i < stake.VoteCount; i++ {
		if batchSize != 0 && settled >= batchSize {
			break
		}
		record, err := a.getVoteRecord(staker, i)
		if err != nil {
			return err
		}
		if record.Timestamp == 0 {
			cursor = i + 1
			continue
		}
		p, err := a.getPoll(sentinel.ClaimID(record.ClaimID))
		if err != nil {
			return err
		}
		if p.result(now) == ResultPending {
			break
		}
		amount.Add(amount, rewardShare(p, record.StakeSnapshot))
		cursor = i + 1
		settled++
	}
	if settled == 0 {
		return ErrNoWithdrawableRewards
	}
	stake.RewardsWithdrawnUntilIndex = cursor
	if err := a.setStake(staker, stake); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		if err := a.token.Transfer(a.addr, to, amount); err != nil {
			return err
		}
	}
	a.events.Emit("RewardWithdrawn", staker, to, amount)
	return nil
}
