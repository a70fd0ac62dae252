// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"math/big"

	"github.com/covermutual/sentinel/sentinel"
)

// SubmitFraud records a new fraud-proof merkle root and returns its index.
// Governor-only and pause-gated.
func (a *Assessment) SubmitFraud(caller sentinel.Address, root sentinel.Bytes32) (uint64, error) {
	var rootIndex uint64
	err := a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		ok, err := a.registry.IsGovernor(caller)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnauthorized
		}
		count, err := a.fraudCounter.Get()
		if err != nil {
			return err
		}
		rootIndex = count
		if err := a.fraudRoots.Set(index(rootIndex), root); err != nil {
			return err
		}
		a.fraudCounter.Set(count + 1)
		a.events.Emit("FraudSubmitted", rootIndex, root)
		logger.Info("fraud root submitted", "rootIndex", rootIndex)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rootIndex, nil
}

// BurnFraud processes a proven fraud against a staker: it cancels the
// staker's votes from the last processed index through
// lastFraudulentVoteIndex, in batches of batchSize per call with a
// persisted cursor, then burns min(burnAmount, deposit) once. A stale
// fraudCount (the staker was already slashed since the root was built)
// skips the burn but the vote cancellation still runs. Polls losing a vote
// keep at least 24 hours of voting time so the removal cannot silently
// finalize an outcome. Returns whether processing completed.
func (a *Assessment) BurnFraud(
	rootIndex uint64,
	proof []sentinel.Bytes32,
	staker sentinel.Address,
	lastFraudulentVoteIndex uint64,
	burnAmount *big.Int,
	fraudCount uint64,
	batchSize uint64,
	now uint64,
) (bool, error) {
	finished := false
	err := a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		count, err := a.fraudCounter.Get()
		if err != nil {
			return err
		}
		if rootIndex >= count {
			return ErrInvalidFraudProof
		}
		root, err := a.fraudRoots.Get(index(rootIndex))
		if err != nil {
			return err
		}
		leaf := fraudLeaf(staker, lastFraudulentVoteIndex, burnAmount, fraudCount)
		if !verifyProof(proof, root, leaf) {
			return ErrInvalidFraudProof
		}

		stake, err := a.getStake(staker)
		if err != nil {
			return err
		}
		memberID, err := a.registry.MemberIDOf(staker)
		if err != nil {
			return err
		}

		key := fraudKey{root: rootIndex, staker: staker}
		cursor, err := a.fraudCursors.Get(key)
		if err != nil {
			return err
		}
		if cursor.ProcessedUntil == 0 && !cursor.BurnDone {
			// fresh proof: cancellation starts where reward settlement stopped
			cursor.ProcessedUntil = stake.RewardsWithdrawnUntilIndex
		}

		end := lastFraudulentVoteIndex
		if stake.VoteCount == 0 {
			end = 0
		} else if end > stake.VoteCount-1 {
			end = stake.VoteCount - 1
		}

		processed := uint64(0)
		for i := cursor.ProcessedUntil; i <= end && i < stake.VoteCount; i++ {
			if batchSize != 0 && processed >= batchSize {
				break
			}
			if err := a.cancelVote(staker, memberID, i, now); err != nil {
				return err
			}
			cursor.ProcessedUntil = i + 1
			processed++
		}

		finished = cursor.ProcessedUntil > end || stake.VoteCount == 0
		if finished && !cursor.BurnDone {
			burned := new(big.Int)
			if fraudCount == stake.FraudCount {
				burned.Set(burnAmount)
				if burned.Cmp(stake.Amount) > 0 {
					burned.Set(stake.Amount)
				}
				stake.Amount = new(big.Int).Sub(stake.Amount, burned)
				stake.FraudCount++
				if err := a.token.Burn(a.addr, burned); err != nil {
					return err
				}
				metricFraudBurns().Add(1)
			} else {
				logger.Warn("stale fraud count, burn skipped",
					"staker", staker, "rootIndex", rootIndex)
			}
			if stake.RewardsWithdrawnUntilIndex < cursor.ProcessedUntil {
				stake.RewardsWithdrawnUntilIndex = cursor.ProcessedUntil
			}
			if err := a.setStake(staker, stake); err != nil {
				return err
			}
			cursor.BurnDone = true
			a.events.Emit("FraudProcessed", rootIndex, staker, burned)
		}
		if err := a.fraudCursors.Set(key, cursor); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return finished, nil
}

// cancelVote tombstones one vote history entry and backs its effect out of
// the referenced poll. Already-cancelled entries are skipped.
func (a *Assessment) cancelVote(staker sentinel.Address, memberID sentinel.MemberID, i uint64, now uint64) error {
	record, err := a.getVoteRecord(staker, i)
	if err != nil {
		return err
	}
	if record.Timestamp == 0 {
		return nil
	}
	claimID := sentinel.ClaimID(record.ClaimID)
	p, err := a.getPoll(claimID)
	if err != nil {
		return err
	}
	if record.Accepted {
		p.AcceptVotes--
	} else {
		p.DenyVotes--
	}
	p.TotalVotedStake = new(big.Int).Sub(p.TotalVotedStake, record.StakeSnapshot)
	// keep the poll open long enough for the removal to be contested
	if extension := fraudVoteExtension.Get(); p.VotingEnd < now+extension {
		p.VotingEnd = now + extension
		a.events.Emit("VotingEndChanged", claimID, p.VotingEnd)
	}
	if err := a.setPoll(claimID, p); err != nil {
		return err
	}
	if err := a.setBallot(claimID, memberID, &ballot{}); err != nil {
		return err
	}
	record.Timestamp = 0
	if err := a.setVoteRecord(staker, i, record); err != nil {
		return err
	}
	a.events.Emit("VoteCancelled", claimID, memberID, i)
	return nil
}

// FraudRoot returns the stored root at the given index.
func (a *Assessment) FraudRoot(rootIndex uint64) (sentinel.Bytes32, error) {
	count, err := a.fraudCounter.Get()
	if err != nil {
		return sentinel.Bytes32{}, err
	}
	if rootIndex >= count {
		return sentinel.Bytes32{}, ErrInvalidFraudProof
	}
	return a.fraudRoots.Get(index(rootIndex))
}
