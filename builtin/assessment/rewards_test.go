// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/covermutual/sentinel/sentinel"
)

func TestRewardShares(t *testing.T) {
	env := newTestEnv(t)

	env.stake(voterA, 100)
	env.stake(voterB, 300)
	env.startAssessment(5, testNow)
	env.castVote(voterA, 5, true, testNow+10)
	env.castVote(voterB, 5, false, testNow+10)

	final := env.afterFinal(5)

	// 1000 total reward split 100:300
	rewards, err := env.eng.GetRewards(voterA, final)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(250), rewards.Withdrawable)
	assert.Equal(t, new(big.Int), rewards.TotalPending)

	rewards, err = env.eng.GetRewards(voterB, final)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(750), rewards.Withdrawable)

	assert.Nil(t, env.eng.WithdrawRewards(voterA, 0, final))
	assert.Equal(t, M(env.tok.Get(voterA)), M(big.NewInt(1150), nil))
	assert.Len(t, env.emitter.Named("RewardWithdrawn"), 1)

	// the cursor advanced, nothing left to settle
	assert.ErrorIs(t, env.eng.WithdrawRewards(voterA, 0, final), ErrNoWithdrawableRewards)

	rewards, _ = env.eng.GetRewards(voterA, final)
	assert.Equal(t, new(big.Int), rewards.Withdrawable)
	assert.Equal(t, uint64(1), rewards.WithdrawableUntilIndex)
}

func TestRewardsPendingBlocks(t *testing.T) {
	env := newTestEnv(t)

	env.stake(voterA, 100)
	env.startAssessment(5, testNow)
	env.castVote(voterA, 5, true, testNow+10)

	// a later poll is still running when the first finalizes
	laterStart := testNow + 10000
	assert.Nil(t, env.eng.StartAssessment(claims, 6, 1, 0, laterStart))
	env.castVote(voterA, 6, true, laterStart+10)

	final5 := env.afterFinal(5)
	rewards, err := env.eng.GetRewards(voterA, final5)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(1000), rewards.Withdrawable)
	assert.Equal(t, big.NewInt(1000), rewards.TotalPending)

	// withdrawal stops at the first still-pending poll
	assert.Nil(t, env.eng.WithdrawRewards(voterA, 0, final5))
	assert.Equal(t, M(env.tok.Get(voterA)), M(big.NewInt(1900), nil))

	assert.ErrorIs(t, env.eng.WithdrawRewards(voterA, 0, final5), ErrNoWithdrawableRewards)

	// once the second poll settles its share unblocks
	final6 := env.afterFinal(6)
	assert.Nil(t, env.eng.WithdrawRewards(voterA, 0, final6))
	assert.Equal(t, M(env.tok.Get(voterA)), M(big.NewInt(2900), nil))
}

func TestWithdrawRewardsBatched(t *testing.T) {
	env := newTestEnv(t)

	env.stake(voterA, 100)
	for claimID := sentinel.ClaimID(1); claimID <= 3; claimID++ {
		env.startAssessment(claimID, testNow)
		env.castVote(voterA, claimID, true, testNow+10)
	}
	final := env.afterFinal(1)

	// two entries per call, the cursor persists between calls
	assert.Nil(t, env.eng.WithdrawRewards(voterA, 2, final))
	assert.Equal(t, M(env.tok.Get(voterA)), M(big.NewInt(2900), nil))

	// the view scans past the persisted cursor over the finalized tail
	rewards, _ := env.eng.GetRewards(voterA, final)
	assert.Equal(t, uint64(3), rewards.WithdrawableUntilIndex)
	assert.Equal(t, big.NewInt(1000), rewards.Withdrawable)

	assert.Nil(t, env.eng.WithdrawRewards(voterA, 0, final))
	assert.Equal(t, M(env.tok.Get(voterA)), M(big.NewInt(3900), nil))
}

func TestWithdrawRewardsTo(t *testing.T) {
	env := newTestEnv(t)

	env.stake(voterA, 100)
	env.startAssessment(5, testNow)
	env.castVote(voterA, 5, true, testNow+10)
	final := env.afterFinal(5)

	// only the stake owner may redirect their rewards
	assert.ErrorIs(t, env.eng.WithdrawRewardsTo(voterB, voterA, voterB, 0, final), ErrUnauthorized)

	assert.Nil(t, env.eng.WithdrawRewardsTo(voterA, voterA, outsider, 0, final))
	assert.Equal(t, M(env.tok.Get(outsider)), M(big.NewInt(1000), nil))
}

func TestRewardsSkipCancelledVotes(t *testing.T) {
	env := newTestEnv(t)

	env.stake(voterA, 100)
	env.startAssessment(5, testNow)
	env.castVote(voterA, 5, true, testNow+10)
	assert.Nil(t, env.eng.UndoVotes(governor, idVoterA, []sentinel.ClaimID{5}))

	env.startAssessment(6, testNow)
	env.castVote(voterA, 6, true, testNow+20)
	final := env.afterFinal(6)

	// the tombstoned entry pays nothing and does not block
	rewards, err := env.eng.GetRewards(voterA, final)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(1000), rewards.Withdrawable)
	assert.Equal(t, uint64(2), rewards.WithdrawableUntilIndex)

	assert.Nil(t, env.eng.WithdrawRewards(voterA, 0, final))
	assert.Equal(t, M(env.tok.Get(voterA)), M(big.NewInt(1900), nil))
}
