// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStake(t *testing.T) {
	env := newTestEnv(t)

	env.stake(voterA, 100)

	assert.Equal(t, M(env.eng.StakeOf(voterA)), M(big.NewInt(100), nil))
	assert.Equal(t, M(env.tok.Get(voterA)), M(big.NewInt(900), nil))
	assert.Equal(t, M(env.tok.Get(env.eng.Address())), M(big.NewInt(100), nil))

	// deposits accumulate
	env.stake(voterA, 50)
	assert.Equal(t, M(env.eng.StakeOf(voterA)), M(big.NewInt(150), nil))

	assert.ErrorIs(t, env.eng.Stake(voterA, new(big.Int)), ErrInvalidAmount)
	assert.ErrorIs(t, env.eng.Stake(outsider, big.NewInt(10)), ErrNotMember)

	assert.Nil(t, env.par.SetPaused(true))
	assert.ErrorIs(t, env.eng.Stake(voterA, big.NewInt(10)), ErrPaused)
}

func TestUnstakeLockup(t *testing.T) {
	env := newTestEnv(t)

	env.stake(voterA, 100)
	env.startAssessment(5, testNow)
	env.castVote(voterA, 5, true, testNow)

	// the post-vote lockup blocks withdrawal
	assert.ErrorIs(t, env.eng.Unstake(voterA, big.NewInt(100), voterA, testNow+testLockup-1),
		ErrStakeLockedForAssessment)

	assert.Nil(t, env.eng.Unstake(voterA, big.NewInt(60), voterA, testNow+testLockup))
	assert.Equal(t, M(env.eng.StakeOf(voterA)), M(big.NewInt(40), nil))
	assert.Equal(t, M(env.tok.Get(voterA)), M(big.NewInt(960), nil))

	// more than the remaining collateral
	assert.ErrorIs(t, env.eng.Unstake(voterA, big.NewInt(41), voterA, testNow+testLockup),
		ErrInvalidAmount)
	assert.ErrorIs(t, env.eng.Unstake(voterA, new(big.Int), voterA, testNow+testLockup),
		ErrInvalidAmount)
}

func TestUnstakeGovernanceLock(t *testing.T) {
	env := newTestEnv(t)

	env.stake(voterA, 100)
	assert.Nil(t, env.tok.LockForVoting(voterA, testNow+5000))

	// redirecting elsewhere is blocked while the lock runs
	assert.ErrorIs(t, env.eng.Unstake(voterA, big.NewInt(50), outsider, testNow),
		ErrStakeLockedForGovernance)

	// a self-directed withdrawal is always allowed
	assert.Nil(t, env.eng.Unstake(voterA, big.NewInt(50), voterA, testNow))

	// and the lock stops binding once expired
	assert.Nil(t, env.eng.Unstake(voterA, big.NewInt(50), outsider, testNow+5000))
	assert.Equal(t, M(env.tok.Get(outsider)), M(big.NewInt(50), nil))
}

func TestUnstakeFor(t *testing.T) {
	env := newTestEnv(t)

	env.stake(voterA, 100)
	env.startAssessment(5, testNow)
	env.castVote(voterA, 5, true, testNow)

	assert.ErrorIs(t, env.eng.UnstakeFor(voterA, voterA, big.NewInt(10), voterA, testNow),
		ErrOnlyTokenController)

	// the controller path ignores the post-vote lockup
	assert.Nil(t, env.eng.UnstakeFor(tokenCtrl, voterA, big.NewInt(30), voterA, testNow))
	assert.Equal(t, M(env.eng.StakeOf(voterA)), M(big.NewInt(70), nil))

	assert.Nil(t, env.eng.UnstakeAllFor(tokenCtrl, voterA, testNow))
	assert.Equal(t, M(env.eng.StakeOf(voterA)), M(new(big.Int), nil))
	assert.Equal(t, M(env.tok.Get(voterA)), M(big.NewInt(1000), nil))

	// emptying an empty stake is a no-op
	assert.Nil(t, env.eng.UnstakeAllFor(tokenCtrl, voterA, testNow))
}

func TestGaugeValueClampsLargeAmounts(t *testing.T) {
	assert.Equal(t, int64(100), gaugeValue(big.NewInt(100)))

	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	assert.Equal(t, int64(math.MaxInt64), gaugeValue(huge))
}
