// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pooledstaking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/covermutual/sentinel/sentinel"
)

func TestProcessBurn(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 100)
	env.depositStake(bob, 300, []sentinel.Address{contractX}, 300)

	assert.ErrorIs(t, env.pool.PushBurn(alice, contractX, big.NewInt(100), testNow), ErrOnlyInternal)
	assert.Nil(t, env.pool.PushBurn(internalEng, contractX, big.NewInt(100), testNow))

	assert.Equal(t, M(env.pool.ProcessPendingActions(0, testNow)), M(true, nil))

	// 100 burned 1:3 across stakes and deposits
	assert.Equal(t, M(env.pool.StakeOf(alice, contractX)), M(big.NewInt(75), nil))
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(big.NewInt(75), nil))
	assert.Equal(t, M(env.pool.StakeOf(bob, contractX)), M(big.NewInt(225), nil))
	assert.Equal(t, M(env.pool.DepositOf(bob)), M(big.NewInt(225), nil))
	assert.Equal(t, M(env.pool.ContractStake(contractX)), M(big.NewInt(300), nil))
	assert.Equal(t, M(env.tok.TotalBurned()), M(big.NewInt(100), nil))

	assert.Equal(t, M(env.pool.HasPendingBurn()), M(false, nil))
	assert.Len(t, env.emitter.Named("Burned"), 1)
}

func TestProcessBurnCapsOtherStakes(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX, contractY}, 100, 100)

	// the requested burn is capped at the contract's aggregate stake
	assert.Nil(t, env.pool.PushBurn(internalEng, contractX, big.NewInt(400), testNow))
	assert.Equal(t, M(env.pool.ProcessPendingActions(0, testNow)), M(true, nil))

	// the emptied deposit drags the other stake down with it
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(new(big.Int), nil))
	assert.Equal(t, M(env.pool.StakeOf(alice, contractY)), M(new(big.Int), nil))
	assert.Equal(t, M(env.pool.ContractStake(contractY)), M(new(big.Int), nil))

	// fully burned stakers are pruned, and rejoin on their next deposit
	assert.Equal(t, M(env.pool.ContractStakers(contractX)), M([]sentinel.Address{}, nil))
	env.depositStake(alice, 50, []sentinel.Address{contractX, contractY}, 50, 50)
	assert.Equal(t, M(env.pool.ContractStakers(contractX)), M([]sentinel.Address{alice}, nil))
}

func TestProcessRewards(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 100)
	env.depositStake(bob, 300, []sentinel.Address{contractX}, 300)

	assert.ErrorIs(t, env.pool.AccumulateReward(alice, contractX, big.NewInt(100)), ErrOnlyInternal)
	assert.Nil(t, env.pool.AccumulateReward(internalEng, contractX, big.NewInt(60)))
	assert.Nil(t, env.pool.AccumulateReward(internalEng, contractX, big.NewInt(40)))

	// nothing distributed until the accrual is pushed
	assert.Nil(t, env.pool.PushRewards([]sentinel.Address{contractX, contractY}))
	supply, _ := env.tok.TotalSupply()
	assert.Equal(t, big.NewInt(20100), supply)

	assert.Equal(t, M(env.pool.ProcessPendingActions(0, testNow)), M(true, nil))

	// 100 distributed 1:3 into deposits, stakes untouched
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(big.NewInt(125), nil))
	assert.Equal(t, M(env.pool.DepositOf(bob)), M(big.NewInt(375), nil))
	assert.Equal(t, M(env.pool.StakeOf(alice, contractX)), M(big.NewInt(100), nil))
	assert.Len(t, env.emitter.Named("RewardAdded"), 1)

	// pushing again with nothing accrued queues nothing
	assert.Nil(t, env.pool.PushRewards([]sentinel.Address{contractX}))
	assert.Equal(t, M(env.pool.ProcessPendingActions(0, testNow)), M(true, nil))
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(big.NewInt(125), nil))
}

func TestProcessOrderBurnBeforeReward(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 100)
	env.depositStake(bob, 300, []sentinel.Address{contractX}, 300)

	assert.Nil(t, env.pool.PushBurn(internalEng, contractX, big.NewInt(100), testNow))
	assert.Nil(t, env.pool.AccumulateReward(internalEng, contractX, big.NewInt(400)))
	assert.Nil(t, env.pool.PushRewards([]sentinel.Address{contractX}))

	assert.Equal(t, M(env.pool.ProcessPendingActions(0, testNow)), M(true, nil))

	// the reward denominator reflects the stakes left after the burn:
	// burn takes 25/75, then 400 splits over 75:225
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(big.NewInt(175), nil))
	assert.Equal(t, M(env.pool.DepositOf(bob)), M(big.NewInt(525), nil))
}

func TestProcessBudgetResumes(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 100)
	env.depositStake(bob, 300, []sentinel.Address{contractX}, 300)
	assert.Nil(t, env.pool.PushBurn(internalEng, contractX, big.NewInt(100), testNow))

	// one staker visit per call; the cursor persists in between
	assert.Equal(t, M(env.pool.ProcessPendingActions(1, testNow)), M(false, nil))
	assert.Equal(t, M(env.pool.StakeOf(alice, contractX)), M(big.NewInt(75), nil))
	assert.Equal(t, M(env.pool.StakeOf(bob, contractX)), M(big.NewInt(300), nil))
	assert.Equal(t, M(env.pool.HasPendingBurn()), M(true, nil))

	assert.Equal(t, M(env.pool.ProcessPendingActions(1, testNow)), M(true, nil))
	assert.Equal(t, M(env.pool.StakeOf(bob, contractX)), M(big.NewInt(225), nil))
	assert.Equal(t, M(env.pool.HasPendingBurn()), M(false, nil))
}

func TestUnstakeQueue(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 100)

	err := env.pool.RequestUnstake(alice, []sentinel.Address{contractX}, bigs(200), 0, testNow)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	err = env.pool.RequestUnstake(alice, nil, nil, 0, testNow)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Nil(t, env.pool.RequestUnstake(alice, []sentinel.Address{contractX}, bigs(60), 0, testNow))

	staker, contract, amount, unstakeAt, err := env.pool.UnstakeRequestOf(1)
	assert.Nil(t, err)
	assert.Equal(t, alice, staker)
	assert.Equal(t, contractX, contract)
	assert.Equal(t, big.NewInt(60), amount)
	assert.Equal(t, testNow+testLockTime, unstakeAt)

	// not due yet: processing finishes without touching it
	assert.Equal(t, M(env.pool.ProcessPendingActions(0, testNow)), M(true, nil))
	assert.Equal(t, M(env.pool.StakeOf(alice, contractX)), M(big.NewInt(100), nil))

	assert.Equal(t, M(env.pool.ProcessPendingActions(0, testNow+testLockTime)), M(true, nil))
	assert.Equal(t, M(env.pool.StakeOf(alice, contractX)), M(big.NewInt(40), nil))
	assert.Equal(t, M(env.pool.ContractStake(contractX)), M(big.NewInt(40), nil))
	// unstaking frees the deposit but does not move tokens
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(big.NewInt(100), nil))
	assert.Len(t, env.emitter.Named("Unstaked"), 1)

	assert.Nil(t, env.pool.Withdraw(alice, big.NewInt(60)))
}

func TestUnstakeQueueOrdering(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 100)

	assert.Nil(t, env.pool.RequestUnstake(alice, []sentinel.Address{contractX}, bigs(10), 0, testNow))
	// later maturity goes behind the existing request
	assert.Nil(t, env.pool.RequestUnstake(alice, []sentinel.Address{contractX}, bigs(20), 1, testNow+50))

	// inserting a later request at the head breaks the maturity order
	err := env.pool.RequestUnstake(alice, []sentinel.Address{contractX}, bigs(5), 0, testNow+200)
	assert.ErrorIs(t, err, ErrInvalidInsertPosition)
	// as does inserting behind an unknown request
	err = env.pool.RequestUnstake(alice, []sentinel.Address{contractX}, bigs(5), 99, testNow)
	assert.ErrorIs(t, err, ErrInvalidInsertPosition)

	// both mature requests execute in queue order
	assert.Equal(t, M(env.pool.ProcessPendingActions(0, testNow+testLockTime+50)), M(true, nil))
	assert.Equal(t, M(env.pool.StakeOf(alice, contractX)), M(big.NewInt(70), nil))
	assert.Len(t, env.emitter.Named("Unstaked"), 2)
}

func TestUnstakeCappedByRemainingStake(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 100)
	assert.Nil(t, env.pool.RequestUnstake(alice, []sentinel.Address{contractX}, bigs(80), 0, testNow))

	// a burn lands between request and maturity
	assert.Nil(t, env.pool.PushBurn(internalEng, contractX, big.NewInt(50), testNow))

	assert.Equal(t, M(env.pool.ProcessPendingActions(0, testNow+testLockTime)), M(true, nil))

	// the request executes for what is left, not the asked amount
	assert.Equal(t, M(env.pool.StakeOf(alice, contractX)), M(new(big.Int), nil))
	assert.Equal(t, M(env.pool.ContractStake(contractX)), M(new(big.Int), nil))
}
