// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pooledstaking

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/covermutual/sentinel/sentinel"
)

func TestDepositAndStake(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX, contractY}, 100, 50)

	assert.Equal(t, M(env.pool.DepositOf(alice)), M(big.NewInt(100), nil))
	assert.Equal(t, M(env.pool.StakeOf(alice, contractX)), M(big.NewInt(100), nil))
	assert.Equal(t, M(env.pool.StakeOf(alice, contractY)), M(big.NewInt(50), nil))
	assert.Equal(t, M(env.pool.ContractStake(contractX)), M(big.NewInt(100), nil))
	assert.Equal(t, M(env.pool.ContractsOf(alice)), M([]sentinel.Address{contractX, contractY}, nil))
	assert.Equal(t, M(env.pool.ContractStakers(contractX)), M([]sentinel.Address{alice}, nil))

	assert.Equal(t, M(env.tok.Get(alice)), M(big.NewInt(9900), nil))
	assert.Equal(t, M(env.tok.Get(env.pool.Address())), M(big.NewInt(100), nil))

	env.depositStake(bob, 300, []sentinel.Address{contractX}, 300)
	assert.Equal(t, M(env.pool.ContractStake(contractX)), M(big.NewInt(400), nil))
	assert.Equal(t, M(env.pool.ContractStakers(contractX)), M([]sentinel.Address{alice, bob}, nil))

	// topping up: previous contracts repeated in order, stakes grown
	env.depositStake(alice, 50, []sentinel.Address{contractX, contractY, contractZ}, 120, 50, 30)
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(big.NewInt(150), nil))
	assert.Equal(t, M(env.pool.ContractStake(contractX)), M(big.NewInt(420), nil))

	assert.Len(t, env.emitter.Named("Deposited"), 3)
	// unchanged stakes emit nothing
	assert.Len(t, env.emitter.Named("Staked"), 5)
}

func TestDepositValidation(t *testing.T) {
	env := newTestEnv(t)

	err := env.pool.DepositAndStake(outsider, big.NewInt(10), []sentinel.Address{contractX}, bigs(10))
	assert.ErrorIs(t, err, ErrNotMember)

	err = env.pool.DepositAndStake(alice, big.NewInt(10), []sentinel.Address{contractX}, bigs(10, 20))
	assert.ErrorIs(t, err, ErrInvalidArrayLength)

	err = env.pool.DepositAndStake(alice, big.NewInt(10), []sentinel.Address{contractX, contractX}, bigs(5, 5))
	assert.ErrorIs(t, err, ErrDuplicateContract)

	err = env.pool.DepositAndStake(alice, big.NewInt(10), []sentinel.Address{contractX}, bigs(11))
	assert.ErrorIs(t, err, ErrStakeExceedsDeposit)

	// total stake capped at deposit * max exposure
	err = env.pool.DepositAndStake(alice, big.NewInt(100),
		[]sentinel.Address{contractX, contractY, contractZ}, bigs(100, 100, 100))
	assert.ErrorIs(t, err, ErrExposureExceeded)

	// nothing persisted by the failed calls
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(new(big.Int), nil))
	assert.Equal(t, M(env.tok.Get(alice)), M(big.NewInt(10000), nil))

	env.depositStake(alice, 100, []sentinel.Address{contractX, contractY}, 100, 50)

	err = env.pool.DepositAndStake(alice, big.NewInt(0), []sentinel.Address{contractX}, bigs(100))
	assert.ErrorIs(t, err, ErrFewerContracts)

	err = env.pool.DepositAndStake(alice, big.NewInt(0), []sentinel.Address{contractY, contractX}, bigs(50, 100))
	assert.ErrorIs(t, err, ErrContractOrderMismatch)

	err = env.pool.DepositAndStake(alice, big.NewInt(0), []sentinel.Address{contractX, contractY}, bigs(90, 50))
	assert.ErrorIs(t, err, ErrStakeDecrease)
}

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 60)

	// only the part above the largest stake is free
	assert.ErrorIs(t, env.pool.Withdraw(alice, big.NewInt(41)), ErrInvalidAmount)
	assert.ErrorIs(t, env.pool.Withdraw(alice, new(big.Int)), ErrInvalidAmount)

	assert.Nil(t, env.pool.Withdraw(alice, big.NewInt(40)))
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(big.NewInt(60), nil))
	assert.Equal(t, M(env.tok.Get(alice)), M(big.NewInt(9940), nil))
	assert.Len(t, env.emitter.Named("Withdrawn"), 1)
}

func TestPendingActionsBlock(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 60)
	assert.Nil(t, env.pool.PushBurn(internalEng, contractX, big.NewInt(30), testNow))

	// deposits, withdrawals and further burns wait for processing
	err := env.pool.DepositAndStake(alice, big.NewInt(10), []sentinel.Address{contractX}, bigs(60))
	assert.ErrorIs(t, err, ErrPendingActions)
	assert.ErrorIs(t, env.pool.Withdraw(alice, big.NewInt(10)), ErrPendingActions)
	assert.ErrorIs(t, env.pool.PushBurn(internalEng, contractX, big.NewInt(10), testNow), ErrBurnPending)

	assert.Equal(t, M(env.pool.HasPendingBurn()), M(true, nil))

	_, err = env.pool.ProcessPendingActions(0, testNow)
	assert.Nil(t, err)
	assert.Nil(t, env.pool.Withdraw(alice, big.NewInt(10)))
}

func TestPauseGating(t *testing.T) {
	env := newTestEnv(t)

	env.depositStake(alice, 100, []sentinel.Address{contractX}, 50)

	assert.Nil(t, env.par.SetPaused(true))

	err := env.pool.DepositAndStake(alice, big.NewInt(10), []sentinel.Address{contractX}, bigs(60))
	assert.ErrorIs(t, err, ErrPaused)
	assert.ErrorIs(t, env.pool.Withdraw(alice, big.NewInt(10)), ErrPaused)
	assert.ErrorIs(t, env.pool.PushBurn(internalEng, contractX, big.NewInt(10), testNow), ErrPaused)
	assert.ErrorIs(t, env.pool.AccumulateReward(internalEng, contractX, big.NewInt(10)), ErrPaused)
	assert.ErrorIs(t, env.pool.PushRewards([]sentinel.Address{contractX}), ErrPaused)
	assert.ErrorIs(t, env.pool.RequestUnstake(alice, []sentinel.Address{contractX}, bigs(10), 0, testNow), ErrPaused)
	_, err = env.pool.ProcessPendingActions(0, testNow)
	assert.ErrorIs(t, err, ErrPaused)

	// nothing persisted while the flag was set
	assert.Equal(t, M(env.pool.DepositOf(alice)), M(big.NewInt(100), nil))
	assert.Equal(t, M(env.pool.StakeOf(alice, contractX)), M(big.NewInt(50), nil))

	// normal service resumes once the flag clears
	assert.Nil(t, env.par.SetPaused(false))
	assert.Nil(t, env.pool.Withdraw(alice, big.NewInt(10)))
}

func TestGaugeValueClampsLargeAmounts(t *testing.T) {
	assert.Equal(t, int64(100), gaugeValue(big.NewInt(100)))

	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	assert.Equal(t, int64(math.MaxInt64), gaugeValue(huge))
}
