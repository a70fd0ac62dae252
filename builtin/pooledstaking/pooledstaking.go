// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pooledstaking implements the pooled risk-capital engine: members
// deposit collateral and spread it as leveraged stakes across risk-pool
// contracts; burns and rewards propagate proportionally across all stakers
// of a contract through strictly FIFO, cursor-resumable batch processing
// bounded by a caller-supplied iteration budget.
package pooledstaking

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/covermutual/sentinel/builtin/events"
	"github.com/covermutual/sentinel/builtin/params"
	"github.com/covermutual/sentinel/builtin/registry"
	"github.com/covermutual/sentinel/builtin/reverts"
	"github.com/covermutual/sentinel/builtin/sstore"
	"github.com/covermutual/sentinel/builtin/token"
	"github.com/covermutual/sentinel/log"
	"github.com/covermutual/sentinel/metrics"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

var logger = log.WithContext("pkg", "pooledstaking")

var (
	metricBurnsProcessed   = metrics.LazyLoadCounter("pooledstaking_burns_processed_count")
	metricRewardsProcessed = metrics.LazyLoadCounter("pooledstaking_rewards_processed_count")
	metricDeposited        = metrics.LazyLoadGauge("pooledstaking_deposit_gauge")
)

var (
	// ErrPaused the global pause flag is set.
	ErrPaused = reverts.New("system is paused")
	// ErrNotMember the caller holds no protocol membership.
	ErrNotMember = reverts.New("caller is not a member")
	// ErrOnlyInternal the operation is restricted to internal engines.
	ErrOnlyInternal = reverts.New("only internal contracts")
	// ErrPendingActions unprocessed burns or rewards block the request.
	ErrPendingActions = reverts.New("unable to execute request with unprocessed actions")
	// ErrBurnPending a burn is already queued and unprocessed.
	ErrBurnPending = reverts.New("burn already pending")
	// ErrInvalidArrayLength contracts and stakes differ in length.
	ErrInvalidArrayLength = reverts.New("contracts and stakes arrays differ in length")
	// ErrDuplicateContract the same contract appears twice in the call.
	ErrDuplicateContract = reverts.New("duplicate contract")
	// ErrFewerContracts the call omits a previously staked contract.
	ErrFewerContracts = reverts.New("fewer contracts than previously staked not allowed")
	// ErrContractOrderMismatch previously staked contracts appear out of order.
	ErrContractOrderMismatch = reverts.New("contract order differs from previous staking")
	// ErrStakeDecrease a stake is below its previously recorded value.
	ErrStakeDecrease = reverts.New("stake decrease not allowed")
	// ErrStakeExceedsDeposit a single stake exceeds the deposit.
	ErrStakeExceedsDeposit = reverts.New("stake exceeds deposit")
	// ErrExposureExceeded total stake exceeds deposit times max exposure.
	ErrExposureExceeded = reverts.New("total stake exceeds max exposure")
	// ErrInvalidAmount the amount is zero, negative or out of range.
	ErrInvalidAmount = reverts.New("invalid amount")
	// ErrInvalidInsertPosition the unstake insert position breaks queue order.
	ErrInvalidInsertPosition = reverts.New("invalid unstake insert position")
)

var (
	slotStakers         = sentinel.BytesToBytes32([]byte("pool-stakers"))
	slotStakes          = sentinel.BytesToBytes32([]byte("pool-stakes"))
	slotContractStaked  = sentinel.BytesToBytes32([]byte("pool-contract-staked"))
	slotContractStakers = sentinel.BytesToBytes32([]byte("pool-contract-stakers"))
	slotAccumulated     = sentinel.BytesToBytes32([]byte("pool-accumulated"))
	slotBurn            = sentinel.BytesToBytes32([]byte("pool-burn"))
	slotRewardQueue     = sentinel.BytesToBytes32([]byte("pool-reward-queue"))
	slotRewardFirst     = sentinel.BytesToBytes32([]byte("pool-reward-first"))
	slotRewardLast      = sentinel.BytesToBytes32([]byte("pool-reward-last"))
	slotRequests        = sentinel.BytesToBytes32([]byte("pool-unstake-requests"))
	slotRequestCounter  = sentinel.BytesToBytes32([]byte("pool-unstake-counter"))
	slotRequestHead     = sentinel.BytesToBytes32([]byte("pool-unstake-head"))
	slotRequestTail     = sentinel.BytesToBytes32([]byte("pool-unstake-tail"))
)

// PooledStaking implements the pooled risk-capital engine.
type PooledStaking struct {
	addr     sentinel.Address
	state    *state.State
	registry *registry.Registry
	token    *token.Token
	params   *params.Params
	emitter  *events.Emitter
	events   *events.Bound

	stakers         *sstore.Mapping[sentinel.Address, *stakerEntry]
	stakes          *sstore.Mapping[pairKey, *big.Int]
	contractStaked  *sstore.Mapping[sentinel.Address, *big.Int]
	contractStakers *sstore.Mapping[sentinel.Address, []sentinel.Address]
	accumulated     *sstore.Mapping[sentinel.Address, *big.Int]
	burn            *sstore.Record[*pendingBurn]
	rewardQueue     *sstore.Mapping[index, *pendingReward]
	rewardFirst     *sstore.Counter
	rewardLast      *sstore.Counter
	requests        *sstore.Mapping[index, *unstakeRequest]
	requestCounter  *sstore.Counter
	requestHead     *sstore.Counter
	requestTail     *sstore.Counter
}

// New creates an instance bound to the given engine address. Deposited
// collateral is held on that address.
func New(
	addr sentinel.Address,
	state *state.State,
	reg *registry.Registry,
	tok *token.Token,
	par *params.Params,
	emitter *events.Emitter,
) *PooledStaking {
	context := sstore.NewContext(addr, state)
	return &PooledStaking{
		addr:            addr,
		state:           state,
		registry:        reg,
		token:           tok,
		params:          par,
		emitter:         emitter,
		events:          emitter.Bind(addr),
		stakers:         sstore.NewMapping[sentinel.Address, *stakerEntry](context, slotStakers),
		stakes:          sstore.NewMapping[pairKey, *big.Int](context, slotStakes),
		contractStaked:  sstore.NewMapping[sentinel.Address, *big.Int](context, slotContractStaked),
		contractStakers: sstore.NewMapping[sentinel.Address, []sentinel.Address](context, slotContractStakers),
		accumulated:     sstore.NewMapping[sentinel.Address, *big.Int](context, slotAccumulated),
		burn:            sstore.NewRecord[*pendingBurn](context, slotBurn),
		rewardQueue:     sstore.NewMapping[index, *pendingReward](context, slotRewardQueue),
		rewardFirst:     sstore.NewCounter(context, slotRewardFirst),
		rewardLast:      sstore.NewCounter(context, slotRewardLast),
		requests:        sstore.NewMapping[index, *unstakeRequest](context, slotRequests),
		requestCounter:  sstore.NewCounter(context, slotRequestCounter),
		requestHead:     sstore.NewCounter(context, slotRequestHead),
		requestTail:     sstore.NewCounter(context, slotRequestTail),
	}
}

// Address returns the engine address holding pooled collateral.
func (p *PooledStaking) Address() sentinel.Address {
	return p.addr
}

// revertable wraps a mutating entry point with all-or-nothing semantics.
func (p *PooledStaking) revertable(fn func() error) (err error) {
	checkpoint := p.state.NewCheckpoint()
	mark := p.emitter.Mark()
	if err = fn(); err != nil {
		p.state.RevertTo(checkpoint)
		p.emitter.RevertTo(mark)
	}
	return
}

// gaugeValue clamps a non-negative token amount to the int64 range the
// meters accept.
func gaugeValue(amount *big.Int) int64 {
	if amount.IsInt64() {
		return amount.Int64()
	}
	return math.MaxInt64
}

func (p *PooledStaking) requireNotPaused() error {
	paused, err := p.params.IsPaused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}

func (p *PooledStaking) getStaker(addr sentinel.Address) (*stakerEntry, error) {
	s, err := p.stakers.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get staker")
	}
	if s.Deposit == nil {
		s.Deposit = new(big.Int)
	}
	return s, nil
}

func (p *PooledStaking) setStaker(addr sentinel.Address, s *stakerEntry) error {
	if err := p.stakers.Set(addr, s); err != nil {
		return errors.Wrap(err, "failed to set staker")
	}
	return nil
}

func (p *PooledStaking) getStake(staker, contract sentinel.Address) (*big.Int, error) {
	v, err := p.stakes.Get(pairKey{staker: staker, contract: contract})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	if v == nil {
		v = new(big.Int)
	}
	return v, nil
}

func (p *PooledStaking) setStake(staker, contract sentinel.Address, v *big.Int) error {
	if err := p.stakes.Set(pairKey{staker: staker, contract: contract}, v); err != nil {
		return errors.Wrap(err, "failed to set stake")
	}
	return nil
}

func (p *PooledStaking) getContractStaked(contract sentinel.Address) (*big.Int, error) {
	v, err := p.contractStaked.Get(contract)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get contract stake")
	}
	if v == nil {
		v = new(big.Int)
	}
	return v, nil
}

func (p *PooledStaking) setContractStaked(contract sentinel.Address, v *big.Int) error {
	if err := p.contractStaked.Set(contract, v); err != nil {
		return errors.Wrap(err, "failed to set contract stake")
	}
	return nil
}

func (p *PooledStaking) maxExposure() (uint64, error) {
	return p.params.Uint64(sentinel.KeyMaxExposure, sentinel.InitialMaxExposure)
}

func (p *PooledStaking) unstakeLockTime() (uint64, error) {
	return p.params.Uint64(sentinel.KeyUnstakeLockTime, sentinel.InitialUnstakeLockTime)
}

// hasPendingActions reports whether an unprocessed burn or queued rewards
// exist. Deposits and burn pushes are blocked while they do, so the
// proportional denominators stay consistent.
func (p *PooledStaking) hasPendingActions() (bool, error) {
	b, err := p.burn.Get()
	if err != nil {
		return false, errors.Wrap(err, "failed to get pending burn")
	}
	if b.Pending {
		return true, nil
	}
	first, err := p.rewardFirst.Get()
	if err != nil {
		return false, err
	}
	last, err := p.rewardLast.Get()
	if err != nil {
		return false, err
	}
	return first < last, nil
}

// DepositOf returns the staker's free deposit.
func (p *PooledStaking) DepositOf(staker sentinel.Address) (*big.Int, error) {
	s, err := p.getStaker(staker)
	if err != nil {
		return nil, err
	}
	return s.Deposit, nil
}

// StakeOf returns the staker's stake on one contract.
func (p *PooledStaking) StakeOf(staker, contract sentinel.Address) (*big.Int, error) {
	return p.getStake(staker, contract)
}

// ContractStake returns the aggregate stake backing a contract.
func (p *PooledStaking) ContractStake(contract sentinel.Address) (*big.Int, error) {
	return p.getContractStaked(contract)
}

// ContractStakers lists the stakers backing a contract.
func (p *PooledStaking) ContractStakers(contract sentinel.Address) ([]sentinel.Address, error) {
	list, err := p.contractStakers.Get(contract)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get contract stakers")
	}
	return list, nil
}

// ContractsOf lists the contracts a staker backs, in canonical order.
func (p *PooledStaking) ContractsOf(staker sentinel.Address) ([]sentinel.Address, error) {
	s, err := p.getStaker(staker)
	if err != nil {
		return nil, err
	}
	return s.Contracts, nil
}
