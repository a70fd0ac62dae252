// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package assessment implements the claim settlement engine: per-claim
// stake-weighted polls, the staking ledger backing them, pro-rata reward
// distribution over each staker's vote history, and merkle-proof driven
// fraud slashing.
//
// Every mutating entry point runs under a state checkpoint; a failed call
// reverts both storage and emitted events, so partial effects never
// persist.
package assessment

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/covermutual/sentinel/builtin/events"
	"github.com/covermutual/sentinel/builtin/groups"
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

var logger = log.WithContext("pkg", "assessment")

// fraudVoteExtension is the minimum voting time a poll keeps after losing
// a vote to fraud cancellation. A non-zero state slot overrides the
// compiled-in default.
var fraudVoteExtension = sstore.NewConfigVariable("fraud-vote-extension", sentinel.FraudVoteExtension)

var (
	metricPollsOpened = metrics.LazyLoadCounter("assessment_polls_opened_count")
	metricVotesCast   = metrics.LazyLoadCounter("assessment_votes_cast_count")
	metricStakeLocked = metrics.LazyLoadGauge("assessment_stake_locked_gauge")
	metricFraudBurns  = metrics.LazyLoadCounter("assessment_fraud_burns_count")
)

var (
	// ErrPaused the global pause flag is set.
	ErrPaused = reverts.New("system is paused")
	// ErrNotMember the caller holds no protocol membership.
	ErrNotMember = reverts.New("caller is not a member")
	// ErrUnauthorized the caller lacks the role the operation requires.
	ErrUnauthorized = reverts.New("unauthorized")
	// ErrOnlyTokenController the operation is restricted to the token controller.
	ErrOnlyTokenController = reverts.New("only token controller")
	// ErrInvalidClaimID no assessment exists for the claim.
	ErrInvalidClaimID = reverts.New("invalid claim id")
	// ErrInvalidProductType the product type has no assessing group configured.
	ErrInvalidProductType = reverts.New("invalid product type")
	// ErrInvalidAmount the amount is zero, negative or exceeds the balance.
	ErrInvalidAmount = reverts.New("invalid amount")
	// ErrAssessmentAlreadyExists the claim already has an assessment.
	ErrAssessmentAlreadyExists = reverts.New("assessment already exists")
	// ErrAlreadyVoted the assessor already holds a ballot on the claim.
	ErrAlreadyVoted = reverts.New("already voted")
	// ErrHasNotVoted the assessor holds no ballot on the claim.
	ErrHasNotVoted = reverts.New("has not voted")
	// ErrVotingPeriodEnded the voting window has closed.
	ErrVotingPeriodEnded = reverts.New("voting period ended")
	// ErrVotingAlreadyClosed the voting window is already over.
	ErrVotingAlreadyClosed = reverts.New("voting already closed")
	// ErrNotEverybodyVoted not every group assessor has voted yet.
	ErrNotEverybodyVoted = reverts.New("not everybody voted")
	// ErrAssessmentCooldownPassed the cooldown has fully elapsed.
	ErrAssessmentCooldownPassed = reverts.New("assessment cooldown passed")
	// ErrStakeLockedForAssessment the post-vote lockup has not elapsed.
	ErrStakeLockedForAssessment = reverts.New("stake is in lockup period")
	// ErrStakeLockedForGovernance redirected withdrawal while governance-locked.
	ErrStakeLockedForGovernance = reverts.New("stake locked for governance voting")
	// ErrNoWithdrawableRewards no finalized rewards are available.
	ErrNoWithdrawableRewards = reverts.New("no withdrawable rewards")
	// ErrInvalidFraudProof the merkle proof does not match a stored root.
	ErrInvalidFraudProof = reverts.New("invalid fraud proof")
)

// Assessment implements the claim settlement engine.
type Assessment struct {
	addr     sentinel.Address
	state    *state.State
	registry *registry.Registry
	token    *token.Token
	groups   *groups.Groups
	params   *params.Params
	emitter  *events.Emitter
	events   *events.Bound

	polls        *sstore.Mapping[sentinel.ClaimID, *poll]
	ballots      *sstore.Mapping[ballotKey, *ballot]
	stakes       *sstore.Mapping[sentinel.Address, *stakeEntry]
	voteLog      *sstore.Mapping[voteKey, *voteRecord]
	fraudRoots   *sstore.Mapping[index, sentinel.Bytes32]
	fraudCursors *sstore.Mapping[fraudKey, *fraudCursor]
	fraudCounter *sstore.Counter
}

// New creates an instance bound to the given engine address. Stake
// collateral and undistributed rewards are held on that address.
func New(
	addr sentinel.Address,
	state *state.State,
	reg *registry.Registry,
	tok *token.Token,
	grp *groups.Groups,
	par *params.Params,
	emitter *events.Emitter,
) *Assessment {
	context := sstore.NewContext(addr, state)
	fraudVoteExtension.Override(context)
	return &Assessment{
		addr:         addr,
		state:        state,
		registry:     reg,
		token:        tok,
		groups:       grp,
		params:       par,
		emitter:      emitter,
		events:       emitter.Bind(addr),
		polls:        sstore.NewMapping[sentinel.ClaimID, *poll](context, slotPolls),
		ballots:      sstore.NewMapping[ballotKey, *ballot](context, slotBallots),
		stakes:       sstore.NewMapping[sentinel.Address, *stakeEntry](context, slotStakes),
		voteLog:      sstore.NewMapping[voteKey, *voteRecord](context, slotVoteLog),
		fraudRoots:   sstore.NewMapping[index, sentinel.Bytes32](context, slotFraudRoots),
		fraudCursors: sstore.NewMapping[fraudKey, *fraudCursor](context, slotFraudCursors),
		fraudCounter: sstore.NewCounter(context, slotFraudCounter),
	}
}

// Address returns the engine address holding staked collateral.
func (a *Assessment) Address() sentinel.Address {
	return a.addr
}

// revertable wraps a mutating entry point with all-or-nothing semantics.
func (a *Assessment) revertable(fn func() error) (err error) {
	checkpoint := a.state.NewCheckpoint()
	mark := a.emitter.Mark()
	if err = fn(); err != nil {
		a.state.RevertTo(checkpoint)
		a.emitter.RevertTo(mark)
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

func (a *Assessment) requireNotPaused() error {
	paused, err := a.params.IsPaused()
	if err != nil {
		return err
	}
	if paused {
		return ErrPaused
	}
	return nil
}

func (a *Assessment) requireRole(caller sentinel.Address, role registry.Role, failure error) error {
	ok, err := a.registry.HasRole(caller, role)
	if err != nil {
		return err
	}
	if !ok {
		return failure
	}
	return nil
}

func (a *Assessment) getPoll(claimID sentinel.ClaimID) (*poll, error) {
	p, err := a.polls.Get(claimID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get poll")
	}
	return p, nil
}

func (a *Assessment) setPoll(claimID sentinel.ClaimID, p *poll) error {
	if err := a.polls.Set(claimID, p); err != nil {
		return errors.Wrap(err, "failed to set poll")
	}
	return nil
}

func (a *Assessment) getBallot(claimID sentinel.ClaimID, memberID sentinel.MemberID) (*ballot, error) {
	b, err := a.ballots.Get(ballotKey{claim: claimID, member: memberID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ballot")
	}
	return b, nil
}

func (a *Assessment) setBallot(claimID sentinel.ClaimID, memberID sentinel.MemberID, b *ballot) error {
	if err := a.ballots.Set(ballotKey{claim: claimID, member: memberID}, b); err != nil {
		return errors.Wrap(err, "failed to set ballot")
	}
	return nil
}

func (a *Assessment) getStake(staker sentinel.Address) (*stakeEntry, error) {
	s, err := a.stakes.Get(staker)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	if s.Amount == nil {
		s.Amount = new(big.Int)
	}
	return s, nil
}

func (a *Assessment) setStake(staker sentinel.Address, s *stakeEntry) error {
	if err := a.stakes.Set(staker, s); err != nil {
		return errors.Wrap(err, "failed to set stake")
	}
	return nil
}

func (a *Assessment) getVoteRecord(staker sentinel.Address, i uint64) (*voteRecord, error) {
	r, err := a.voteLog.Get(voteKey{staker: staker, index: i})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get vote record")
	}
	return r, nil
}

func (a *Assessment) setVoteRecord(staker sentinel.Address, i uint64, r *voteRecord) error {
	if err := a.voteLog.Set(voteKey{staker: staker, index: i}, r); err != nil {
		return errors.Wrap(err, "failed to set vote record")
	}
	return nil
}

// minVotingPeriod reads the governed voting window length.
func (a *Assessment) minVotingPeriod() (uint64, error) {
	return a.params.Uint64(sentinel.KeyMinVotingPeriod, sentinel.InitialMinVotingPeriod)
}

// stakeLockupPeriod reads the governed post-vote lockup length.
func (a *Assessment) stakeLockupPeriod() (uint64, error) {
	return a.params.Uint64(sentinel.KeyStakeLockupPeriod, sentinel.InitialStakeLockupPeriod)
}

// defaultCooldown reads the governed fallback cooldown length.
func (a *Assessment) defaultCooldown() (uint64, error) {
	return a.params.Uint64(sentinel.KeyPayoutCooldown, sentinel.InitialPayoutCooldown)
}
