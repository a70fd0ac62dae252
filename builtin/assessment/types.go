// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"math/big"

	"github.com/covermutual/sentinel/sentinel"
)

// Result is the outcome of a finalized poll.
type Result byte

const (
	// ResultPending the poll is still in its voting or cooldown window.
	ResultPending Result = iota
	// ResultAccepted accept ballots outnumber deny ballots.
	ResultAccepted
	// ResultDenied deny ballots outnumber accept ballots.
	ResultDenied
	// ResultDraw tallies are equal, including zero-zero.
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultPending:
		return "pending"
	case ResultAccepted:
		return "accepted"
	case ResultDenied:
		return "denied"
	case ResultDraw:
		return "draw"
	}
	return "unknown"
}

// poll is the stored per-claim assessment record.
type poll struct {
	GroupID         uint64
	Start           uint64
	VotingEnd       uint64
	CooldownPeriod  uint64
	AcceptVotes     uint64
	DenyVotes       uint64
	TotalReward     *big.Int
	TotalVotedStake *big.Int
}

func (p *poll) IsEmpty() bool {
	return p.VotingEnd == 0
}

// result computes the lazy outcome at the given time.
func (p *poll) result(now uint64) Result {
	if now <= p.VotingEnd+p.CooldownPeriod {
		return ResultPending
	}
	switch {
	case p.AcceptVotes > p.DenyVotes:
		return ResultAccepted
	case p.DenyVotes > p.AcceptVotes:
		return ResultDenied
	default:
		return ResultDraw
	}
}

// Poll is the query form of a per-claim assessment. Unknown claims yield
// the zero value.
type Poll struct {
	ClaimID         sentinel.ClaimID
	GroupID         sentinel.GroupID
	Start           uint64
	VotingEnd       uint64
	CooldownPeriod  uint64
	AcceptVotes     uint64
	DenyVotes       uint64
	TotalReward     *big.Int
	TotalVotedStake *big.Int
}

// ballot is one assessor's stored vote on one claim. A zero timestamp
// means no vote, or a vote undone.
type ballot struct {
	Support       bool
	Timestamp     uint64
	StakeSnapshot *big.Int
	Metadata      sentinel.Bytes32
}

func (b *ballot) IsEmpty() bool {
	return b.Timestamp == 0
}

// stakeEntry is the per-staker collateral and bookkeeping record.
type stakeEntry struct {
	Amount                     *big.Int
	VoteCount                  uint64
	LastVoteTimestamp          uint64
	RewardsWithdrawnUntilIndex uint64
	FraudCount                 uint64
}

// voteRecord is one entry of a staker's append-only vote history. A zero
// timestamp is a tombstone left by fraud cancellation or an undone vote.
type voteRecord struct {
	ClaimID       uint64
	Accepted      bool
	Timestamp     uint64
	StakeSnapshot *big.Int
}

// Rewards summarises a staker's reward position.
type Rewards struct {
	TotalPending           *big.Int
	Withdrawable           *big.Int
	WithdrawableUntilIndex uint64
}

// fraudCursor tracks batch progress of one fraud proof against one staker.
type fraudCursor struct {
	ProcessedUntil uint64
	BurnDone       bool
}
