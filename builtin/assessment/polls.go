// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"math/big"

	"github.com/covermutual/sentinel/builtin/registry"
	"github.com/covermutual/sentinel/sentinel"
)

// StartAssessment opens a poll for the claim. Only the claims engine may
// call it. The assessing group and cooldown come from the product-type
// configuration; a non-zero cooldownPeriod argument overrides the
// configured one. The assessment reward is minted to the engine pool up
// front and distributed pro-rata as stakers withdraw.
func (a *Assessment) StartAssessment(caller sentinel.Address, claimID sentinel.ClaimID, productTypeID sentinel.ProductTypeID, cooldownPeriod, now uint64) error {
	return a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		if err := a.requireRole(caller, registry.RoleClaims, ErrUnauthorized); err != nil {
			return err
		}
		data, err := a.groups.AssessmentDataFor(productTypeID)
		if err != nil {
			return err
		}
		if data.GroupID == 0 {
			return ErrInvalidProductType
		}
		existing, err := a.getPoll(claimID)
		if err != nil {
			return err
		}
		if !existing.IsEmpty() {
			return ErrAssessmentAlreadyExists
		}

		if cooldownPeriod == 0 {
			cooldownPeriod = data.CooldownPeriod
		}
		if cooldownPeriod == 0 {
			if cooldownPeriod, err = a.defaultCooldown(); err != nil {
				return err
			}
		}
		votingPeriod, err := a.minVotingPeriod()
		if err != nil {
			return err
		}

		reward, err := a.params.Get(sentinel.KeyAssessmentReward)
		if err != nil {
			return err
		}
		if reward.Sign() == 0 {
			reward = new(big.Int).Set(sentinel.InitialAssessmentReward)
		}
		if err := a.token.Mint(a.addr, reward); err != nil {
			return err
		}

		p := &poll{
			GroupID:         uint64(data.GroupID),
			Start:           now,
			VotingEnd:       now + votingPeriod,
			CooldownPeriod:  cooldownPeriod,
			TotalReward:     reward,
			TotalVotedStake: new(big.Int),
		}
		if err := a.setPoll(claimID, p); err != nil {
			return err
		}
		a.events.Emit("AssessmentStarted", claimID, data.GroupID, p.Start, p.VotingEnd)
		metricPollsOpened().Add(1)
		logger.Debug("assessment started",
			"claimID", uint64(claimID), "groupID", uint64(data.GroupID), "votingEnd", p.VotingEnd)
		return nil
	})
}

// CastVote records the caller's ballot on the claim. The caller must be a
// member and an assessor in the claim's assigned group, and may vote only
// once per claim. The ballot snapshots the caller's stake at vote time for
// later pro-rata reward computation.
func (a *Assessment) CastVote(caller sentinel.Address, claimID sentinel.ClaimID, support bool, ipfsHash sentinel.Bytes32, now uint64) error {
	return a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		if err := a.requireRole(caller, registry.RoleMember, ErrNotMember); err != nil {
			return err
		}
		memberID, err := a.registry.MemberIDOf(caller)
		if err != nil {
			return err
		}
		p, err := a.getPoll(claimID)
		if err != nil {
			return err
		}
		if p.IsEmpty() {
			return ErrInvalidClaimID
		}
		inGroup, err := a.groups.IsAssessorInGroup(memberID, sentinel.GroupID(p.GroupID))
		if err != nil {
			return err
		}
		if !inGroup {
			return ErrUnauthorized
		}
		if now > p.VotingEnd {
			return ErrVotingPeriodEnded
		}
		existing, err := a.getBallot(claimID, memberID)
		if err != nil {
			return err
		}
		if !existing.IsEmpty() {
			return ErrAlreadyVoted
		}

		stake, err := a.getStake(caller)
		if err != nil {
			return err
		}
		snapshot := new(big.Int).Set(stake.Amount)

		if err := a.setBallot(claimID, memberID, &ballot{
			Support:       support,
			Timestamp:     now,
			StakeSnapshot: snapshot,
			Metadata:      ipfsHash,
		}); err != nil {
			return err
		}
		if support {
			p.AcceptVotes++
		} else {
			p.DenyVotes++
		}
		p.TotalVotedStake = new(big.Int).Add(p.TotalVotedStake, snapshot)
		if err := a.setPoll(claimID, p); err != nil {
			return err
		}

		if err := a.setVoteRecord(caller, stake.VoteCount, &voteRecord{
			ClaimID:       uint64(claimID),
			Accepted:      support,
			Timestamp:     now,
			StakeSnapshot: snapshot,
		}); err != nil {
			return err
		}
		stake.VoteCount++
		stake.LastVoteTimestamp = now
		if err := a.setStake(caller, stake); err != nil {
			return err
		}

		a.events.Emit("VoteCast", claimID, caller, memberID, support, ipfsHash)
		metricVotesCast().Add(1)
		return nil
	})
}

// UndoVotes clears the assessor's ballots on the given claims and fixes
// the tallies. Governor-only; it is a recovery action and therefore works
// in any poll phase and while the system is paused.
func (a *Assessment) UndoVotes(caller sentinel.Address, memberID sentinel.MemberID, claimIDs []sentinel.ClaimID) error {
	return a.revertable(func() error {
		ok, err := a.registry.IsGovernor(caller)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnauthorized
		}
		staker, err := a.registry.AddressOf(memberID)
		if err != nil {
			return err
		}
		for _, claimID := range claimIDs {
			b, err := a.getBallot(claimID, memberID)
			if err != nil {
				return err
			}
			if b.IsEmpty() {
				return ErrHasNotVoted
			}
			p, err := a.getPoll(claimID)
			if err != nil {
				return err
			}
			if b.Support {
				p.AcceptVotes--
			} else {
				p.DenyVotes--
			}
			p.TotalVotedStake = new(big.Int).Sub(p.TotalVotedStake, b.StakeSnapshot)
			if err := a.setPoll(claimID, p); err != nil {
				return err
			}
			if err := a.setBallot(claimID, memberID, &ballot{}); err != nil {
				return err
			}
			if err := a.tombstoneVote(staker, claimID); err != nil {
				return err
			}
			a.events.Emit("VoteUndone", claimID, memberID)
		}
		return nil
	})
}

// tombstoneVote marks the staker's live vote history entry for the claim
// as cancelled, keeping the log append-only.
func (a *Assessment) tombstoneVote(staker sentinel.Address, claimID sentinel.ClaimID) error {
	stake, err := a.getStake(staker)
	if err != nil {
		return err
	}
	for i := uint64(0); i < stake.VoteCount; i++ {
		r, err := a.getVoteRecord(staker, i)
		if err != nil {
			return err
		}
		if r.ClaimID == uint64(claimID) && r.Timestamp != 0 {
			r.Timestamp = 0
			return a.setVoteRecord(staker, i, r)
		}
	}
	return nil
}

// CloseVotingEarly ends the voting window now, provided every assessor in
// the claim's group has voted. Anyone may call it. An empty group is
// trivially closable.
func (a *Assessment) CloseVotingEarly(claimID sentinel.ClaimID, now uint64) error {
	return a.revertable(func() error {
		if err := a.requireNotPaused(); err != nil {
			return err
		}
		p, err := a.getPoll(claimID)
		if err != nil {
			return err
		}
		if p.IsEmpty() {
			return ErrInvalidClaimID
		}
		if now >= p.VotingEnd {
			return ErrVotingAlreadyClosed
		}
		groupCount, err := a.groups.GetGroupAssessorCount(sentinel.GroupID(p.GroupID))
		if err != nil {
			return err
		}
		if p.AcceptVotes+p.DenyVotes < groupCount {
			return ErrNotEverybodyVoted
		}
		p.VotingEnd = now
		if err := a.setPoll(claimID, p); err != nil {
			return err
		}
		a.events.Emit("VotingEndChanged", claimID, now)
		return nil
	})
}

// ExtendVotingPeriod restarts the voting window from now, unconditionally.
// Governor-only; it is a recovery action and therefore reopens voting even
// after the cooldown has passed and works while the system is paused.
func (a *Assessment) ExtendVotingPeriod(caller sentinel.Address, claimID sentinel.ClaimID, now uint64) error {
	return a.restartVoting(caller, claimID, now, true)
}

// ResetVotingPeriod restarts the voting window from now, but refuses once
// the cooldown has fully elapsed or while the system is paused.
// Governor-only.
func (a *Assessment) ResetVotingPeriod(caller sentinel.Address, claimID sentinel.ClaimID, now uint64) error {
	return a.restartVoting(caller, claimID, now, false)
}

func (a *Assessment) restartVoting(caller sentinel.Address, claimID sentinel.ClaimID, now uint64, recovery bool) error {
	return a.revertable(func() error {
		if !recovery {
			if err := a.requireNotPaused(); err != nil {
				return err
			}
		}
		ok, err := a.registry.IsGovernor(caller)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnauthorized
		}
		p, err := a.getPoll(claimID)
		if err != nil {
			return err
		}
		if p.IsEmpty() {
			return ErrInvalidClaimID
		}
		if !recovery && now > p.VotingEnd+p.CooldownPeriod {
			return ErrAssessmentCooldownPassed
		}
		votingPeriod, err := a.minVotingPeriod()
		if err != nil {
			return err
		}
		p.VotingEnd = now + votingPeriod
		if err := a.setPoll(claimID, p); err != nil {
			return err
		}
		a.events.Emit("VotingEndChanged", claimID, p.VotingEnd)
		return nil
	})
}

// GetAssessment returns the poll for the claim; unknown claims yield the
// zero value without error.
func (a *Assessment) GetAssessment(claimID sentinel.ClaimID) (*Poll, error) {
	p, err := a.getPoll(claimID)
	if err != nil {
		return nil, err
	}
	out := &Poll{
		ClaimID:         claimID,
		GroupID:         sentinel.GroupID(p.GroupID),
		Start:           p.Start,
		VotingEnd:       p.VotingEnd,
		CooldownPeriod:  p.CooldownPeriod,
		AcceptVotes:     p.AcceptVotes,
		DenyVotes:       p.DenyVotes,
		TotalReward:     p.TotalReward,
		TotalVotedStake: p.TotalVotedStake,
	}
	if out.TotalReward == nil {
		out.TotalReward = new(big.Int)
	}
	if out.TotalVotedStake == nil {
		out.TotalVotedStake = new(big.Int)
	}
	return out, nil
}

// GetAssessmentResult computes the lazy outcome at now. It stays
// ResultPending until voting and cooldown both elapse; equal tallies,
// including zero-zero, resolve to ResultDraw.
func (a *Assessment) GetAssessmentResult(claimID sentinel.ClaimID, now uint64) (Result, error) {
	p, err := a.getPoll(claimID)
	if err != nil {
		return ResultPending, err
	}
	if p.IsEmpty() {
		return ResultPending, ErrInvalidClaimID
	}
	return p.result(now), nil
}

// AssessorGroupOf returns the group assigned to the claim's assessment.
func (a *Assessment) AssessorGroupOf(claimID sentinel.ClaimID) (sentinel.GroupID, error) {
	p, err := a.getPoll(claimID)
	if err != nil {
		return 0, err
	}
	if p.IsEmpty() {
		return 0, ErrInvalidClaimID
	}
	return sentinel.GroupID(p.GroupID), nil
}
