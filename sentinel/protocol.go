// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sentinel

import "math/big"

// Keys of governance params.
var (
	// KeyPauseFlags non-zero pauses all mutating entry points except
	// explicitly exempted governance recovery paths.
	KeyPauseFlags = BytesToBytes32([]byte("pause-flags"))
	// KeyMinVotingPeriod length of the initial voting window, in seconds.
	KeyMinVotingPeriod = BytesToBytes32([]byte("min-voting-period"))
	// KeyStakeLockupPeriod time a staker must wait after their last vote
	// before unstaking, in seconds.
	KeyStakeLockupPeriod = BytesToBytes32([]byte("stake-lockup-period"))
	// KeyPayoutCooldown default cooldown after voting closes, in seconds.
	// Product type configuration overrides it per product.
	KeyPayoutCooldown = BytesToBytes32([]byte("payout-cooldown"))
	// KeyAssessmentReward total reward minted per assessment, distributed
	// pro-rata among participating stakers.
	KeyAssessmentReward = BytesToBytes32([]byte("assessment-reward"))
	// KeyMaxExposure leverage cap: total pooled stake may not exceed
	// deposit * max-exposure.
	KeyMaxExposure = BytesToBytes32([]byte("max-exposure"))
	// KeyUnstakeLockTime minimum age of a pooled unstake request before it
	// may be processed, in seconds.
	KeyUnstakeLockTime = BytesToBytes32([]byte("unstake-lock-time"))
)

// InitialAssessmentReward default total reward minted per assessment,
// in base token units (50 tokens at 18 decimals).
var InitialAssessmentReward, _ = new(big.Int).SetString("50000000000000000000", 10)

const (
	// InitialMinVotingPeriod default voting window: 3 days.
	InitialMinVotingPeriod = uint64(3 * 24 * 3600)
	// InitialStakeLockupPeriod default post-vote lockup: 14 days.
	InitialStakeLockupPeriod = uint64(14 * 24 * 3600)
	// InitialPayoutCooldown default cooldown: 1 day.
	InitialPayoutCooldown = uint64(24 * 3600)
	// InitialMaxExposure default leverage cap.
	InitialMaxExposure = uint64(10)
	// InitialUnstakeLockTime default pooled unstake lock: 90 days.
	InitialUnstakeLockTime = uint64(90 * 24 * 3600)
	// FraudVoteExtension polls losing votes to fraud cancellation keep at
	// least this much voting time remaining: 24 hours.
	FraudVoteExtension = uint64(24 * 3600)
)
