// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pooledstaking

import (
	"encoding/binary"
	"math/big"

	"github.com/covermutual/sentinel/sentinel"
)

// stakerEntry is the per-staker pooled record: the free-floating deposit
// and the canonical ordered list of contracts the staker backs.
type stakerEntry struct {
	Deposit   *big.Int
	Contracts []sentinel.Address
}

// pendingBurn is the single in-flight burn. Amount is capped at the
// contract's aggregate stake at push time; InitialStake is the proportional
// denominator while the staker list is walked.
type pendingBurn struct {
	Contract     sentinel.Address
	Amount       *big.Int
	InitialStake *big.Int
	BurnedAt     uint64
	NextStaker   uint64 // cursor into the contract staker list
	Pending      bool
}

// pendingReward is one queued reward distribution. InitialStake is zero
// until processing begins, then holds the aggregate stake denominator.
type pendingReward struct {
	Contract     sentinel.Address
	Amount       *big.Int
	InitialStake *big.Int
	NextStaker   uint64
}

// unstakeRequest is one node of the time-ordered unstake queue.
type unstakeRequest struct {
	Staker    sentinel.Address
	Contract  sentinel.Address
	Amount    *big.Int
	UnstakeAt uint64
	Next      uint64 // id of the next request, zero at the tail
}

func (r *unstakeRequest) IsEmpty() bool {
	return r.UnstakeAt == 0
}

// index is a plain position usable as a mapping key.
type index uint64

func (i index) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	return b[:]
}

// pairKey addresses one staker's stake on one contract.
type pairKey struct {
	staker   sentinel.Address
	contract sentinel.Address
}

func (k pairKey) Bytes() []byte {
	return append(k.staker.Bytes(), k.contract.Bytes()...)
}
