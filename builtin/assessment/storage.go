// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"encoding/binary"

	"github.com/covermutual/sentinel/sentinel"
)

var (
	slotPolls        = sentinel.BytesToBytes32([]byte("polls"))
	slotBallots      = sentinel.BytesToBytes32([]byte("ballots"))
	slotStakes       = sentinel.BytesToBytes32([]byte("stakes"))
	slotVoteLog      = sentinel.BytesToBytes32([]byte("vote-log"))
	slotFraudRoots   = sentinel.BytesToBytes32([]byte("fraud-roots"))
	slotFraudCursors = sentinel.BytesToBytes32([]byte("fraud-cursors"))
	slotFraudCounter = sentinel.BytesToBytes32([]byte("fraud-counter"))
)

// index is a plain position usable as a mapping key.
type index uint64

func (i index) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	return b[:]
}

// ballotKey addresses one assessor's ballot on one claim.
type ballotKey struct {
	claim  sentinel.ClaimID
	member sentinel.MemberID
}

func (k ballotKey) Bytes() []byte {
	return append(k.claim.Bytes(), k.member.Bytes()...)
}

// voteKey addresses one entry of a staker's vote history.
type voteKey struct {
	staker sentinel.Address
	index  uint64
}

func (k voteKey) Bytes() []byte {
	return append(k.staker.Bytes(), index(k.index).Bytes()...)
}

// fraudKey addresses the batch cursor of one fraud proof against one staker.
type fraudKey struct {
	root   uint64
	staker sentinel.Address
}

func (k fraudKey) Bytes() []byte {
	return append(index(k.root).Bytes(), k.staker.Bytes()...)
}
