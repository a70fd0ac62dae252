// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import "github.com/covermutual/sentinel/sentinel"

// Role is a capability bit granted to an enrolled account.
type Role uint8

const (
	// RoleMember ordinary protocol membership; required for staking and voting.
	RoleMember Role = 1 << iota
	// RoleGovernor may call governor-only operations.
	RoleGovernor
	// RoleClaims the claims engine; may open assessments.
	RoleClaims
	// RoleTokenController may unstake on behalf of members.
	RoleTokenController
	// RoleInternal internal engines; may push pooled burns and rewards.
	RoleInternal
)

// entry is a member record, linked into the enrolment list.
type entry struct {
	ID     uint64 // member id, sequential and 1-based
	Roles  uint8
	Listed bool
	Prev   *sentinel.Address `rlp:"nil"`
	Next   *sentinel.Address `rlp:"nil"`
}

// IsEmpty returns whether the entry can be treated as absent.
func (e *entry) IsEmpty() bool {
	return e.ID == 0
}

// Member is the query form of an enrolment record.
type Member struct {
	Address sentinel.Address
	ID      sentinel.MemberID
	Roles   Role
}
