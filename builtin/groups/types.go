// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package groups

import "github.com/covermutual/sentinel/sentinel"

// GroupData is the batched query form of one assessor group.
type GroupData struct {
	ID        sentinel.GroupID
	Metadata  sentinel.Bytes32
	Assessors []sentinel.MemberID
}

// productType is the per-product assessment configuration.
type productType struct {
	CooldownPeriod uint64
	GroupID        uint64
}

// AssessmentData is the query form of a product-type configuration.
type AssessmentData struct {
	CooldownPeriod uint64
	GroupID        sentinel.GroupID
}
