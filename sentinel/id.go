// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sentinel

import "encoding/binary"

func idBytes(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// MemberID identifies an enrolled member. Zero is invalid.
type MemberID uint64

// Bytes returns the big-endian byte form, usable as a storage mapping key.
func (id MemberID) Bytes() []byte { return idBytes(uint64(id)) }

// GroupID identifies an assessor group. Zero is the "none" sentinel.
type GroupID uint64

// Bytes returns the big-endian byte form, usable as a storage mapping key.
func (id GroupID) Bytes() []byte { return idBytes(uint64(id)) }

// ClaimID identifies a claim, assigned externally by the claims engine.
type ClaimID uint64

// Bytes returns the big-endian byte form, usable as a storage mapping key.
func (id ClaimID) Bytes() []byte { return idBytes(uint64(id)) }

// ProductTypeID identifies a cover product type.
type ProductTypeID uint64

// Bytes returns the big-endian byte form, usable as a storage mapping key.
func (id ProductTypeID) Bytes() []byte { return idBytes(uint64(id)) }
