// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"bytes"
	"math/big"

	"github.com/covermutual/sentinel/sentinel"
)

// fraudLeaf encodes one fraud-proof leaf:
// staker ‖ lastFraudulentVoteIndex ‖ burnAmount ‖ fraudCount, with the
// integers left-padded to 32 bytes. The encoding is fixed; roots computed
// elsewhere over the same tuple verify against it bit for bit.
func fraudLeaf(staker sentinel.Address, lastFraudulentVoteIndex uint64, burnAmount *big.Int, fraudCount uint64) sentinel.Bytes32 {
	buf := make([]byte, 0, 20+3*32)
	buf = append(buf, staker.Bytes()...)
	buf = append(buf, sentinel.BytesToBytes32(new(big.Int).SetUint64(lastFraudulentVoteIndex).Bytes()).Bytes()...)
	buf = append(buf, sentinel.BytesToBytes32(burnAmount.Bytes()).Bytes()...)
	buf = append(buf, sentinel.BytesToBytes32(new(big.Int).SetUint64(fraudCount).Bytes()).Bytes()...)
	return sentinel.Keccak256(buf)
}

// verifyProof checks a sorted-pair merkle inclusion proof of leaf against
// root. Sibling order is canonical: the lexicographically smaller hash
// goes first, so proofs carry no position bits.
func verifyProof(proof []sentinel.Bytes32, root, leaf sentinel.Bytes32) bool {
	computed := leaf
	for _, sibling := range proof {
		if bytes.Compare(computed.Bytes(), sibling.Bytes()) <= 0 {
			computed = sentinel.Keccak256(computed.Bytes(), sibling.Bytes())
		} else {
			computed = sentinel.Keccak256(sibling.Bytes(), computed.Bytes())
		}
	}
	return computed == root
}
