// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sentinel

import (
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// NewBlake2b returns a blake2b-256 hasher.
func NewBlake2b() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

// Blake2b computes the blake2b-256 checksum of the concatenation of data.
// It is the hash used to derive storage slot positions.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	return Blake2bFn(func(w io.Writer) {
		for _, b := range data {
			w.Write(b)
		}
	})
}

// Blake2bFn computes the blake2b-256 checksum of whatever fn writes.
func Blake2bFn(fn func(w io.Writer)) (h Bytes32) {
	hasher := NewBlake2b()
	fn(hasher)
	hasher.Sum(h[:0])
	return
}

// Keccak256 computes the legacy keccak-256 checksum of the concatenation of data.
// Fraud proof leaves are keccak hashed for interoperability with external
// Merkle tooling.
func Keccak256(data ...[]byte) (h Bytes32) {
	hasher := sha3.NewLegacyKeccak256()
	for _, b := range data {
		hasher.Write(b)
	}
	hasher.Sum(h[:0])
	return
}
