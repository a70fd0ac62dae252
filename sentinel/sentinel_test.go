// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sentinel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x00000000000000000000000000000000000000ff")
	assert.Nil(t, err)
	assert.Equal(t, BytesToAddress([]byte{0xff}), *addr)

	// the 0x prefix is optional
	bare, err := ParseAddress("00000000000000000000000000000000000000ff")
	assert.Nil(t, err)
	assert.Equal(t, *addr, *bare)

	_, err = ParseAddress("0xff")
	assert.Error(t, err)
	_, err = ParseAddress("zz000000000000000000000000000000000000ff")
	assert.Error(t, err)

	assert.Equal(t, "0x00000000000000000000000000000000000000ff", addr.String())
	assert.False(t, addr.IsZero())
	assert.True(t, Address{}.IsZero())
}

func TestBytes32JSON(t *testing.T) {
	b32 := MustParseBytes32("0x00000000000000000000000000000000000000000000000000000000000000aa")

	data, err := json.Marshal(&b32)
	assert.Nil(t, err)
	assert.Equal(t, `"`+b32.String()+`"`, string(data))

	var decoded Bytes32
	assert.Nil(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b32, decoded)

	_, err = ParseBytes32("0xaa")
	assert.Error(t, err)
}

func TestHashes(t *testing.T) {
	// variadic pieces hash identically to their concatenation
	assert.Equal(t, Blake2b([]byte("hello world")), Blake2b([]byte("hello"), []byte(" world")))
	assert.Equal(t, Keccak256([]byte("hello world")), Keccak256([]byte("hello"), []byte(" world")))
	assert.NotEqual(t, Blake2b([]byte("a")), Keccak256([]byte("a")))
}

func TestIDBytes(t *testing.T) {
	// big-endian keys sort numerically
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, MemberID(256).Bytes())
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 7}, ClaimID(7).Bytes())
}
