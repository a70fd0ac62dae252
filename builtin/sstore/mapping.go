// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sstore

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/covermutual/sentinel/sentinel"
)

// Key constrains mapping keys to byte-representable types.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction, similar to a mapping in a
// smart contract. Value positions are derived by hashing the key with the
// mapping's base position, so distinct mappings never collide.
type Mapping[K Key, V any] struct {
	context *Context
	basePos sentinel.Bytes32
}

// NewMapping creates a mapping rooted at the given position.
func NewMapping[K Key, V any](context *Context, pos sentinel.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

// Get retrieves the value stored under key. A missing entry yields the
// zero value (allocated, for pointer types).
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	position := sentinel.Blake2b(key.Bytes(), m.basePos.Bytes())
	err = m.context.state.DecodeStorage(m.context.address, position, func(raw []byte) error {
		if reflect.ValueOf(&value).Elem().Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores the value under key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	position := sentinel.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(m.context.address, position, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete removes the entry stored under key.
func (m *Mapping[K, V]) Delete(key K) error {
	position := sentinel.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(m.context.address, position, func() ([]byte, error) {
		return nil, nil
	})
}
