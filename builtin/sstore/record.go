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

// Record wraps storage and retrieval of a single RLP-encoded value at a
// fixed position.
type Record[V any] struct {
	context *Context
	pos     sentinel.Bytes32
}

// NewRecord creates a Record at the given position.
func NewRecord[V any](context *Context, pos sentinel.Bytes32) *Record[V] {
	return &Record[V]{context: context, pos: pos}
}

// Get retrieves the stored value; a missing record yields the zero value
// (allocated, for pointer types).
func (r *Record[V]) Get() (value V, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
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

// Set stores the value.
func (r *Record[V]) Set(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Clear removes the stored value.
func (r *Record[V]) Clear() error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return nil, nil
	})
}
