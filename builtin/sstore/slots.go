// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sstore

import (
	"math/big"

	"github.com/covermutual/sentinel/sentinel"
)

// Uint256 wraps storage and retrieval of a big integer in a single slot,
// similar to an uint256 declared in a smart contract.
type Uint256 struct {
	context *Context
	pos     sentinel.Bytes32
}

// NewUint256 creates an Uint256 at the given position.
func NewUint256(context *Context, pos sentinel.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

// Get returns the stored value, zero when unset.
func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	if storage.IsZero() {
		return new(big.Int), nil
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

// Set stores the value. Values above 256 bits are truncated to fit.
func (u *Uint256) Set(value *big.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, sentinel.BytesToBytes32(value.Bytes()))
}

// Add increases the stored value by value.
func (u *Uint256) Add(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	stored.Add(stored, value)
	u.Set(stored)
	return nil
}

// Sub decreases the stored value by value.
func (u *Uint256) Sub(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	stored.Sub(stored, value)
	u.Set(stored)
	return nil
}

// Counter wraps an uint64 counter in a single slot.
type Counter struct {
	inner *Uint256
}

// NewCounter creates a Counter at the given position.
func NewCounter(context *Context, pos sentinel.Bytes32) *Counter {
	return &Counter{inner: NewUint256(context, pos)}
}

// Get returns the current count.
func (c *Counter) Get() (uint64, error) {
	v, err := c.inner.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Next increments the counter and returns the new count.
func (c *Counter) Next() (uint64, error) {
	v, err := c.Get()
	if err != nil {
		return 0, err
	}
	v++
	c.inner.Set(new(big.Int).SetUint64(v))
	return v, nil
}

// Set stores the count.
func (c *Counter) Set(v uint64) {
	c.inner.Set(new(big.Int).SetUint64(v))
}

// Bytes32Slot wraps storage and retrieval of a single 32-byte value.
type Bytes32Slot struct {
	context *Context
	pos     sentinel.Bytes32
}

// NewBytes32 creates a Bytes32Slot at the given position.
func NewBytes32(context *Context, pos sentinel.Bytes32) *Bytes32Slot {
	return &Bytes32Slot{context: context, pos: pos}
}

// Get returns the stored value.
func (b *Bytes32Slot) Get() (sentinel.Bytes32, error) {
	return b.context.state.GetStorage(b.context.address, b.pos)
}

// Set stores the value; nil clears the slot.
func (b *Bytes32Slot) Set(value *sentinel.Bytes32) {
	if value == nil {
		value = &sentinel.Bytes32{}
	}
	b.context.state.SetStorage(b.context.address, b.pos, *value)
}

// AddressSlot wraps storage and retrieval of a single address.
type AddressSlot struct {
	context *Context
	pos     sentinel.Bytes32
}

// NewAddress creates an AddressSlot at the given position.
func NewAddress(context *Context, pos sentinel.Bytes32) *AddressSlot {
	return &AddressSlot{context: context, pos: pos}
}

// Get returns the stored address.
func (a *AddressSlot) Get() (sentinel.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return sentinel.Address{}, err
	}
	return sentinel.BytesToAddress(storage.Bytes()), nil
}

// Set stores the address; nil clears the slot.
func (a *AddressSlot) Set(addr *sentinel.Address) {
	var storage sentinel.Bytes32
	if addr != nil {
		storage = sentinel.BytesToBytes32(addr.Bytes())
	}
	a.context.state.SetStorage(a.context.address, a.pos, storage)
}
