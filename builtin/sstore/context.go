// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sstore provides contract-style storage primitives: typed slots and
// mappings with hash-derived positions, RLP-encoded into the state under an
// engine's address.
package sstore

import (
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

// Context binds storage primitives to an engine address and a state.
type Context struct {
	address sentinel.Address
	state   *state.State
}

// NewContext creates a storage context.
func NewContext(address sentinel.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

// State returns the underlying state.
func (c *Context) State() *state.State {
	return c.state
}

// Address returns the engine address owning the storage.
func (c *Context) Address() sentinel.Address {
	return c.address
}
