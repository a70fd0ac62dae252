// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sstore

import (
	"math/big"

	"github.com/covermutual/sentinel/log"
	"github.com/covermutual/sentinel/sentinel"
)

// ConfigVariable is a protocol constant with a compiled-in default that a
// non-zero state slot may override. The override is read once per process.
type ConfigVariable struct {
	slot        sentinel.Bytes32
	name        string
	value       uint64
	initialised bool
}

// NewConfigVariable creates a config variable named name with the given default.
func NewConfigVariable(name string, defaultValue uint64) *ConfigVariable {
	return &ConfigVariable{
		slot:  sentinel.BytesToBytes32([]byte(name)),
		name:  name,
		value: defaultValue,
	}
}

// Get returns the effective value.
func (c *ConfigVariable) Get() uint64 {
	return c.value
}

// Name returns the variable name.
func (c *ConfigVariable) Name() string {
	return c.name
}

// Slot returns the storage slot holding the override.
func (c *ConfigVariable) Slot() sentinel.Bytes32 {
	return c.slot
}

// Override reads the state slot and replaces the default when non-zero.
func (c *ConfigVariable) Override(ctx *Context) {
	if c.initialised { // early return to prevent subsequent reads
		return
	}
	storage, err := ctx.state.GetStorage(ctx.address, c.slot)
	if err != nil {
		log.Warn("failed to read config value", "slot", c.name, "error", err)
		return
	}
	c.initialised = true

	if num := new(big.Int).SetBytes(storage.Bytes()); num.Sign() != 0 {
		c.value = num.Uint64()
		log.Debug("found config override", "slot", c.name, "value", c.value)
	}
}
