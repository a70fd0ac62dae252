// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params implements the governance-set key/value configuration
// consulted by every engine.
package params

import (
	"math/big"

	"github.com/covermutual/sentinel/builtin/sstore"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

// Params provides access to governance configuration values.
type Params struct {
	context *sstore.Context
}

// New creates an instance bound to the given engine address.
func New(addr sentinel.Address, state *state.State) *Params {
	return &Params{context: sstore.NewContext(addr, state)}
}

// Get returns the value for the given key, zero when unset.
func (p *Params) Get(key sentinel.Bytes32) (*big.Int, error) {
	return sstore.NewUint256(p.context, key).Get()
}

// Set stores the value for the given key.
func (p *Params) Set(key sentinel.Bytes32, value *big.Int) error {
	sstore.NewUint256(p.context, key).Set(value)
	return nil
}

// Uint64 returns the value for the given key, or fallback when unset.
func (p *Params) Uint64(key sentinel.Bytes32, fallback uint64) (uint64, error) {
	v, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	if v.Sign() == 0 {
		return fallback, nil
	}
	return v.Uint64(), nil
}

// IsPaused reports whether the global pause flag is set.
func (p *Params) IsPaused() (bool, error) {
	v, err := p.Get(sentinel.KeyPauseFlags)
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

// SetPaused sets or clears the global pause flag.
func (p *Params) SetPaused(paused bool) error {
	v := big.NewInt(0)
	if paused {
		v = big.NewInt(1)
	}
	return p.Set(sentinel.KeyPauseFlags, v)
}
