// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin assembles the settlement engines over one shared state,
// each bound to its well-known address.
package builtin

import (
	"github.com/covermutual/sentinel/builtin/assessment"
	"github.com/covermutual/sentinel/builtin/events"
	"github.com/covermutual/sentinel/builtin/groups"
	"github.com/covermutual/sentinel/builtin/params"
	"github.com/covermutual/sentinel/builtin/pooledstaking"
	"github.com/covermutual/sentinel/builtin/registry"
	"github.com/covermutual/sentinel/builtin/token"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

// Well-known engine addresses.
var (
	ParamsAddress        = sentinel.BytesToAddress([]byte("cvm-params"))
	RegistryAddress      = sentinel.BytesToAddress([]byte("cvm-registry"))
	TokenAddress         = sentinel.BytesToAddress([]byte("cvm-token"))
	GroupsAddress        = sentinel.BytesToAddress([]byte("cvm-groups"))
	AssessmentAddress    = sentinel.BytesToAddress([]byte("cvm-assessment"))
	PooledStakingAddress = sentinel.BytesToAddress([]byte("cvm-pooledstaking"))
)

// Suite is the full set of engines wired over one state. Events emitted by
// any engine accumulate on the shared emitter.
type Suite struct {
	Events        *events.Emitter
	Params        *params.Params
	Registry      *registry.Registry
	Token         *token.Token
	Groups        *groups.Groups
	Assessment    *assessment.Assessment
	PooledStaking *pooledstaking.PooledStaking
}

// New wires the engines over the given state.
func New(st *state.State) *Suite {
	emitter := events.NewEmitter()
	par := params.New(ParamsAddress, st)
	reg := registry.New(RegistryAddress, st)
	tok := token.New(TokenAddress, st)
	grp := groups.New(GroupsAddress, st, reg, emitter)
	return &Suite{
		Events:        emitter,
		Params:        par,
		Registry:      reg,
		Token:         tok,
		Groups:        grp,
		Assessment:    assessment.New(AssessmentAddress, st, reg, tok, grp, par, emitter),
		PooledStaking: pooledstaking.New(PooledStakingAddress, st, reg, tok, par, emitter),
	}
}
