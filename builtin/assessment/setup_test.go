// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package assessment

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covermutual/sentinel/builtin/events"
	"github.com/covermutual/sentinel/builtin/groups"
	"github.com/covermutual/sentinel/builtin/params"
	"github.com/covermutual/sentinel/builtin/registry"
	"github.com/covermutual/sentinel/builtin/token"
	"github.com/covermutual/sentinel/lvldb"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

func M(a ...interface{}) []interface{} {
	return a
}

var (
	governor  = sentinel.BytesToAddress([]byte("governor"))
	claims    = sentinel.BytesToAddress([]byte("claims"))
	tokenCtrl = sentinel.BytesToAddress([]byte("token-controller"))
	voterA    = sentinel.BytesToAddress([]byte("voter-a"))
	voterB    = sentinel.BytesToAddress([]byte("voter-b"))
	voterC    = sentinel.BytesToAddress([]byte("voter-c"))
	outsider  = sentinel.BytesToAddress([]byte("outsider"))
)

// member ids follow enrolment order in newTestEnv
const (
	idGovernor = sentinel.MemberID(1)
	idVoterA   = sentinel.MemberID(4)
	idVoterB   = sentinel.MemberID(5)
	idVoterC   = sentinel.MemberID(6)
)

const (
	testVotingPeriod = uint64(3600)
	testCooldown     = uint64(86400)
	testLockup       = uint64(1000)
	testNow          = uint64(1000000)
)

type testEnv struct {
	t       *testing.T
	st      *state.State
	emitter *events.Emitter
	par     *params.Params
	reg     *registry.Registry
	tok     *token.Token
	grp     *groups.Groups
	eng     *Assessment
}

// newTestEnv wires a full engine suite with three assessors in group 1,
// which assesses product type 1 with a one day cooldown.
func newTestEnv(t *testing.T) *testEnv {
	store, _ := lvldb.NewMem()
	st := state.New(store)
	emitter := events.NewEmitter()
	par := params.New(sentinel.BytesToAddress([]byte("par")), st)
	reg := registry.New(sentinel.BytesToAddress([]byte("reg")), st)
	tok := token.New(sentinel.BytesToAddress([]byte("tok")), st)
	grp := groups.New(sentinel.BytesToAddress([]byte("grp")), st, reg, emitter)
	eng := New(sentinel.BytesToAddress([]byte("assess")), st, reg, tok, grp, par, emitter)

	enroll := func(addr sentinel.Address, roles registry.Role) {
		_, err := reg.Enroll(addr, roles)
		require.NoError(t, err)
	}
	enroll(governor, registry.RoleMember|registry.RoleGovernor)
	enroll(claims, registry.RoleClaims)
	enroll(tokenCtrl, registry.RoleTokenController)
	enroll(voterA, registry.RoleMember)
	enroll(voterB, registry.RoleMember)
	enroll(voterC, registry.RoleMember)

	for _, voter := range []sentinel.Address{voterA, voterB, voterC} {
		require.NoError(t, tok.Mint(voter, big.NewInt(1000)))
	}

	_, err := grp.AddAssessorsToGroup(governor, []sentinel.MemberID{idVoterA, idVoterB, idVoterC}, 0)
	require.NoError(t, err)
	require.NoError(t, grp.SetAssessmentDataForProductTypes(governor, []sentinel.ProductTypeID{1}, testCooldown, 1))

	// short governed periods and a flat reward keep the arithmetic easy to follow
	require.NoError(t, par.Set(sentinel.KeyAssessmentReward, big.NewInt(1000)))
	require.NoError(t, par.Set(sentinel.KeyMinVotingPeriod, new(big.Int).SetUint64(testVotingPeriod)))
	require.NoError(t, par.Set(sentinel.KeyStakeLockupPeriod, new(big.Int).SetUint64(testLockup)))

	emitter.Reset()
	return &testEnv{t: t, st: st, emitter: emitter, par: par, reg: reg, tok: tok, grp: grp, eng: eng}
}

func (env *testEnv) startAssessment(claimID sentinel.ClaimID, now uint64) {
	require.NoError(env.t, env.eng.StartAssessment(claims, claimID, 1, 0, now))
}

func (env *testEnv) stake(voter sentinel.Address, amount int64) {
	require.NoError(env.t, env.eng.Stake(voter, big.NewInt(amount)))
}

func (env *testEnv) castVote(voter sentinel.Address, claimID sentinel.ClaimID, support bool, now uint64) {
	require.NoError(env.t, env.eng.CastVote(voter, claimID, support, sentinel.Bytes32{}, now))
}

// afterFinal returns a time strictly past voting end and cooldown.
func (env *testEnv) afterFinal(claimID sentinel.ClaimID) uint64 {
	p, err := env.eng.GetAssessment(claimID)
	require.NoError(env.t, err)
	return p.VotingEnd + p.CooldownPeriod + 1
}
