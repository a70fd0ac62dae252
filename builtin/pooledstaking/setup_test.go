// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pooledstaking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/covermutual/sentinel/builtin/events"
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
	internalEng = sentinel.BytesToAddress([]byte("internal-engine"))
	alice       = sentinel.BytesToAddress([]byte("alice"))
	bob         = sentinel.BytesToAddress([]byte("bob"))
	outsider    = sentinel.BytesToAddress([]byte("outsider"))
	contractX   = sentinel.BytesToAddress([]byte("contract-x"))
	contractY   = sentinel.BytesToAddress([]byte("contract-y"))
	contractZ   = sentinel.BytesToAddress([]byte("contract-z"))
)

const (
	testExposure = uint64(2)
	testLockTime = uint64(100)
	testNow      = uint64(1000000)
)

type testEnv struct {
	t       *testing.T
	st      *state.State
	emitter *events.Emitter
	par     *params.Params
	reg     *registry.Registry
	tok     *token.Token
	pool    *PooledStaking
}

func newTestEnv(t *testing.T) *testEnv {
	store, _ := lvldb.NewMem()
	st := state.New(store)
	emitter := events.NewEmitter()
	par := params.New(sentinel.BytesToAddress([]byte("par")), st)
	reg := registry.New(sentinel.BytesToAddress([]byte("reg")), st)
	tok := token.New(sentinel.BytesToAddress([]byte("tok")), st)
	pool := New(sentinel.BytesToAddress([]byte("pool")), st, reg, tok, par, emitter)

	enroll := func(addr sentinel.Address, roles registry.Role) {
		_, err := reg.Enroll(addr, roles)
		require.NoError(t, err)
	}
	enroll(internalEng, registry.RoleInternal)
	enroll(alice, registry.RoleMember)
	enroll(bob, registry.RoleMember)

	for _, member := range []sentinel.Address{alice, bob} {
		require.NoError(t, tok.Mint(member, big.NewInt(10000)))
	}

	// tight leverage and a short unstake lock keep scenarios compact
	require.NoError(t, par.Set(sentinel.KeyMaxExposure, new(big.Int).SetUint64(testExposure)))
	require.NoError(t, par.Set(sentinel.KeyUnstakeLockTime, new(big.Int).SetUint64(testLockTime)))

	emitter.Reset()
	return &testEnv{t: t, st: st, emitter: emitter, par: par, reg: reg, tok: tok, pool: pool}
}

// depositStake is shorthand for a successful single-contract allocation.
func (env *testEnv) depositStake(staker sentinel.Address, deposit int64, contracts []sentinel.Address, stakes ...int64) {
	amounts := make([]*big.Int, len(stakes))
	for i, s := range stakes {
		amounts[i] = big.NewInt(s)
	}
	require.NoError(env.t, env.pool.DepositAndStake(staker, big.NewInt(deposit), contracts, amounts))
}

func bigs(values ...int64) []*big.Int {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		out[i] = big.NewInt(v)
	}
	return out
}
