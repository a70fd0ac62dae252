// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sstore

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/covermutual/sentinel/lvldb"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

func M(a ...interface{}) []interface{} {
	return a
}

func newTestContext() *Context {
	store, _ := lvldb.NewMem()
	st := state.New(store)
	return NewContext(sentinel.BytesToAddress([]byte("engine")), st)
}

type record struct {
	Name  string
	Count uint64
}

func (r *record) IsEmpty() bool {
	return r.Name == "" && r.Count == 0
}

func TestMapping(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[sentinel.MemberID, *record](ctx, sentinel.BytesToBytes32([]byte("records")))

	// missing entries yield an allocated zero value
	got, err := m.Get(1)
	assert.Nil(t, err)
	assert.True(t, got.IsEmpty())

	assert.Nil(t, m.Set(1, &record{Name: "first", Count: 7}))
	assert.Equal(t, M(m.Get(1)), M(&record{Name: "first", Count: 7}, nil))

	// distinct keys never collide
	got, err = m.Get(2)
	assert.Nil(t, err)
	assert.True(t, got.IsEmpty())

	assert.Nil(t, m.Delete(1))
	got, err = m.Get(1)
	assert.Nil(t, err)
	assert.True(t, got.IsEmpty())
}

func TestMappingSliceValues(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[sentinel.GroupID, []uint64](ctx, sentinel.BytesToBytes32([]byte("lists")))

	got, err := m.Get(1)
	assert.Nil(t, err)
	assert.Empty(t, got)

	assert.Nil(t, m.Set(1, []uint64{10, 11, 12}))
	assert.Equal(t, M(m.Get(1)), M([]uint64{10, 11, 12}, nil))
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, sentinel.BytesToBytes32([]byte("total")))

	assert.Equal(t, M(u.Get()), M(new(big.Int), nil))

	u.Set(big.NewInt(100))
	assert.Equal(t, M(u.Get()), M(big.NewInt(100), nil))

	assert.Nil(t, u.Add(big.NewInt(20)))
	assert.Nil(t, u.Sub(big.NewInt(50)))
	assert.Equal(t, M(u.Get()), M(big.NewInt(70), nil))
}

func TestCounter(t *testing.T) {
	ctx := newTestContext()
	c := NewCounter(ctx, sentinel.BytesToBytes32([]byte("counter")))

	assert.Equal(t, M(c.Get()), M(uint64(0), nil))
	assert.Equal(t, M(c.Next()), M(uint64(1), nil))
	assert.Equal(t, M(c.Next()), M(uint64(2), nil))

	c.Set(10)
	assert.Equal(t, M(c.Get()), M(uint64(10), nil))
}

func TestAddressSlot(t *testing.T) {
	ctx := newTestContext()
	slot := NewAddress(ctx, sentinel.BytesToBytes32([]byte("head")))

	got, err := slot.Get()
	assert.Nil(t, err)
	assert.True(t, got.IsZero())

	addr := sentinel.BytesToAddress([]byte("someone"))
	slot.Set(&addr)
	assert.Equal(t, M(slot.Get()), M(addr, nil))

	slot.Set(nil)
	got, err = slot.Get()
	assert.Nil(t, err)
	assert.True(t, got.IsZero())
}

func TestRecord(t *testing.T) {
	ctx := newTestContext()
	r := NewRecord[*record](ctx, sentinel.BytesToBytes32([]byte("single")))

	got, err := r.Get()
	assert.Nil(t, err)
	assert.True(t, got.IsEmpty())

	assert.Nil(t, r.Set(&record{Name: "pending", Count: 3}))
	assert.Equal(t, M(r.Get()), M(&record{Name: "pending", Count: 3}, nil))

	assert.Nil(t, r.Clear())
	got, err = r.Get()
	assert.Nil(t, err)
	assert.True(t, got.IsEmpty())
}

func TestConfigVariable(t *testing.T) {
	ctx := newTestContext()
	cv := NewConfigVariable("voting-period", 100)

	assert.Equal(t, uint64(100), cv.Get())

	ctx.State().SetStorage(ctx.Address(), cv.Slot(), sentinel.BytesToBytes32(big.NewInt(250).Bytes()))
	cv.Override(ctx)
	assert.Equal(t, uint64(250), cv.Get())
}
