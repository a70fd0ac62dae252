// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func M(a ...interface{}) []interface{} {
	return a
}

func TestStackedMap(t *testing.T) {
	src := make(map[string]string)
	src["base"] = "from-src"

	sm := New(func(key any) (any, bool, error) {
		if v, ok := src[key.(string)]; ok {
			return v, true, nil
		}
		return nil, false, nil
	})

	assert.Equal(t, M(sm.Get("base")), M("from-src", true, nil))

	sm.Push()
	sm.Put("a", "1")
	assert.Equal(t, M(sm.Get("a")), M("1", true, nil))

	sm.Push()
	sm.Put("a", "2")
	sm.Put("b", "3")
	assert.Equal(t, M(sm.Get("a")), M("2", true, nil))

	sm.PopTo(1)
	assert.Equal(t, M(sm.Get("a")), M("1", true, nil))
	assert.Equal(t, M(sm.Get("b")), M(nil, false, nil))

	sm.Pop()
	assert.Equal(t, M(sm.Get("a")), M(nil, false, nil))
	assert.Equal(t, M(sm.Get("base")), M("from-src", true, nil))
}

func TestJournal(t *testing.T) {
	sm := New(func(key any) (any, bool, error) {
		return nil, false, nil
	})

	sm.Push()
	sm.Put("a", "1")
	sm.Push()
	sm.Put("a", "2")
	sm.Put("b", "3")

	seen := make(map[string]string)
	sm.Journal(func(key, value any) bool {
		seen[key.(string)] = value.(string)
		return true
	})
	assert.Equal(t, map[string]string{"a": "2", "b": "3"}, seen)
}
