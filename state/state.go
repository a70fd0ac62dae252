// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides the journaled storage state the settlement engines
// operate on. Every mutating engine entry point runs under a checkpoint;
// reverting to the checkpoint on failure gives the all-or-nothing call
// semantics the protocol requires.
package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/covermutual/sentinel/kv"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/stackedmap"
)

const readCacheSize = 4096

var (
	storagePrefix = []byte("s")
	balancePrefix = []byte("b")
)

// Error is the error type the state returns for backing store failures.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type (
	storageKey struct {
		addr sentinel.Address
		key  sentinel.Bytes32
	}
	balanceKey sentinel.Address
)

// State manages contract-style storage and token balances with
// checkpoint/revert support on top of a kv store.
type State struct {
	store kv.GetPutter
	sm    *stackedmap.StackedMap
	cache *lru.Cache // committed raw values, keyed by the flat store key
}

// New creates a state backed by the given store.
func New(store kv.GetPutter) *State {
	state := &State{store: store}
	state.cache, _ = lru.New(readCacheSize)
	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.loadCommitted(key)
	})
	// the bottom layer holds all uncommitted writes
	state.sm.Push()
	return state
}

func flatKey(prefix []byte, addr sentinel.Address, key []byte) []byte {
	flat := make([]byte, 0, len(prefix)+sentinel.AddressLength+len(key))
	flat = append(flat, prefix...)
	flat = append(flat, addr.Bytes()...)
	return append(flat, key...)
}

// loadCommitted reads through the cache into the backing store.
func (s *State) loadCommitted(key any) (any, bool, error) {
	var flat []byte
	switch k := key.(type) {
	case storageKey:
		flat = flatKey(storagePrefix, k.addr, k.key.Bytes())
	case balanceKey:
		flat = flatKey(balancePrefix, sentinel.Address(k), nil)
	default:
		panic(fmt.Sprintf("state: unexpected key type %T", key))
	}
	if cached, ok := s.cache.Get(string(flat)); ok {
		return cached, true, nil
	}
	raw, err := s.store.Get(flat)
	if err != nil {
		if s.store.IsNotFound(err) {
			return []byte(nil), true, nil
		}
		return nil, false, &Error{err}
	}
	s.cache.Add(string(flat), raw)
	return raw, true, nil
}

// GetRawStorage returns the RLP-encoded raw value for the given key of addr.
func (s *State) GetRawStorage(addr sentinel.Address, key sentinel.Bytes32) ([]byte, error) {
	raw, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return raw.([]byte), nil
}

// SetRawStorage sets the RLP-encoded raw value for the given key of addr.
func (s *State) SetRawStorage(addr sentinel.Address, key sentinel.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage sets the storage value encoded by the given enc callback.
// An empty returned slice deletes the entry.
func (s *State) EncodeStorage(addr sentinel.Address, key sentinel.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage gets the storage value and decodes it via the given dec callback.
// The callback receives a nil slice when no value is stored.
func (s *State) DecodeStorage(addr sentinel.Address, key sentinel.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// GetStorage returns the fixed-length storage value for the given key of addr.
func (s *State) GetStorage(addr sentinel.Address, key sentinel.Bytes32) (sentinel.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return sentinel.Bytes32{}, err
	}
	if len(raw) == 0 {
		return sentinel.Bytes32{}, nil
	}
	var trimmed []byte
	if err := rlp.DecodeBytes(raw, &trimmed); err != nil {
		return sentinel.Bytes32{}, &Error{err}
	}
	return sentinel.BytesToBytes32(trimmed), nil
}

// SetStorage sets the fixed-length storage value for the given key of addr.
func (s *State) SetStorage(addr sentinel.Address, key, value sentinel.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	trimmed := value.Bytes()
	for len(trimmed) > 0 && trimmed[0] == 0 {
		trimmed = trimmed[1:]
	}
	raw, _ := rlp.EncodeToBytes(trimmed)
	s.SetRawStorage(addr, key, raw)
}

// GetBalance returns the token balance of addr.
func (s *State) GetBalance(addr sentinel.Address) (*big.Int, error) {
	raw, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, err
	}
	if len(raw.([]byte)) == 0 {
		return new(big.Int), nil
	}
	var balance big.Int
	if err := rlp.DecodeBytes(raw.([]byte), &balance); err != nil {
		return nil, &Error{err}
	}
	return &balance, nil
}

// SetBalance sets the token balance of addr.
func (s *State) SetBalance(addr sentinel.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance for %v", addr)}
	}
	if balance.Sign() == 0 {
		s.sm.Put(balanceKey(addr), []byte(nil))
		return nil
	}
	raw, err := rlp.EncodeToBytes(balance)
	if err != nil {
		return &Error{err}
	}
	s.sm.Put(balanceKey(addr), raw)
	return nil
}

// NewCheckpoint makes a checkpoint of the current state.
// It returns the checkpoint to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts the state to the given checkpoint.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// Commit writes all journaled changes into the backing store.
// When the store supports batching the write is atomic.
func (s *State) Commit() error {
	pending := make(map[string][]byte)
	s.sm.Journal(func(key, value any) bool {
		switch k := key.(type) {
		case storageKey:
			pending[string(flatKey(storagePrefix, k.addr, k.key.Bytes()))] = value.([]byte)
		case balanceKey:
			pending[string(flatKey(balancePrefix, sentinel.Address(k), nil))] = value.([]byte)
		}
		return true
	})

	put := func(p kv.Putter) error {
		for flat, raw := range pending {
			if len(raw) == 0 {
				if err := p.Delete([]byte(flat)); err != nil {
					return &Error{err}
				}
			} else if err := p.Put([]byte(flat), raw); err != nil {
				return &Error{err}
			}
		}
		return nil
	}

	if batcher, ok := s.store.(kv.Batcher); ok {
		batch := batcher.NewBatch()
		if err := put(batch); err != nil {
			return err
		}
		if err := batch.Write(); err != nil {
			return &Error{err}
		}
	} else if err := put(s.store); err != nil {
		return err
	}

	for flat, raw := range pending {
		s.cache.Add(flat, raw)
	}

	// reset the journal, keeping the bottom layer
	s.sm.PopTo(0)
	s.sm.Push()
	return nil
}
