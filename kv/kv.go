// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the interfaces of the key-value store backing the
// settlement state.
package kv

// Getter defines methods to read values.
type Getter interface {
	Get(key []byte) (value []byte, err error)
	Has(key []byte) (bool, error)
	// IsNotFound checks if the error returned by Get indicates key not found.
	IsNotFound(err error) bool
}

// Putter defines methods to write values.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// GetPutter combines Getter and Putter.
type GetPutter interface {
	Getter
	Putter
}

// GetPutCloser adds the Close method.
type GetPutCloser interface {
	GetPutter
	Close() error
}

// Batch batches writes, to be committed atomically via Write.
type Batch interface {
	Putter
	Len() int
	Write() error
}

// Batcher creates write batches.
type Batcher interface {
	NewBatch() Batch
}

// Range describes a key range [From, To).
type Range struct {
	From []byte
	To   []byte
}

// Iterator iterates over a key range in ascending order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Iteratee creates iterators.
type Iteratee interface {
	NewIterator(r Range) Iterator
}

// Store is the full capability set of the backing store.
type Store interface {
	GetPutCloser
	Batcher
	Iteratee
}
