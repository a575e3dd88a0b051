// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package nodb

import (
	"context"

	"github.com/ava-labs/quorumnode/database"
)

var (
	_ database.Database = &Database{}
	_ database.Batch    = &Batch{}
	_ database.Iterator = &Iterator{}
)

// Database is a lightning fast key value store with probabilistic operations.
type Database struct{}

// Has returns false, ErrClosed
func (*Database) Has([]byte) (bool, error) { return false, database.ErrClosed }

// Get returns nil, ErrClosed
func (*Database) Get([]byte) ([]byte, error) { return nil, database.ErrClosed }

// Put returns ErrClosed
func (*Database) Put(_, _ []byte) error { return database.ErrClosed }

// Delete returns ErrClosed
func (*Database) Delete([]byte) error { return database.ErrClosed }

// NewBatch returns a new batch
func (*Database) NewBatch() database.Batch { return &Batch{} }

// NewIterator returns a new empty iterator
func (*Database) NewIterator() database.Iterator { return &Iterator{} }

// NewIteratorWithStart returns a new empty iterator
func (*Database) NewIteratorWithStart([]byte) database.Iterator { return &Iterator{} }

// NewIteratorWithPrefix returns a new empty iterator
func (*Database) NewIteratorWithPrefix([]byte) database.Iterator { return &Iterator{} }

// NewIteratorWithStartAndPrefix returns a new empty iterator
func (db *Database) NewIteratorWithStartAndPrefix(start, prefix []byte) database.Iterator {
	return &Iterator{}
}

// Stat returns an error
func (*Database) Stat(string) (string, error) { return "", database.ErrClosed }

// Compact returns ErrClosed
func (*Database) Compact(_, _ []byte) error { return database.ErrClosed }

// HealthCheck reports the sink as always unhealthy.
func (*Database) HealthCheck(context.Context) (interface{}, error) {
	return nil, database.ErrClosed
}

// Close returns ErrClosed
func (*Database) Close() error { return database.ErrClosed }

// Batch does nothing
type Batch struct{}

// Put returns ErrClosed
func (*Batch) Put(_, _ []byte) error { return database.ErrClosed }

// Delete returns ErrClosed
func (*Batch) Delete([]byte) error { return database.ErrClosed }

// Size returns 0
func (*Batch) Size() int { return 0 }

// Write returns ErrClosed
func (*Batch) Write() error { return database.ErrClosed }

// Reset does nothing
func (*Batch) Reset() {}

// Replay applies nothing and returns ErrClosed
func (*Batch) Replay(database.KeyValueWriterDeleter) error { return database.ErrClosed }

// Inner returns itself
func (b *Batch) Inner() database.Batch { return b }

// Iterator does nothing
type Iterator struct{ Err error }

// Next returns false
func (*Iterator) Next() bool { return false }

// Error returns any errors
func (it *Iterator) Error() error { return it.Err }

// Key returns nil
func (*Iterator) Key() []byte { return nil }

// Value returns nil
func (*Iterator) Value() []byte { return nil }

// Release does nothing
func (*Iterator) Release() {}
