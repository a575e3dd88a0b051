// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package database defines the key-value storage interface the ledger is
// built on, along with the pebble-, memory-, and no-op-backed
// implementations of it.
package database

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned by any operation performed against a database
	// or an iterator derived from one after Close has been called.
	ErrClosed = errors.New("closed")

	// ErrNotFound is returned by Get when the requested key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotFoundLastKey is returned by Compact when it cannot determine
	// the last key of the database in order to compact through it.
	ErrNotFoundLastKey = errors.New("could not find last key")
)

// KeyValueReader defines the read side of a Database.
type KeyValueReader interface {
	// Has returns whether the key is present in the database.
	Has(key []byte) (bool, error)

	// Get returns the value associated with key. Returns ErrNotFound if the
	// key does not exist.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter defines the write side of a Database.
type KeyValueWriter interface {
	// Put associates value with key, replacing any existing value.
	Put(key []byte, value []byte) error
}

// KeyValueDeleter removes keys from a Database.
type KeyValueDeleter interface {
	// Delete removes key. It is not an error to delete an absent key.
	Delete(key []byte) error
}

// KeyValueWriterDeleter is satisfied by both a Database and a Batch, letting
// Batch.Replay drive either one.
type KeyValueWriterDeleter interface {
	KeyValueWriter
	KeyValueDeleter
}

// Iterator walks a lexicographically ordered range of key-value pairs.
// It must be Released after use.
type Iterator interface {
	// Next advances the iterator, returning whether there is a value at
	// the new position.
	Next() bool

	// Error returns the error, if any, that stopped iteration. It should
	// be checked after Next returns false.
	Error() error

	// Key returns the key of the current entry. Only valid after a call
	// to Next that returned true.
	Key() []byte

	// Value returns the value of the current entry. Only valid after a
	// call to Next that returned true.
	Value() []byte

	// Release frees the resources held by the iterator. Idempotent.
	Release()
}

// Iteratee constructs Iterators over a Database.
type Iteratee interface {
	// NewIterator returns an iterator over the entire database.
	NewIterator() Iterator

	// NewIteratorWithStart returns an iterator over keys >= start.
	NewIteratorWithStart(start []byte) Iterator

	// NewIteratorWithPrefix returns an iterator over keys sharing prefix.
	NewIteratorWithPrefix(prefix []byte) Iterator

	// NewIteratorWithStartAndPrefix returns an iterator over keys sharing
	// prefix, beginning at start if start is lexicographically after
	// prefix.
	NewIteratorWithStartAndPrefix(start, prefix []byte) Iterator
}

// Compacter reclaims space held by deleted or overwritten keys.
type Compacter interface {
	// Compact rewrites the range [start, limit). A nil limit means
	// through the end of the database.
	Compact(start []byte, limit []byte) error
}

// Batch collects a set of writes to be committed to a Database atomically.
type Batch interface {
	KeyValueWriterDeleter

	// Size returns the amount of data queued, in bytes.
	Size() int

	// Write commits the batch. A batch may be written more than once.
	Write() error

	// Reset clears the batch for reuse without releasing its backing
	// storage.
	Reset()

	// Replay applies every operation in the batch, in order, to w.
	Replay(w KeyValueWriterDeleter) error

	// Inner returns the innermost batch. Batches that wrap other batches
	// should return the wrapped batch's Inner().
	Inner() Batch
}

// Batcher constructs Batches over a Database.
type Batcher interface {
	NewBatch() Batch
}

// HealthChecker reports whether a component is behaving correctly.
type HealthChecker interface {
	HealthCheck(context.Context) (interface{}, error)
}

// Database is the persistence interface every ledger backend implements:
// pebble-on-disk, an in-memory map, or the nodb sink, which rejects every
// operation with ErrClosed.
type Database interface {
	KeyValueReader
	KeyValueWriter
	KeyValueDeleter
	Batcher
	Iteratee
	Compacter
	HealthChecker

	Close() error
}

// BatchOp is a single queued operation captured by BatchOps.
type BatchOp struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// BatchOps is an embeddable helper that implements the write side of Batch
// by recording operations into a slice, for backends (like memdb) whose
// underlying store has no native batch type of its own.
type BatchOps struct {
	Ops []BatchOp
}

func (b *BatchOps) Put(key, value []byte) error {
	b.Ops = append(b.Ops, BatchOp{Key: append([]byte(nil), key...), Value: append([]byte(nil), value...)})
	return nil
}

func (b *BatchOps) Delete(key []byte) error {
	b.Ops = append(b.Ops, BatchOp{Key: append([]byte(nil), key...), Delete: true})
	return nil
}

func (b *BatchOps) Size() int {
	size := 0
	for _, op := range b.Ops {
		size += len(op.Key) + len(op.Value)
	}
	return size
}

func (b *BatchOps) Reset() {
	b.Ops = b.Ops[:0]
}

func (b *BatchOps) Replay(w KeyValueWriterDeleter) error {
	for _, op := range b.Ops {
		if op.Delete {
			if err := w.Delete(op.Key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(op.Key, op.Value); err != nil {
			return err
		}
	}
	return nil
}

// IteratorError is a degenerate Iterator that never has a value and always
// reports Err, used when an iterator is requested from a closed database.
type IteratorError struct {
	Err error
}

func (it *IteratorError) Next() bool     { return false }
func (it *IteratorError) Error() error   { return it.Err }
func (it *IteratorError) Key() []byte    { return nil }
func (it *IteratorError) Value() []byte  { return nil }
func (it *IteratorError) Release()       {}
