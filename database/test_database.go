// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package database

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/quorumnode/utils/units"
)

// Tests is the conformance suite the memdb and pebble database.Database
// backends are run against, covering exactly the methods the
// Database interface declares: KeyValueReader/Writer/Deleter, Batcher,
// Iteratee, Compacter, and HealthChecker.
var Tests = []func(t *testing.T, db Database){
	TestSimpleKeyValue,
	TestKeyEmptyValue,
	TestSimpleKeyValueClosed,
	TestBatchPut,
	TestBatchDelete,
	TestBatchReset,
	TestBatchReuse,
	TestBatchRewrite,
	TestBatchReplay,
	TestBatchInner,
	TestBatchLargeSize,
	TestIteratorSnapshot,
	TestIterator,
	TestIteratorStart,
	TestIteratorPrefix,
	TestIteratorStartPrefix,
	TestIteratorMemorySafety,
	TestIteratorClosed,
	TestIteratorError,
	TestIteratorErrorAfterRelease,
	TestCompactNoPanic,
	TestHealthCheck,
	TestMemorySafetyDatabase,
	TestMemorySafetyBatch,
	TestClear,
	TestClearPrefix,
	TestClearBatched,
	TestClearPrefixBatched,
}

// TestSimpleKeyValue exercises Put + Get + Delete + Has on a key that
// starts out absent, is written, then removed again.
func TestSimpleKeyValue(t *testing.T, db Database) {
	require := require.New(t)
	key := []byte("hello")
	value := []byte("world")

	has, err := db.Has(key)
	require.NoError(err)
	require.False(has)
	_, err = db.Get(key)
	require.Equal(ErrNotFound, err)
	require.NoError(db.Delete(key))

	require.NoError(db.Put(key, value))

	has, err = db.Has(key)
	require.NoError(err)
	require.True(has)
	got, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, got)

	require.NoError(db.Delete(key))

	has, err = db.Has(key)
	require.NoError(err)
	require.False(has)
	_, err = db.Get(key)
	require.Equal(ErrNotFound, err)
	require.NoError(db.Delete(key))
}

// TestKeyEmptyValue makes sure a nil/empty value round-trips as a
// zero-length, non-missing value rather than being treated as absent.
func TestKeyEmptyValue(t *testing.T, db Database) {
	require := require.New(t)

	key := []byte("hello")
	var val []byte

	_, err := db.Get(key)
	require.Equal(ErrNotFound, err)

	require.NoError(db.Put(key, val))

	value, err := db.Get(key)
	require.NoError(err)
	require.Len(value, len(val))
}

// TestSimpleKeyValueClosed makes sure every read/write method reports
// ErrClosed once the database has been closed.
func TestSimpleKeyValueClosed(t *testing.T, db Database) {
	require := require.New(t)
	key := []byte("hello")
	value := []byte("world")

	require.NoError(db.Put(key, value))
	got, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, got)

	require.NoError(db.Close())

	_, err = db.Has(key)
	require.Equal(ErrClosed, err)
	_, err = db.Get(key)
	require.Equal(ErrClosed, err)
	require.Equal(ErrClosed, db.Put(key, value))
	require.Equal(ErrClosed, db.Delete(key))
	require.Equal(ErrClosed, db.Close())
}

// TestMemorySafetyDatabase ensures it is safe to modify a key slice after
// passing it to Database.Put and Database.Get.
func TestMemorySafetyDatabase(t *testing.T, db Database) {
	require := require.New(t)
	key := []byte("key")
	value := []byte("value")
	key2 := []byte("key2")
	value2 := []byte("value2")

	require.NoError(db.Put(key, value))
	require.NoError(db.Put(key2, value2))

	gotVal, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, gotVal)

	key = key2
	gotVal2, err := db.Get(key)
	require.NoError(err)
	require.Equal(value2, gotVal2)
	require.Equal(value, gotVal)

	key = []byte("key")
	gotVal, err = db.Get(key)
	require.NoError(err)
	require.Equal(value, gotVal)
}

// TestBatchPut exercises a batch that is written, then a second batch
// whose Write is expected to fail once the database is closed.
func TestBatchPut(t *testing.T, db Database) {
	require := require.New(t)
	key := []byte("hello")
	value := []byte("world")

	batch := db.NewBatch()
	require.NotNil(batch)
	require.NoError(batch.Put(key, value))
	require.Positive(batch.Size())
	require.NoError(batch.Write())

	has, err := db.Has(key)
	require.NoError(err)
	require.True(has)
	got, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, got)
	require.NoError(db.Delete(key))

	batch = db.NewBatch()
	require.NotNil(batch)
	require.NoError(batch.Put(key, value))
	require.NoError(db.Close())
	require.Equal(ErrClosed, batch.Write())
}

// TestBatchDelete exercises a batched delete of a key written directly
// against the database.
func TestBatchDelete(t *testing.T, db Database) {
	require := require.New(t)
	key := []byte("hello")
	value := []byte("world")

	require.NoError(db.Put(key, value))

	batch := db.NewBatch()
	require.NotNil(batch)
	require.NoError(batch.Delete(key))
	require.NoError(batch.Write())

	has, err := db.Has(key)
	require.NoError(err)
	require.False(has)
	_, err = db.Get(key)
	require.Equal(ErrNotFound, err)
	require.NoError(db.Delete(key))
}

// TestMemorySafetyBatch ensures a key slice can be modified after being
// passed to Batch.Put without affecting the write already staged.
func TestMemorySafetyBatch(t *testing.T, db Database) {
	require := require.New(t)
	key := []byte("hello")
	value := []byte("world")
	valueCopy := []byte("world")

	batch := db.NewBatch()
	require.NotNil(batch)
	require.NoError(batch.Put(key, value))
	require.Positive(batch.Size())

	keyCopy := key
	key = []byte("jello")
	require.NoError(batch.Write())

	has, err := db.Has(keyCopy)
	require.NoError(err)
	require.True(has)
	got, err := db.Get(keyCopy)
	require.NoError(err)
	require.Equal(valueCopy, got)

	has, err = db.Has(key)
	require.NoError(err)
	require.False(has)
}

// TestBatchReset makes sure a batch drops un-written operations when
// Reset is called before Write.
func TestBatchReset(t *testing.T, db Database) {
	require := require.New(t)
	key := []byte("hello")
	value := []byte("world")

	require.NoError(db.Put(key, value))

	batch := db.NewBatch()
	require.NotNil(batch)
	require.NoError(batch.Delete(key))
	batch.Reset()
	require.NoError(batch.Write())

	has, err := db.Has(key)
	require.NoError(err)
	require.True(has)
	got, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, got)
}

// TestBatchReuse makes sure a batch can be reset and reused for a second
// set of writes.
func TestBatchReuse(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("hello2"), []byte("world2")

	batch := db.NewBatch()
	require.NotNil(batch)
	require.NoError(batch.Put(key1, value1))
	require.NoError(batch.Write())
	require.NoError(db.Delete(key1))

	has, err := db.Has(key1)
	require.NoError(err)
	require.False(has)

	batch.Reset()
	require.NoError(batch.Put(key2, value2))
	require.NoError(batch.Write())

	has, err = db.Has(key1)
	require.NoError(err)
	require.False(has)
	has, err = db.Has(key2)
	require.NoError(err)
	require.True(has)
	got, err := db.Get(key2)
	require.NoError(err)
	require.Equal(value2, got)
}

// TestBatchRewrite makes sure Write can be called more than once on the
// same batch and applies its operations each time.
func TestBatchRewrite(t *testing.T, db Database) {
	require := require.New(t)
	key, value := []byte("hello1"), []byte("world1")

	batch := db.NewBatch()
	require.NotNil(batch)
	require.NoError(batch.Put(key, value))
	require.NoError(batch.Write())
	require.NoError(db.Delete(key))

	has, err := db.Has(key)
	require.NoError(err)
	require.False(has)

	require.NoError(batch.Write())

	has, err = db.Has(key)
	require.NoError(err)
	require.True(has)
	got, err := db.Get(key)
	require.NoError(err)
	require.Equal(value, got)
}

// TestBatchReplay makes sure a batch replays its queued operations onto
// another writer in order, and that Replay against a closed database
// reports ErrClosed.
func TestBatchReplay(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("hello2"), []byte("world2")

	batch := db.NewBatch()
	require.NotNil(batch)
	require.NoError(batch.Put(key1, value1))
	require.NoError(batch.Put(key2, value2))

	secondBatch := db.NewBatch()
	require.NotNil(secondBatch)
	require.NoError(batch.Replay(secondBatch))
	require.NoError(secondBatch.Write())

	has, err := db.Has(key1)
	require.NoError(err)
	require.True(has)
	got, err := db.Get(key1)
	require.NoError(err)
	require.Equal(value1, got)

	thirdBatch := db.NewBatch()
	require.NotNil(thirdBatch)
	require.NoError(thirdBatch.Delete(key1))
	require.NoError(thirdBatch.Delete(key2))

	require.NoError(db.Close())

	require.Equal(ErrClosed, batch.Replay(db))
	require.Equal(ErrClosed, thirdBatch.Replay(db))
}

// TestBatchInner makes sure Inner returns a batch usable to replay one
// batch's contents into another and write through to the database.
func TestBatchInner(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("hello2"), []byte("world2")

	firstBatch := db.NewBatch()
	require.NotNil(firstBatch)
	require.NoError(firstBatch.Put(key1, value1))

	secondBatch := db.NewBatch()
	require.NotNil(secondBatch)
	require.NoError(secondBatch.Put(key2, value2))

	innerFirst := firstBatch.Inner()
	innerSecond := secondBatch.Inner()
	require.NoError(innerFirst.Replay(innerSecond))
	require.NoError(innerSecond.Write())

	got, err := db.Get(key1)
	require.NoError(err)
	require.Equal(value1, got)
	got, err = db.Get(key2)
	require.NoError(err)
	require.Equal(value2, got)
}

// TestBatchLargeSize makes sure a batch can absorb a large volume of
// entries before Write is called.
func TestBatchLargeSize(t *testing.T, db Database) {
	require := require.New(t)
	const (
		totalSize   = 8 * units.MiB
		elementSize = 4 * units.KiB
		pairSize    = 2 * elementSize
	)

	buf := make([]byte, totalSize)
	_, err := rand.Read(buf)
	require.NoError(err)

	batch := db.NewBatch()
	require.NotNil(batch)

	for uint64(len(buf)) > pairSize {
		key := buf[:elementSize]
		buf = buf[elementSize:]
		value := buf[:elementSize]
		buf = buf[elementSize:]
		require.NoError(batch.Put(key, value))
	}

	require.NoError(batch.Write())
}

// TestIteratorSnapshot makes sure the iterator reflects the database
// contents as of its creation, not any later write.
func TestIteratorSnapshot(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("hello2"), []byte("world2")

	require.NoError(db.Put(key1, value1))

	iterator := db.NewIterator()
	require.NotNil(iterator)
	defer iterator.Release()

	require.NoError(db.Put(key2, value2))

	require.True(iterator.Next())
	require.Equal(key1, iterator.Key())
	require.Equal(value1, iterator.Value())
	require.False(iterator.Next())
	require.Nil(iterator.Key())
	require.Nil(iterator.Value())
	require.NoError(iterator.Error())
}

// TestIterator makes sure the iterator walks the database contents in
// lexicographic key order.
func TestIterator(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("hello2"), []byte("world2")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))

	iterator := db.NewIterator()
	require.NotNil(iterator)
	defer iterator.Release()

	require.True(iterator.Next())
	require.Equal(key1, iterator.Key())
	require.Equal(value1, iterator.Value())
	require.True(iterator.Next())
	require.Equal(key2, iterator.Key())
	require.Equal(value2, iterator.Value())
	require.False(iterator.Next())
	require.NoError(iterator.Error())
}

// TestIteratorStart makes sure the iterator can be positioned to begin
// partway through the database's key range.
func TestIteratorStart(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("hello2"), []byte("world2")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))

	iterator := db.NewIteratorWithStart(key2)
	require.NotNil(iterator)
	defer iterator.Release()

	require.True(iterator.Next())
	require.Equal(key2, iterator.Key())
	require.Equal(value2, iterator.Value())
	require.False(iterator.Next())
	require.NoError(iterator.Error())
}

// TestIteratorPrefix makes sure the iterator only visits keys sharing
// the requested prefix.
func TestIteratorPrefix(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello"), []byte("world1")
	key2, value2 := []byte("goodbye"), []byte("world2")
	key3, value3 := []byte("joy"), []byte("world3")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))
	require.NoError(db.Put(key3, value3))

	iterator := db.NewIteratorWithPrefix([]byte("h"))
	require.NotNil(iterator)
	defer iterator.Release()

	require.True(iterator.Next())
	require.Equal(key1, iterator.Key())
	require.Equal(value1, iterator.Value())
	require.False(iterator.Next())
	require.NoError(iterator.Error())
}

// TestIteratorStartPrefix makes sure start and prefix combine correctly:
// the iterator begins at start and stays within the prefix.
func TestIteratorStartPrefix(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("z"), []byte("world2")
	key3, value3 := []byte("hello3"), []byte("world3")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))
	require.NoError(db.Put(key3, value3))

	iterator := db.NewIteratorWithStartAndPrefix(key1, []byte("h"))
	require.NotNil(iterator)
	defer iterator.Release()

	require.True(iterator.Next())
	require.Equal(key1, iterator.Key())
	require.Equal(value1, iterator.Value())
	require.True(iterator.Next())
	require.Equal(key3, iterator.Key())
	require.Equal(value3, iterator.Value())
	require.False(iterator.Next())
	require.NoError(iterator.Error())
}

// TestIteratorMemorySafety makes sure the byte slices returned by an
// iterator survive independently of any later mutation by the caller.
func TestIteratorMemorySafety(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("z"), []byte("world2")
	key3, value3 := []byte("hello3"), []byte("world3")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))
	require.NoError(db.Put(key3, value3))

	iterator := db.NewIterator()
	require.NotNil(iterator)
	defer iterator.Release()

	var keys, values [][]byte
	for iterator.Next() {
		keys = append(keys, iterator.Key())
		values = append(values, iterator.Value())
	}

	require.Equal([][]byte{key1, key3, key2}, keys)
	require.Equal([][]byte{value1, value3, value2}, values)
}

// TestIteratorClosed makes sure every iterator constructor on a closed
// database returns an already-exhausted iterator reporting ErrClosed.
func TestIteratorClosed(t *testing.T, db Database) {
	require := require.New(t)
	key, value := []byte("hello1"), []byte("world1")

	require.NoError(db.Put(key, value))
	require.NoError(db.Close())

	constructors := []func() Iterator{
		db.NewIterator,
		func() Iterator { return db.NewIteratorWithPrefix(nil) },
		func() Iterator { return db.NewIteratorWithStart(nil) },
		func() Iterator { return db.NewIteratorWithStartAndPrefix(nil, nil) },
	}
	for _, newIterator := range constructors {
		iterator := newIterator()
		require.NotNil(iterator)
		require.False(iterator.Next())
		require.Nil(iterator.Key())
		require.Nil(iterator.Value())
		require.Equal(ErrClosed, iterator.Error())
		iterator.Release()
	}
}

// TestIteratorError makes sure an iterator can still serve the value it
// last landed on after the underlying database is closed, but reports
// ErrClosed on the next Next call.
func TestIteratorError(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("hello2"), []byte("world2")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))

	iterator := db.NewIterator()
	require.NotNil(iterator)
	defer iterator.Release()

	require.True(iterator.Next())
	require.NoError(db.Close())

	require.Equal(key1, iterator.Key())
	require.Equal(value1, iterator.Value())

	require.False(iterator.Next())
	require.Equal(ErrClosed, iterator.Error())
}

// TestIteratorErrorAfterRelease makes sure a released iterator still
// reports ErrClosed rather than panicking or resetting its error.
func TestIteratorErrorAfterRelease(t *testing.T, db Database) {
	require := require.New(t)
	key, value := []byte("hello1"), []byte("world1")

	require.NoError(db.Put(key, value))
	require.NoError(db.Close())

	iterator := db.NewIterator()
	require.NotNil(iterator)
	iterator.Release()

	require.False(iterator.Next())
	require.Nil(iterator.Key())
	require.Nil(iterator.Value())
	require.Equal(ErrClosed, iterator.Error())
}

// TestCompactNoPanic makes sure Compact never panics, and reports
// ErrClosed once the database is closed.
func TestCompactNoPanic(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("z"), []byte("world2")
	key3, value3 := []byte("hello3"), []byte("world3")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))
	require.NoError(db.Put(key3, value3))

	require.NoError(db.Compact(nil, nil))

	require.NoError(db.Close())
	require.Equal(ErrClosed, db.Compact(nil, nil))
}

// TestHealthCheck makes sure a live database reports a healthy check and
// a closed one surfaces the resulting error instead of panicking.
func TestHealthCheck(t *testing.T, db Database) {
	require := require.New(t)

	_, err := db.HealthCheck(context.Background())
	require.NoError(err)

	require.NoError(db.Close())
	_, err = db.HealthCheck(context.Background())
	require.Error(err)
}

// TestClear tests to make sure the deletion helper works as expected.
func TestClear(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("z"), []byte("world2")
	key3, value3 := []byte("hello3"), []byte("world3")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))
	require.NoError(db.Put(key3, value3))

	count, err := Count(db)
	require.NoError(err)
	require.Equal(3, count)

	require.NoError(AtomicClear(db, db))

	count, err = Count(db)
	require.NoError(err)
	require.Zero(count)

	require.NoError(db.Close())
}

// TestClearPrefix tests to make sure prefix deletion works as expected.
func TestClearPrefix(t *testing.T, db Database) {
	require := require.New(t)
	key1, value1 := []byte("hello1"), []byte("world1")
	key2, value2 := []byte("z"), []byte("world2")
	key3, value3 := []byte("hello3"), []byte("world3")

	require.NoError(db.Put(key1, value1))
	require.NoError(db.Put(key2, value2))
	require.NoError(db.Put(key3, value3))

	count, err := Count(db)
	require.NoError(err)
	require.Equal(3, count)

	require.NoError(AtomicClearPrefix(db, db, []byte("hello")))

	count, err = Count(db)
	require.NoError(err)
	require.Equal(1, count)

	has, err := db.Has(key1)
	require.NoError(err)
	require.False(has)
	has, err = db.Has(key2)
	require.NoError(err)
	require.True(has)
	has, err = db.Has(key3)
	require.NoError(err)
	require.False(has)

	require.NoError(db.Close())
}

// TestClearBatched tests the batched deletion helper, which writes in
// chunks rather than issuing every delete against db directly.
func TestClearBatched(t *testing.T, db Database) {
	require := require.New(t)

	for i := 0; i < 25; i++ {
		require.NoError(db.Put([]byte(fmt.Sprintf("key%d", i)), []byte("value")))
	}

	count, err := Count(db)
	require.NoError(err)
	require.Equal(25, count)

	require.NoError(Clear(db, 8))

	count, err = Count(db)
	require.NoError(err)
	require.Zero(count)

	require.NoError(db.Close())
}

// TestClearPrefixBatched tests the batched prefix-deletion helper.
func TestClearPrefixBatched(t *testing.T, db Database) {
	require := require.New(t)

	for i := 0; i < 20; i++ {
		require.NoError(db.Put([]byte(fmt.Sprintf("hello%d", i)), []byte("value")))
	}
	require.NoError(db.Put([]byte("z"), []byte("world")))

	count, err := Count(db)
	require.NoError(err)
	require.Equal(21, count)

	require.NoError(ClearPrefix(db, []byte("hello"), 8))

	count, err = Count(db)
	require.NoError(err)
	require.Equal(1, count)

	has, err := db.Has([]byte("z"))
	require.NoError(err)
	require.True(has)

	require.NoError(db.Close())
}
