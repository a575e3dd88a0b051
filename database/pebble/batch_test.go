// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/quorumnode/utils/logging"
)

// Note: TestInterface tests other batch functionality.
func TestBatch(t *testing.T) {
	require := require.New(t)
	dirName := t.TempDir()

	db, err := New(dirName, DefaultConfig, logging.NewNopLogger(), "", prometheus.NewRegistry())
	require.NoError(err)
	defer db.Close()

	batchIntf := db.NewBatch()
	b, ok := batchIntf.(*batch)
	require.True(ok)

	require.False(b.applied.Load())

	key1, value1 := []byte("key1"), []byte("value1")
	require.NoError(b.Put(key1, value1))
	require.Equal(len(key1)+len(value1)+pebbleByteOverHead, b.Size())

	require.NoError(b.Write())
	require.True(b.applied.Load())

	got, err := db.Get(key1)
	require.NoError(err)
	require.Equal(value1, got)

	b.Reset()
	require.Zero(b.Size())
}
