// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/quorumnode/database"
	"github.com/ava-labs/quorumnode/utils/logging"
)

func TestInterface(t *testing.T) {
	for _, test := range database.Tests {
		folder := t.TempDir()
		cfg := DefaultConfig
		db, err := New(folder, cfg, logging.NewNopLogger(), "pebble", prometheus.NewRegistry())
		require.NoError(t, err)

		test(t, db)

		// The database may have been closed by the test, so we don't care if it
		// errors here.
		_ = db.Close()
	}
}

func Test_bytesPrefix(t *testing.T) {
	require := require.New(t)

	prefs := [][]byte{
		{},
		{1},
		{1, 2, 3},
		{1, 2, 3, 4, 5},
		{1, 2, 3, 4, 5, 8, 19, 29},
	}

	for _, pref := range prefs {
		itopt := bytesPrefix(pref)
		if lbLen := len(itopt.LowerBound); lbLen > 0 {
			require.Equal(pref, itopt.LowerBound)
			itopt.LowerBound[lbLen-1]++
			require.Equal(itopt.LowerBound, itopt.UpperBound)
		}
	}
}
