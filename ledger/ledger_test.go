// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/quorumnode/database/memdb"
	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/state"
	"github.com/ava-labs/quorumnode/utils/logging"
)

func newTestLedger() Ledger {
	return New(memdb.New(), logging.NewNopLogger())
}

func TestGetRecordMissing(t *testing.T) {
	require := require.New(t)

	l := newTestLedger()
	_, ok, err := l.GetRecord(ids.ItemID{1})
	require.NoError(err)
	require.False(ok)
}

func TestPutGetRoundTrip(t *testing.T) {
	require := require.New(t)

	l := newTestLedger()
	id := ids.ItemID{1, 2, 3}
	record := state.StateRecord{
		ItemID:    id,
		State:     state.Approved,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}

	require.NoError(l.PutRecord(record))

	got, ok, err := l.GetRecord(id)
	require.NoError(err)
	require.True(ok)
	require.Equal(record.State, got.State)
	require.True(record.CreatedAt.Equal(got.CreatedAt))
}

func TestPutRecordRejectsNonTerminal(t *testing.T) {
	require := require.New(t)

	l := newTestLedger()
	err := l.PutRecord(state.StateRecord{ItemID: ids.ItemID{1}, State: state.Pending})
	require.Error(err)
}

func TestPutRecordIdempotent(t *testing.T) {
	require := require.New(t)

	l := newTestLedger()
	id := ids.ItemID{9}
	record := state.StateRecord{ItemID: id, State: state.Declined, CreatedAt: time.Now().Truncate(time.Second).UTC()}

	require.NoError(l.PutRecord(record))
	require.NoError(l.PutRecord(record))

	got, ok, err := l.GetRecord(id)
	require.NoError(err)
	require.True(ok)
	require.Equal(state.Declined, got.State)
}
