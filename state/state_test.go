// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemStateTerminal(t *testing.T) {
	require := require.New(t)

	terminal := []ItemState{Approved, Declined, Revoked}
	for _, s := range terminal {
		require.True(s.IsTerminal())
		require.False(s.IsPending())
	}

	pending := []ItemState{Pending, PendingPositive, PendingNegative}
	for _, s := range pending {
		require.True(s.IsPending())
		require.False(s.IsTerminal())
	}

	require.False(Undefined.IsTerminal())
	require.False(Undefined.IsPending())
}

func TestItemStateStringRoundTrip(t *testing.T) {
	require := require.New(t)

	states := []ItemState{Undefined, Pending, PendingPositive, PendingNegative, Approved, Declined, Revoked}
	for _, s := range states {
		parsed, err := ParseItemState(s.String())
		require.NoError(err)
		require.Equal(s, parsed)
	}
}

func TestItemStateJSON(t *testing.T) {
	require := require.New(t)

	b, err := json.Marshal(Approved)
	require.NoError(err)
	require.Equal(`"APPROVED"`, string(b))

	var s ItemState
	require.NoError(json.Unmarshal(b, &s))
	require.Equal(Approved, s)
}

func TestFromRecordNeverHasCopy(t *testing.T) {
	require := require.New(t)

	r := StateRecord{State: Approved}
	result := FromRecord(r)
	require.False(result.HaveCopy)
	require.Equal(Approved, result.State)
}
