// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemIDStringRoundTrip(t *testing.T) {
	require := require.New(t)

	id := ItemID{1, 2, 3, 4, 5}
	str := id.String()

	parsed, err := FromString(str)
	require.NoError(err)
	require.Equal(id, parsed)
}

func TestItemIDCompare(t *testing.T) {
	require := require.New(t)

	a := ItemID{1}
	b := ItemID{2}

	require.Equal(-1, a.Compare(b))
	require.Equal(1, b.Compare(a))
	require.Equal(0, a.Compare(a))
	require.True(a.Less(b))
	require.False(b.Less(a))
}

func TestItemIDMarshalJSON(t *testing.T) {
	require := require.New(t)

	id := ItemID{1, 2, 3}
	b, err := json.Marshal(id)
	require.NoError(err)

	var parsed ItemID
	require.NoError(json.Unmarshal(b, &parsed))
	require.Equal(id, parsed)

	empty, err := json.Marshal(Empty)
	require.NoError(err)
	require.Equal("null", string(empty))
}

func TestToIDBadLength(t *testing.T) {
	require := require.New(t)

	_, err := ToID([]byte{1, 2, 3})
	require.Error(err)
}
