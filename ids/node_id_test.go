// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeIDStringRoundTrip(t *testing.T) {
	require := require.New(t)

	id := NodeIDFromPublicKey([]byte("a fake public key"))
	str := id.String()
	require.Contains(str, NodeIDPrefix)

	parsed, err := NodeIDFromString(str)
	require.NoError(err)
	require.Equal(id, parsed)
}

func TestNodeIDFromStringMissingPrefix(t *testing.T) {
	require := require.New(t)

	id := NodeIDFromPublicKey([]byte("another fake key"))
	withoutPrefix := id.String()[len(NodeIDPrefix):]

	parsed, err := NodeIDFromString(withoutPrefix)
	require.NoError(err)
	require.Equal(id, parsed)
}

func TestNodeIDDeterministic(t *testing.T) {
	require := require.New(t)

	a := NodeIDFromPublicKey([]byte("same key"))
	b := NodeIDFromPublicKey([]byte("same key"))
	require.Equal(a, b)

	c := NodeIDFromPublicKey([]byte("different key"))
	require.NotEqual(a, c)
}
