// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package formatting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeCB58(t *testing.T) {
	require := require.New(t)

	addr := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 255}
	result, err := EncodeCB58(addr)
	require.NoError(err)
	require.Equal("1NVSVezva3bAtJesnUj", result)
}

func TestEncodeCB58Single(t *testing.T) {
	require := require.New(t)

	result, err := EncodeCB58([]byte{0})
	require.NoError(err)
	require.Equal("1c7hwa", result)
}

func TestDecodeCB58RoundTrip(t *testing.T) {
	require := require.New(t)

	addr := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 255}
	encoded, err := EncodeCB58(addr)
	require.NoError(err)

	decoded, err := DecodeCB58(encoded)
	require.NoError(err)
	require.Equal(addr, decoded)
}

func TestDecodeCB58BadChecksum(t *testing.T) {
	require := require.New(t)

	_, err := DecodeCB58("13pP7vb3")
	require.Error(err)
}
