// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package formatting

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58/base58"

	"github.com/ava-labs/quorumnode/utils/hashing"
)

const (
	// maximum length byte slice can be marshalled to a string. Must be
	// longer than the length of any ID this package encodes.
	maxCB58Size = 16 * 1024 // 16 KB
)

var (
	errMissingChecksum = errors.New("input string is smaller than the checksum size")
	errBadChecksum     = errors.New("invalid input checksum")
)

// EncodeCB58 formats b in checksummed base-58 encoding: the 4-byte SHA-256
// checksum of b is appended before base-58 encoding the result.
func EncodeCB58(b []byte) (string, error) {
	if len(b) > maxCB58Size {
		return "", fmt.Errorf("byte slice length (%d) > maximum for cb58 (%d)", len(b), maxCB58Size)
	}
	checked := make([]byte, len(b)+4)
	copy(checked, b)
	copy(checked[len(b):], hashing.Checksum(b, 4))
	return base58.Encode(checked), nil
}

// DecodeCB58 is the inverse of EncodeCB58.
func DecodeCB58(str string) ([]byte, error) {
	if len(str) == 0 {
		return []byte{}, nil
	}
	b, err := base58.Decode(str)
	if err != nil {
		return nil, err
	}
	if len(b) < 4 {
		return nil, errMissingChecksum
	}

	rawBytes := b[:len(b)-4]
	checksum := b[len(b)-4:]

	if !bytes.Equal(checksum, hashing.Checksum(rawBytes, 4)) {
		return nil, errBadChecksum
	}

	return rawBytes, nil
}
