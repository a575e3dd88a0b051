// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"bytes"
	"fmt"

	"github.com/ava-labs/quorumnode/utils/formatting"
	"github.com/ava-labs/quorumnode/utils/hashing"
)

// ItemIDLen is the length, in bytes, of an ItemID.
const ItemIDLen = hashing.HashLen

// Empty is the all-zero ItemID. It is never a valid content hash and is used
// as the zero value of the type.
var Empty = ItemID{}

// ItemID is the content-addressed identifier of a proposal moving through
// the election kernel. It is the SHA-256 hash of the item's canonical bytes.
type ItemID [ItemIDLen]byte

// ToID attempts to convert a byte slice into an ItemID. b must be exactly
// ItemIDLen bytes long.
func ToID(b []byte) (ItemID, error) {
	id := ItemID{}
	if bLen := len(b); bLen != ItemIDLen {
		return id, fmt.Errorf("%w: expected %d bytes but got %d", hashing.ErrInvalidHashLen, ItemIDLen, bLen)
	}
	copy(id[:], b)
	return id, nil
}

// FromString is the inverse of ItemID.String().
func FromString(idStr string) (ItemID, error) {
	b, err := formatting.DecodeCB58(idStr)
	if err != nil {
		return ItemID{}, err
	}
	return ToID(b)
}

// Bytes returns the underlying 32 bytes of this ID. The returned slice
// should not be modified.
func (id ItemID) Bytes() []byte {
	return id[:]
}

func (id ItemID) String() string {
	str, err := formatting.EncodeCB58(id[:])
	if err != nil {
		// EncodeCB58 only fails when the input exceeds a size far larger
		// than any fixed-length ID, so this is unreachable.
		panic(err)
	}
	return str
}

// Compare returns -1, 0, or 1 depending on whether id is less than, equal
// to, or greater than other, byte-lexicographically.
func (id ItemID) Compare(other ItemID) int {
	return bytes.Compare(id[:], other[:])
}

func (id ItemID) Less(other ItemID) bool {
	return id.Compare(other) == -1
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	if id == Empty {
		return []byte(nullStr), nil
	}
	return []byte("\"" + id.String() + "\""), nil
}

func (id *ItemID) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == nullStr {
		return nil
	}
	if len(str) < 2 {
		return errMissingQuotes
	}
	lastIndex := len(str) - 1
	if str[0] != '"' || str[lastIndex] != '"' {
		return errMissingQuotes
	}

	newID, err := FromString(str[1:lastIndex])
	if err != nil {
		return err
	}
	*id = newID
	return nil
}

func (id ItemID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ItemID) UnmarshalText(text []byte) error {
	newID, err := FromString(string(text))
	if err != nil {
		return err
	}
	*id = newID
	return nil
}
