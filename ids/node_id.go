// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ava-labs/quorumnode/utils/formatting"
	"github.com/ava-labs/quorumnode/utils/hashing"
)

// NodeIDLen is the length, in bytes, of a NodeID.
const NodeIDLen = hashing.AddrLen

// NodeIDPrefix is prepended to a NodeID's CB58 encoding when it is rendered
// in logs, config files, or API responses.
const NodeIDPrefix = "NodeID-"

// EmptyNodeID is the all-zero NodeID.
var EmptyNodeID = NodeID{}

// NodeID identifies a peer participating in elections. It is derived from
// the peer's public key the same way an address is: SHA-256 followed by
// RIPEMD-160.
type NodeID [NodeIDLen]byte

// NodeIDFromPublicKey derives the NodeID that names the peer holding key.
func NodeIDFromPublicKey(key []byte) NodeID {
	id := NodeID{}
	copy(id[:], hashing.PubkeyBytesToAddress(key))
	return id
}

// ToNodeID attempts to convert a byte slice into a NodeID. b must be exactly
// NodeIDLen bytes long.
func ToNodeID(b []byte) (NodeID, error) {
	id := NodeID{}
	if bLen := len(b); bLen != NodeIDLen {
		return id, fmt.Errorf("%w: expected %d bytes but got %d", hashing.ErrInvalidHashLen, NodeIDLen, bLen)
	}
	copy(id[:], b)
	return id, nil
}

// NodeIDFromString is the inverse of NodeID.String().
func NodeIDFromString(nodeIDStr string) (NodeID, error) {
	trimmed := strings.TrimPrefix(nodeIDStr, NodeIDPrefix)
	b, err := formatting.DecodeCB58(trimmed)
	if err != nil {
		return NodeID{}, err
	}
	return ToNodeID(b)
}

func (id NodeID) Bytes() []byte {
	return id[:]
}

func (id NodeID) String() string {
	str, err := formatting.EncodeCB58(id[:])
	if err != nil {
		panic(err)
	}
	return NodeIDPrefix + str
}

func (id NodeID) Compare(other NodeID) int {
	return bytes.Compare(id[:], other[:])
}

func (id NodeID) Less(other NodeID) bool {
	return id.Compare(other) == -1
}

func (id NodeID) MarshalJSON() ([]byte, error) {
	if id == EmptyNodeID {
		return []byte(nullStr), nil
	}
	return []byte("\"" + id.String() + "\""), nil
}

func (id *NodeID) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == nullStr {
		return nil
	}
	if len(str) < 2+len(NodeIDPrefix) {
		return fmt.Errorf("%w: expected to be > %d", errMissingQuotes, 2+len(NodeIDPrefix))
	}
	lastIndex := len(str) - 1
	if str[0] != '"' || str[lastIndex] != '"' {
		return errMissingQuotes
	}

	newID, err := NodeIDFromString(str[1:lastIndex])
	if err != nil {
		return err
	}
	*id = newID
	return nil
}

func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NodeID) UnmarshalText(text []byte) error {
	newID, err := NodeIDFromString(string(text))
	if err != nil {
		return err
	}
	*id = newID
	return nil
}
