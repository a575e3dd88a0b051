// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state defines the item lifecycle vocabulary shared by the
// ledger, the election state machine, and the decision kernel: the states
// an item can be in, the record persisted once one becomes terminal, and
// the read-only snapshots handed back to callers.
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ava-labs/quorumnode/ids"
)

// ItemState is the tagged state of an item as it moves through an
// election. Pending states are provisional; Approved, Declined, and
// Revoked are terminal and may be persisted to the ledger.
type ItemState int

const (
	Undefined ItemState = iota
	Pending
	PendingPositive
	PendingNegative
	Approved
	Declined
	Revoked
)

const (
	undefinedStr       = "UNDEFINED"
	pendingStr         = "PENDING"
	pendingPositiveStr = "PENDING_POSITIVE"
	pendingNegativeStr = "PENDING_NEGATIVE"
	approvedStr        = "APPROVED"
	declinedStr        = "DECLINED"
	revokedStr         = "REVOKED"
)

func (s ItemState) String() string {
	switch s {
	case Pending:
		return pendingStr
	case PendingPositive:
		return pendingPositiveStr
	case PendingNegative:
		return pendingNegativeStr
	case Approved:
		return approvedStr
	case Declined:
		return declinedStr
	case Revoked:
		return revokedStr
	case Undefined:
		return undefinedStr
	default:
		return undefinedStr
	}
}

// ParseItemState is the inverse of ItemState.String().
func ParseItemState(s string) (ItemState, error) {
	switch s {
	case pendingStr:
		return Pending, nil
	case pendingPositiveStr:
		return PendingPositive, nil
	case pendingNegativeStr:
		return PendingNegative, nil
	case approvedStr:
		return Approved, nil
	case declinedStr:
		return Declined, nil
	case revokedStr:
		return Revoked, nil
	case undefinedStr:
		return Undefined, nil
	default:
		return Undefined, fmt.Errorf("unknown item state: %q", s)
	}
}

// IsTerminal reports whether the ledger may persist a record in this
// state. Only Approved, Declined, and Revoked are terminal.
func (s ItemState) IsTerminal() bool {
	switch s {
	case Approved, Declined, Revoked:
		return true
	default:
		return false
	}
}

// IsPending reports whether s is one of the three non-terminal,
// in-flight states.
func (s ItemState) IsPending() bool {
	switch s {
	case Pending, PendingPositive, PendingNegative:
		return true
	default:
		return false
	}
}

func (s ItemState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ItemState) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	parsed, err := ParseItemState(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// StateRecord is the durable ledger row for a finalized item: it is
// written once, when the owning election reaches its terminal state, and
// never mutated afterward.
type StateRecord struct {
	ItemID    ids.ItemID `json:"itemID"`
	State     ItemState  `json:"state"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// ItemResult is a read-only snapshot of an item's current state, returned
// synchronously by the decision kernel. HaveCopy indicates whether the
// responding node can currently furnish the item body; it is always false
// for an item resolved by a ledger hit, since finalized bodies are not
// retained.
type ItemResult struct {
	State     ItemState  `json:"state"`
	HaveCopy  bool       `json:"haveCopy"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// FromRecord builds the ItemResult a terminal ledger record represents.
// The ledger never retains bodies past finalization, so HaveCopy is
// always false here.
func FromRecord(r StateRecord) ItemResult {
	return ItemResult{
		State:     r.State,
		HaveCopy:  false,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

// Item is the arbitrary content-addressed body an election reasons about.
// ID names the body; nothing in this module checks that it is the hash of
// Bytes.
type Item struct {
	ID    ids.ItemID `json:"id"`
	Bytes []byte     `json:"bytes"`
}

// ItemInfo pairs a result with the body that produced it. It is returned
// only to the local client that submitted the item, never to peers.
type ItemInfo struct {
	Result ItemResult `json:"result"`
	Item   *Item      `json:"item,omitempty"`
}
