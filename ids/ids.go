// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ids defines the content-addressed identifiers used throughout the
// kernel: ItemID names the thing being voted on and NodeID names the peer
// casting a vote.
package ids

import "errors"

const nullStr = "null"

var errMissingQuotes = errors.New("missing quotes")
