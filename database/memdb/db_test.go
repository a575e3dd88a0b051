// Copyright (C) 2019-2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memdb

import (
	"testing"

	"github.com/ava-labs/quorumnode/database"
)

func TestInterface(t *testing.T) {
	for _, test := range database.Tests {
		db := New()
		test(t, db)
		_ = db.Close()
	}
}
