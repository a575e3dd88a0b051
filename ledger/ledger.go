// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the durable mapping from item identifier to finalized
// StateRecord that the decision kernel treats as authoritative once a
// record exists. It is a thin wrapper over a database.Database; the
// kernel never writes through it directly, only elections do, on
// transition to DONE.
package ledger

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/quorumnode/database"
	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/state"
	"github.com/ava-labs/quorumnode/utils/logging"
)

// recordPrefix namespaces state records within the underlying key space,
// leaving room for future ledger-owned column families without a schema
// migration.
var recordPrefix = []byte{0x73} // 's'

// Field suffixes split a StateRecord across several keys sharing a
// per-item prefix, rather than a single marshaled blob, so each field can
// be read or updated with the database package's typed helpers.
const (
	suffixID        = 0x00
	suffixState     = 0x01
	suffixCreatedAt = 0x02
	suffixHasExpiry = 0x03
	suffixExpiresAt = 0x04
	suffixSchema    = 0x05
)

// recordSchema is written alongside every record so a future layout change
// can detect and migrate records written by an older version.
const recordSchema uint32 = 1

// Ledger is the durable, read-mostly store of finalized item states.
// Reads never block on the kernel; writes are performed only by elections
// on their DONE transition.
type Ledger interface {
	// GetRecord returns the record for id, if one has been finalized.
	GetRecord(id ids.ItemID) (state.StateRecord, bool, error)

	// PutRecord persists r. It is idempotent on (ItemID, State): writing
	// the same state twice for the same item is a no-op.
	PutRecord(r state.StateRecord) error

	// Close releases the underlying database.
	Close() error
}

type ledger struct {
	db  database.Database
	log logging.Logger
}

// New wraps db as a Ledger, logging through log.
func New(db database.Database, log logging.Logger) Ledger {
	return &ledger{db: db, log: log}
}

func fieldKey(id ids.ItemID, suffix byte) []byte {
	key := make([]byte, 0, len(recordPrefix)+ids.ItemIDLen+1)
	key = append(key, recordPrefix...)
	key = append(key, id[:]...)
	key = append(key, suffix)
	return key
}

func (l *ledger) GetRecord(id ids.ItemID) (state.StateRecord, bool, error) {
	storedID, err := database.GetID(l.db, fieldKey(id, suffixID))
	if err == database.ErrNotFound {
		return state.StateRecord{}, false, nil
	}
	if err != nil {
		return state.StateRecord{}, false, err
	}

	schema, err := database.GetUInt32(l.db, fieldKey(id, suffixSchema))
	if err != nil {
		return state.StateRecord{}, false, err
	}
	if schema != recordSchema {
		return state.StateRecord{}, false, fmt.Errorf("ledger: record for %s has unsupported schema %d", id, schema)
	}

	stateVal, err := database.GetUInt64(l.db, fieldKey(id, suffixState))
	if err != nil {
		return state.StateRecord{}, false, err
	}
	createdAt, err := database.GetTimestamp(l.db, fieldKey(id, suffixCreatedAt))
	if err != nil {
		return state.StateRecord{}, false, err
	}
	hasExpiry, err := database.WithDefault(database.GetBool, l.db, fieldKey(id, suffixHasExpiry), false)
	if err != nil {
		return state.StateRecord{}, false, err
	}

	var expiresAt *time.Time
	if hasExpiry {
		t, err := database.GetTimestamp(l.db, fieldKey(id, suffixExpiresAt))
		if err != nil {
			return state.StateRecord{}, false, err
		}
		expiresAt = &t
	}

	return state.StateRecord{
		ItemID:    storedID,
		State:     state.ItemState(stateVal),
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, true, nil
}

func (l *ledger) PutRecord(r state.StateRecord) error {
	if !r.State.IsTerminal() {
		return fmt.Errorf("ledger: refusing to persist non-terminal state %s for %s", r.State, r.ItemID)
	}

	existing, ok, err := l.GetRecord(r.ItemID)
	if err != nil {
		return err
	}
	if ok && existing.State == r.State {
		// Idempotent: the same (item_id, state) pair has already been
		// written, for example by a duplicate finalize.
		return nil
	}

	b := l.db.NewBatch()
	if err := database.PutID(b, fieldKey(r.ItemID, suffixID), r.ItemID); err != nil {
		return err
	}
	if err := database.PutUInt32(b, fieldKey(r.ItemID, suffixSchema), recordSchema); err != nil {
		return err
	}
	if err := database.PutUInt64(b, fieldKey(r.ItemID, suffixState), uint64(r.State)); err != nil {
		return err
	}
	if err := database.PutTimestamp(b, fieldKey(r.ItemID, suffixCreatedAt), r.CreatedAt); err != nil {
		return err
	}
	if err := database.PutBool(b, fieldKey(r.ItemID, suffixHasExpiry), r.ExpiresAt != nil); err != nil {
		return err
	}
	if r.ExpiresAt != nil {
		if err := database.PutTimestamp(b, fieldKey(r.ItemID, suffixExpiresAt), *r.ExpiresAt); err != nil {
			return err
		}
	}

	l.log.Debug("persisting terminal record",
		zap.Stringer("itemID", r.ItemID),
		zap.Stringer("state", r.State),
	)
	return b.Write()
}

func (l *ledger) Close() error {
	return l.db.Close()
}
