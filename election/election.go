// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package election implements the per-item voting state machine the
// decision kernel drives: CREATED -> STARTED -> DECIDING -> DONE. Quorum
// counting and item fetching are the only genuinely black-boxed pieces;
// everything else here is the concrete contract the kernel depends on.
package election

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/ledger"
	"github.com/ava-labs/quorumnode/network"
	"github.com/ava-labs/quorumnode/state"
	"github.com/ava-labs/quorumnode/utils/logging"
	"github.com/ava-labs/quorumnode/utils/timer/mockable"
)

// Phase is the election's lifecycle stage.
type Phase int

const (
	Created Phase = iota
	Started
	Deciding
	Done
)

func (p Phase) String() string {
	switch p {
	case Created:
		return "CREATED"
	case Started:
		return "STARTED"
	case Deciding:
		return "DECIDING"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Config controls the decision parameters: how many consistent votes
// make a quorum. There is no fixed constant for this; it is configurable
// here per node.
type Config struct {
	// QuorumSize is the number of consistent votes required to finalize
	// an item positively or negatively.
	QuorumSize int
}

// DefaultConfig requires two consistent votes, a reasonable minimum for
// any multi-node deployment larger than a single validator.
func DefaultConfig() Config {
	return Config{QuorumSize: 2}
}

// Election is a per-item voting process. It is safe for concurrent use;
// callers other than the owning kernel only ever reach it through the
// methods below.
type Election struct {
	id ids.ItemID

	ledger  ledger.Ledger
	network network.Network
	cfg     Config
	clock   *mockable.Clock
	log     logging.Logger

	decisionsCounter *prometheus.CounterVec

	lock  sync.Mutex
	phase Phase

	item *state.Item

	sources map[ids.NodeID]struct{}
	votes   map[ids.NodeID]bool
	yes     int
	no      int

	record state.StateRecord

	observers []func(state.ItemResult)

	doneCh    chan struct{}
	closeOnce sync.Once

	timeoutHandle network.Handle

	emulateLateDownload bool
}

// New constructs an Election in the CREATED phase. If item is non-nil its
// ID must equal id; passing only id defers body retrieval to a source
// node discovered later via AddSourceNode.
func New(
	id ids.ItemID,
	item *state.Item,
	ledger ledger.Ledger,
	net network.Network,
	cfg Config,
	log logging.Logger,
	decisionsCounter *prometheus.CounterVec,
) *Election {
	clock := &mockable.Clock{}
	return &Election{
		id:               id,
		item:             item,
		ledger:           ledger,
		network:          net,
		cfg:              cfg,
		clock:            clock,
		log:              log,
		decisionsCounter: decisionsCounter,
		sources:          make(map[ids.NodeID]struct{}),
		votes:            make(map[ids.NodeID]bool),
		record:           state.StateRecord{ItemID: id, State: state.Pending, CreatedAt: clock.Time()},
		doneCh:           make(chan struct{}),
	}
}

// SetClock overrides the election's clock, for deterministic tests.
func (e *Election) SetClock(clock *mockable.Clock) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.clock = clock
}

// ItemID returns the id this election is deciding.
func (e *Election) ItemID() ids.ItemID { return e.id }

// EmulateLateDownload is a testing switch: it forces the election to
// behave as though the item body could never be retrieved, exercising
// the late-download-tolerant finalize path even when a body is present.
func (e *Election) EmulateLateDownload() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.emulateLateDownload = true
}

// EnsureStarted idempotently transitions CREATED -> STARTED and fires the
// initial item check. Must be called outside the kernel's map-creation
// mutex: it may perform a long-running body fetch and always schedules
// the T_max timeout.
func (e *Election) EnsureStarted() {
	e.lock.Lock()
	if e.phase != Created {
		e.lock.Unlock()
		return
	}
	e.phase = Started
	tMax := e.network.MaxElectionsTime()
	e.lock.Unlock()

	e.log.Debug("starting election", zap.Stringer("itemID", e.id), zap.Duration("tMax", tMax))

	e.lock.Lock()
	e.timeoutHandle = e.network.Schedule(tMax, e.onTimeout)
	e.lock.Unlock()

	if e.item == nil {
		go e.fetchFromSources()
	}
}

// fetchFromSources is where the item body would be requested from the
// known source nodes. No fetch transport is wired in, so it returns
// without contacting any peer and the body stays nil.
func (e *Election) fetchFromSources() {
	e.lock.Lock()
	defer e.lock.Unlock()
	if len(e.sources) == 0 {
		return
	}
	// No retrieval is attempted; the recorded sources are left unchanged.
}

// AddSourceNode records peer as claiming to hold the item body. Dropped
// silently once the election is DONE.
func (e *Election) AddSourceNode(peer ids.NodeID) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.phase == Done {
		return
	}
	e.sources[peer] = struct{}{}
}

// RegisterVote records peer's vote. Subsequent votes from the same peer
// are ignored (first-write-wins); votes after DONE are dropped.
func (e *Election) RegisterVote(peer ids.NodeID, positive bool) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.phase == Done {
		return
	}
	if _, seen := e.votes[peer]; seen {
		return
	}
	e.votes[peer] = positive
	if positive {
		e.yes++
	} else {
		e.no++
	}

	if e.phase == Started {
		e.phase = Deciding
	}

	yes, no, quorum := e.yes, e.no, e.cfg.QuorumSize
	switch {
	case yes >= quorum:
		e.finalizeLocked(state.Approved)
	case no >= quorum:
		e.finalizeLocked(state.Declined)
	}
}

// Revoke forces immediate finalization with a Revoked terminal record.
// Not part of the vote-quorum path: it models a direct, out-of-band
// revocation report reaching this node (e.g. from a client-facing admin
// surface), the same way REVOKED can arrive as a caller_state without
// itself being a quorum outcome.
func (e *Election) Revoke() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.finalizeLocked(state.Revoked)
}

// onTimeout force-transitions the election to DONE with the best
// available evidence when T_max elapses without quorum.
func (e *Election) onTimeout() {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.phase == Done {
		return
	}

	final := state.Undefined
	switch {
	case e.yes > e.no:
		final = state.Approved
	case e.no > e.yes:
		final = state.Declined
	}
	e.finalizeLocked(final)
}

// finalizeLocked transitions to DONE, persists a terminal record if
// applicable, and drains observers. e.lock must be held.
func (e *Election) finalizeLocked(final state.ItemState) {
	if e.phase == Done {
		return
	}
	e.phase = Done

	now := e.clock.Time()
	expires := now.Add(e.network.MaxElectionsTime())
	e.record = state.StateRecord{
		ItemID:    e.id,
		State:     final,
		CreatedAt: e.record.CreatedAt,
		ExpiresAt: &expires,
	}

	if e.timeoutHandle != nil {
		e.timeoutHandle.Cancel()
	}

	if e.decisionsCounter != nil {
		e.decisionsCounter.WithLabelValues(final.String()).Inc()
	}

	haveCopy := e.item != nil && !e.emulateLateDownload
	result := state.ItemResult{
		State:     final,
		HaveCopy:  haveCopy,
		CreatedAt: e.record.CreatedAt,
		ExpiresAt: e.record.ExpiresAt,
	}

	if final.IsTerminal() && e.ledger != nil {
		if err := e.ledger.PutRecord(e.record); err != nil {
			e.log.Error("failed to persist election outcome",
				zap.Stringer("itemID", e.id),
				zap.Error(err),
			)
		}
	}

	observers := e.observers
	e.observers = nil

	e.closeOnce.Do(func() { close(e.doneCh) })

	// Observers may themselves call back into this election (e.g.
	// GetRecord); invoke them without the lock held.
	go func() {
		for _, obs := range observers {
			obs(result)
		}
	}()
}

// OnDone registers cb to be invoked exactly once with the final
// ItemResult. If the election is already DONE, cb runs synchronously.
func (e *Election) OnDone(cb func(state.ItemResult)) {
	e.lock.Lock()
	if e.phase != Done {
		e.observers = append(e.observers, cb)
		e.lock.Unlock()
		return
	}
	result := state.FromRecord(e.record)
	if e.item != nil && !e.emulateLateDownload {
		result.HaveCopy = true
	}
	e.lock.Unlock()

	cb(result)
}

// GetItem returns the item body if known, else nil.
func (e *Election) GetItem() *state.Item {
	e.lock.Lock()
	defer e.lock.Unlock()

	if e.emulateLateDownload {
		return nil
	}
	return e.item
}

// GetRecord returns the current StateRecord, which may still be Pending.
func (e *Election) GetRecord() state.StateRecord {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.record
}

// Phase returns the election's current lifecycle stage.
func (e *Election) Phase() Phase {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.phase
}

// WaitDone blocks until DONE or ctx is canceled, whichever comes first.
func (e *Election) WaitDone(ctx context.Context) error {
	select {
	case <-e.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close forces an immediate transition to DONE using the current record,
// invoking observers once. Used by kernel shutdown.
func (e *Election) Close() {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.finalizeLocked(e.record.State)
}
