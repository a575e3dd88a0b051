// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package kernel implements the decision kernel: the re-entrant,
// thread-safe dispatcher that routes every incoming check-item query,
// peer-driven or client-driven, to either a ledger lookup or a live
// election, creating elections atomically and exactly once per item.
package kernel

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/quorumnode/election"
	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/ledger"
	"github.com/ava-labs/quorumnode/network"
	"github.com/ava-labs/quorumnode/state"
	"github.com/ava-labs/quorumnode/utils/logging"
)

// Kernel is the process-wide, concurrency-safe dispatcher described by
// process_check_item. There is exactly one per node.
type Kernel struct {
	ledger  ledger.Ledger
	network network.Network
	elCfg   election.Config
	log     logging.Logger

	// checkLock's write side is the single mutex guarding elections-map
	// creation (step 3 of process_check_item); its read side lets fast
	// path lookups (step 1) and the GetItem/WaitForItem/Shutdown map reads
	// proceed concurrently with each other. CheckItem never takes it.
	checkLock sync.RWMutex
	elections map[ids.ItemID]*election.Election

	electionsGauge   prometheus.Gauge
	decisionsCounter *prometheus.CounterVec
}

// New returns an empty Kernel with no live elections.
func New(
	l ledger.Ledger,
	net network.Network,
	elCfg election.Config,
	log logging.Logger,
	namespace string,
	registerer prometheus.Registerer,
) *Kernel {
	electionsGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "elections_in_flight",
		Help:      "Number of elections currently tracked by the kernel",
	})
	if err := registerer.Register(electionsGauge); err != nil {
		log.Error("failed to register elections_in_flight metric", zap.Error(err))
	}

	decisionsCounter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "election_decisions",
		Help:      "Number of elections finalized, labeled by outcome",
	}, []string{"outcome"})
	if err := registerer.Register(decisionsCounter); err != nil {
		log.Error("failed to register election_decisions metric", zap.Error(err))
	}

	return &Kernel{
		ledger:           l,
		network:          net,
		elCfg:            elCfg,
		log:              log,
		elections:        make(map[ids.ItemID]*election.Election),
		electionsGauge:   electionsGauge,
		decisionsCounter: decisionsCounter,
	}
}

// voteFor maps a caller's reported item state onto the boolean vote
// process_check_item registers on its behalf. Any state not listed here
// is ignored silently.
func voteFor(s state.ItemState) (positive bool, ok bool) {
	switch s {
	case state.PendingPositive, state.Approved:
		return true, true
	case state.PendingNegative, state.Declined, state.Revoked:
		return false, true
	default:
		return false, false
	}
}

// ProcessCheckItem is the kernel's single entry point. caller and
// callerState are optional (nil means absent, matching the source's
// nullable caller/state parameters).
func (k *Kernel) ProcessCheckItem(
	caller *ids.NodeID,
	itemID ids.ItemID,
	callerState *state.ItemState,
	callerHasCopy bool,
	item *state.Item,
	onDone func(state.ItemResult),
) (state.ItemResult, error) {
	if item != nil && item.ID != itemID {
		panic(fmt.Sprintf("kernel: item.id (%s) != itemID (%s)", item.ID, itemID))
	}

	// Step 1: fast path, live election.
	k.checkLock.RLock()
	e, ok := k.elections[itemID]
	k.checkLock.RUnlock()

	if !ok {
		// Step 2: ledger lookup.
		record, found, err := k.ledger.GetRecord(itemID)
		if err != nil {
			return state.ItemResult{}, err
		}
		if found {
			result := state.FromRecord(record)
			if onDone != nil {
				onDone(result)
			}
			return result, nil
		}

		// Step 3: create election under the mutex, double-checked.
		created := false
		k.checkLock.Lock()
		e, ok = k.elections[itemID]
		if !ok {
			e = election.New(itemID, item, k.ledger, k.network, k.elCfg, k.log, k.decisionsCounter)
			k.elections[itemID] = e
			k.electionsGauge.Inc()
			created = true
		}
		k.checkLock.Unlock()

		// Step 4: start + purge scheduling, outside the mutex.
		if created {
			e.EnsureStarted()
			e.OnDone(func(state.ItemResult) {
				k.network.Schedule(k.network.MaxElectionsTime(), func() {
					k.checkLock.Lock()
					if k.elections[itemID] == e {
						delete(k.elections, itemID)
						k.electionsGauge.Dec()
					}
					k.checkLock.Unlock()
				})
			})
		}
	}

	// Step 5: vote & source registration.
	if caller != nil && callerHasCopy {
		e.AddSourceNode(*caller)
	}
	if caller != nil && callerState != nil {
		if vote, ok := voteFor(*callerState); ok {
			e.RegisterVote(*caller, vote)
		}
	}
	if onDone != nil {
		e.OnDone(onDone)
	}

	// Step 6.
	record := e.GetRecord()
	return state.ItemResult{
		State:     record.State,
		HaveCopy:  e.GetItem() != nil,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// CheckItemFromPeer is the peer-to-peer entry point.
func (k *Kernel) CheckItemFromPeer(
	caller ids.NodeID,
	itemID ids.ItemID,
	callerState state.ItemState,
	callerHasCopy bool,
) (state.ItemResult, error) {
	return k.ProcessCheckItem(&caller, itemID, &callerState, callerHasCopy, nil, nil)
}

// RegisterItem is the client entry point for submitting a new item. It
// returns immediately with the current snapshot; onDone, if non-nil,
// fires once the item's fate is settled.
func (k *Kernel) RegisterItem(item *state.Item, onDone func(state.ItemResult)) (state.ItemInfo, error) {
	result, err := k.ProcessCheckItem(nil, item.ID, nil, false, item, onDone)
	if err != nil {
		return state.ItemInfo{}, err
	}
	return state.ItemInfo{Result: result, Item: item}, nil
}

// RegisterItemAndWait registers item and blocks until its election (if
// one was needed) reaches DONE, or ctx is canceled. A synchronous
// convenience wrapper around ProcessCheckItem plus WaitForItem, useful in
// tests and one-shot tooling where polling for the result is unwanted.
func (k *Kernel) RegisterItemAndWait(ctx context.Context, item *state.Item) (*state.ItemResult, error) {
	if _, err := k.ProcessCheckItem(nil, item.ID, nil, false, item, nil); err != nil {
		return nil, err
	}
	return k.WaitForItem(ctx, item.ID)
}

// CheckItem is the client's cheap probe: it consults only the ledger and
// never creates an election. A live election for itemID is invisible to
// this call, including one started through RegisterItem.
func (k *Kernel) CheckItem(itemID ids.ItemID) (*state.ItemResult, error) {
	record, found, err := k.ledger.GetRecord(itemID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	result := state.FromRecord(record)
	return &result, nil
}

// WaitForItem blocks on a live election's completion if one exists,
// otherwise returns the ledger record immediately. Must never be exposed
// to remote peers.
func (k *Kernel) WaitForItem(ctx context.Context, itemID ids.ItemID) (*state.ItemResult, error) {
	k.checkLock.RLock()
	e, ok := k.elections[itemID]
	k.checkLock.RUnlock()

	if !ok {
		return k.CheckItem(itemID)
	}

	if err := e.WaitDone(ctx); err != nil {
		return nil, err
	}
	record := e.GetRecord()
	result := state.ItemResult{
		State:     record.State,
		HaveCopy:  e.GetItem() != nil,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}
	return &result, nil
}

// GetItem returns the item body only if an active election currently
// holds one.
func (k *Kernel) GetItem(itemID ids.ItemID) *state.Item {
	k.checkLock.RLock()
	e, ok := k.elections[itemID]
	k.checkLock.RUnlock()

	if !ok {
		return nil
	}
	return e.GetItem()
}

// Shutdown closes every live election and returns the item ids that were
// force-closed. It does not wait for their scheduled purges.
func (k *Kernel) Shutdown() []ids.ItemID {
	k.checkLock.RLock()
	elections := make(map[ids.ItemID]*election.Election, len(k.elections))
	for id, e := range k.elections {
		elections[id] = e
	}
	k.checkLock.RUnlock()

	closed := make([]ids.ItemID, 0, len(elections))
	for id, e := range elections {
		e.Close()
		closed = append(closed, id)
	}
	return closed
}
