// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package kernel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/quorumnode/database/memdb"
	"github.com/ava-labs/quorumnode/election"
	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/ledger"
	"github.com/ava-labs/quorumnode/network"
	"github.com/ava-labs/quorumnode/state"
	"github.com/ava-labs/quorumnode/utils/logging"
)

func testKernel(t *testing.T, tMax time.Duration, quorum int) *Kernel {
	t.Helper()
	l := ledger.New(memdb.New(), logging.NewNopLogger())
	n := network.New(network.Config{MaxElectionsTime: tMax}, logging.NewNopLogger(), t.Name(), prometheus.NewRegistry())
	t.Cleanup(n.Shutdown)
	return New(l, n, election.Config{QuorumSize: quorum}, logging.NewNopLogger(), t.Name()+"_kernel", prometheus.NewRegistry())
}

// A freshly registered item with no votes stays PENDING until a quorum
// of positive votes arrives, at which point it is finalized and
// persisted.
func TestFreshSubmissionReachesApproval(t *testing.T) {
	require := require.New(t)

	k := testKernel(t, time.Minute, 2)
	id := ids.ItemID{1}
	item := &state.Item{ID: id, Bytes: []byte("payload")}

	info, err := k.RegisterItem(item, nil)
	require.NoError(err)
	require.Equal(state.Pending, info.Result.State)

	p1 := ids.NodeIDFromPublicKey([]byte("p1"))
	p2 := ids.NodeIDFromPublicKey([]byte("p2"))
	positive := state.PendingPositive

	_, err = k.ProcessCheckItem(&p1, id, &positive, false, nil, nil)
	require.NoError(err)
	_, err = k.ProcessCheckItem(&p2, id, &positive, false, nil, nil)
	require.NoError(err)

	result, err := k.WaitForItem(context.Background(), id)
	require.NoError(err)
	require.Equal(state.Approved, result.State)
}

// Once an election has finished and its outcome is on the ledger, a
// caller replaying the exact same check must get the persisted terminal
// state straight from the ledger, without resurrecting the election.
func TestReplayAfterFinalizationHitsLedger(t *testing.T) {
	require := require.New(t)

	k := testKernel(t, 20*time.Millisecond, 1)
	id := ids.ItemID{2}
	item := &state.Item{ID: id}

	_, err := k.RegisterItem(item, nil)
	require.NoError(err)

	p1 := ids.NodeIDFromPublicKey([]byte("p1"))
	positive := state.PendingPositive
	_, err = k.ProcessCheckItem(&p1, id, &positive, false, nil, nil)
	require.NoError(err)

	_, err = k.WaitForItem(context.Background(), id)
	require.NoError(err)

	require.Eventually(func() bool {
		k.checkLock.RLock()
		_, stillLive := k.elections[id]
		k.checkLock.RUnlock()
		return !stillLive
	}, time.Second, time.Millisecond, "election should be purged shortly after DONE")

	result, err := k.CheckItem(id)
	require.NoError(err)
	require.NotNil(result)
	require.Equal(state.Approved, result.State)
}

// Two goroutines racing to register the very same item id concurrently
// must not create two elections: exactly one election is created, and
// it reaches the outcome decided by the single vote.
func TestConcurrentRegisterCreatesOneElection(t *testing.T) {
	require := require.New(t)

	k := testKernel(t, time.Minute, 1)
	id := ids.ItemID{3}
	item := &state.Item{ID: id, Bytes: []byte("race")}

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, err := k.RegisterItem(item, nil)
			require.NoError(err)
		}()
	}
	wg.Wait()

	k.checkLock.RLock()
	count := len(k.elections)
	k.checkLock.RUnlock()
	require.Equal(1, count)

	p1 := ids.NodeIDFromPublicKey([]byte("p1"))
	positive := state.PendingPositive
	_, err := k.ProcessCheckItem(&p1, id, &positive, false, nil, nil)
	require.NoError(err)

	result, err := k.WaitForItem(context.Background(), id)
	require.NoError(err)
	require.Equal(state.Approved, result.State)
}

// A peer reporting a vote for an item this node has never heard of must
// itself create the election (the peer-driven path, not just the
// client-driven one).
func TestPeerVoteCreatesElection(t *testing.T) {
	require := require.New(t)

	k := testKernel(t, time.Minute, 1)
	id := ids.ItemID{4}

	p1 := ids.NodeIDFromPublicKey([]byte("p1"))
	result, err := k.CheckItemFromPeer(p1, id, state.PendingPositive, false)
	require.NoError(err)
	require.Equal(state.Approved, result.State)
}

// A source node advertising a copy but never voting must be recorded
// without side effects on the outcome, and the item body remains
// unavailable through the kernel since no fetch collaborator is wired.
func TestLateDownloadNeverBlocksDecision(t *testing.T) {
	require := require.New(t)

	k := testKernel(t, 30*time.Millisecond, 5)
	id := ids.ItemID{5}

	p1 := ids.NodeIDFromPublicKey([]byte("p1"))
	_, err := k.CheckItemFromPeer(p1, id, state.Undefined, true)
	require.NoError(err)

	require.Nil(k.GetItem(id))

	result, err := k.WaitForItem(context.Background(), id)
	require.NoError(err)
	require.Equal(state.Undefined, result.State)
}

// Shutdown forces every live election to DONE without waiting for their
// scheduled purges, and does not itself error even when elections are
// mid-flight.
func TestShutdownClosesLiveElections(t *testing.T) {
	require := require.New(t)

	k := testKernel(t, time.Minute, 5)
	id := ids.ItemID{6}
	_, err := k.RegisterItem(&state.Item{ID: id}, nil)
	require.NoError(err)

	k.Shutdown()

	k.checkLock.RLock()
	e := k.elections[id]
	k.checkLock.RUnlock()
	require.NotNil(e)
	require.Equal(election.Done, e.Phase())
}

// CheckItem never creates or observes a live election: a client probing
// an item id with an in-flight election but no ledger record yet sees
// no result at all.
func TestCheckItemIsLedgerOnly(t *testing.T) {
	require := require.New(t)

	k := testKernel(t, time.Minute, 5)
	id := ids.ItemID{7}
	_, err := k.RegisterItem(&state.Item{ID: id}, nil)
	require.NoError(err)

	result, err := k.CheckItem(id)
	require.NoError(err)
	require.Nil(result)

	k.checkLock.RLock()
	_, live := k.elections[id]
	k.checkLock.RUnlock()
	require.True(live)
}
