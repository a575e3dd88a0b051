// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package election

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/quorumnode/database/memdb"
	"github.com/ava-labs/quorumnode/ids"
	ledgerpkg "github.com/ava-labs/quorumnode/ledger"
	"github.com/ava-labs/quorumnode/network"
	"github.com/ava-labs/quorumnode/state"
	"github.com/ava-labs/quorumnode/utils/logging"
)

func testDeps(t *testing.T, tMax time.Duration) (ledgerpkg.Ledger, network.Network) {
	t.Helper()
	l := ledgerpkg.New(memdb.New(), logging.NewNopLogger())
	n := network.New(network.Config{MaxElectionsTime: tMax}, logging.NewNopLogger(), t.Name(), prometheus.NewRegistry())
	t.Cleanup(n.Shutdown)
	return l, n
}

func TestElectionQuorumApproves(t *testing.T) {
	require := require.New(t)

	l, n := testDeps(t, time.Minute)
	id := ids.ItemID{1}
	item := &state.Item{ID: id, Bytes: []byte("item")}
	e := New(id, item, l, n, Config{QuorumSize: 2}, logging.NewNopLogger(), nil)
	e.EnsureStarted()

	var results []state.ItemResult
	e.OnDone(func(r state.ItemResult) { results = append(results, r) })

	e.RegisterVote(ids.NodeIDFromPublicKey([]byte("p1")), true)
	require.Equal(Deciding, e.Phase())
	e.RegisterVote(ids.NodeIDFromPublicKey([]byte("p2")), true)

	require.NoError(e.WaitDone(context.Background()))
	require.Equal(state.Approved, e.GetRecord().State)

	require.Eventually(func() bool { return len(results) == 1 }, time.Second, time.Millisecond)
	require.Equal(state.Approved, results[0].State)

	record, ok, err := l.GetRecord(id)
	require.NoError(err)
	require.True(ok)
	require.Equal(state.Approved, record.State)
}

func TestElectionDuplicateVoteIgnored(t *testing.T) {
	require := require.New(t)

	l, n := testDeps(t, time.Minute)
	id := ids.ItemID{2}
	e := New(id, &state.Item{ID: id}, l, n, Config{QuorumSize: 2}, logging.NewNopLogger(), nil)
	e.EnsureStarted()

	peer := ids.NodeIDFromPublicKey([]byte("p1"))
	e.RegisterVote(peer, true)
	e.RegisterVote(peer, false) // ignored: first-write-wins
	e.RegisterVote(peer, true)  // ignored: already voted

	require.NotEqual(Done, e.Phase())
}

func TestElectionTimeoutWithoutQuorumIsUndefined(t *testing.T) {
	require := require.New(t)

	l, n := testDeps(t, 20*time.Millisecond)
	id := ids.ItemID{3}
	e := New(id, nil, l, n, Config{QuorumSize: 3}, logging.NewNopLogger(), nil)
	e.EnsureStarted()

	require.NoError(e.WaitDone(context.Background()))
	require.Equal(state.Undefined, e.GetRecord().State)

	_, ok, err := l.GetRecord(id)
	require.NoError(err)
	require.False(ok) // non-terminal outcomes are never persisted
}

func TestElectionLateDownload(t *testing.T) {
	require := require.New(t)

	l, n := testDeps(t, time.Minute)
	id := ids.ItemID{4}
	item := &state.Item{ID: id, Bytes: []byte("body")}
	e := New(id, item, l, n, Config{QuorumSize: 1}, logging.NewNopLogger(), nil)
	e.EmulateLateDownload()
	e.EnsureStarted()

	e.RegisterVote(ids.NodeIDFromPublicKey([]byte("p1")), true)
	require.NoError(e.WaitDone(context.Background()))

	require.Nil(e.GetItem())
	require.Equal(state.Approved, e.GetRecord().State)
}

func TestElectionOnDoneAfterFinishRunsSynchronously(t *testing.T) {
	require := require.New(t)

	l, n := testDeps(t, time.Minute)
	id := ids.ItemID{5}
	e := New(id, &state.Item{ID: id}, l, n, Config{QuorumSize: 1}, logging.NewNopLogger(), nil)
	e.EnsureStarted()
	e.RegisterVote(ids.NodeIDFromPublicKey([]byte("p1")), true)
	require.NoError(e.WaitDone(context.Background()))

	called := false
	e.OnDone(func(r state.ItemResult) { called = true })
	require.True(called)
}

func TestElectionClose(t *testing.T) {
	require := require.New(t)

	l, n := testDeps(t, time.Minute)
	id := ids.ItemID{6}
	e := New(id, &state.Item{ID: id}, l, n, Config{QuorumSize: 5}, logging.NewNopLogger(), nil)
	e.EnsureStarted()

	fired := false
	e.OnDone(func(state.ItemResult) { fired = true })

	e.Close()
	require.Equal(Done, e.Phase())
	require.Eventually(func() bool { return fired }, time.Second, time.Millisecond)
}

func TestElectionSourceDroppedAfterDone(t *testing.T) {
	require := require.New(t)

	l, n := testDeps(t, time.Minute)
	id := ids.ItemID{7}
	e := New(id, &state.Item{ID: id}, l, n, Config{QuorumSize: 1}, logging.NewNopLogger(), nil)
	e.EnsureStarted()
	e.RegisterVote(ids.NodeIDFromPublicKey([]byte("p1")), true)
	require.NoError(e.WaitDone(context.Background()))

	peer := ids.NodeIDFromPublicKey([]byte("late"))
	e.AddSourceNode(peer)
	e.RegisterVote(peer, false)

	e.lock.Lock()
	_, recorded := e.sources[peer]
	e.lock.Unlock()
	require.False(recorded)
	require.Equal(state.Approved, e.GetRecord().State)
}
