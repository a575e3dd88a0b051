// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/utils/logging"
)

func TestPeerSet(t *testing.T) {
	require := require.New(t)

	s := NewPeerSet()
	p1 := ids.NodeIDFromPublicKey([]byte("p1"))
	p2 := ids.NodeIDFromPublicKey([]byte("p2"))

	s.Add(p1, "10.0.0.1:9651")
	s.Add(p2, "10.0.0.2:9651")
	require.Equal(2, s.Len())
	require.True(s.Contains(p1))

	s.Remove(p1)
	require.False(s.Contains(p1))
	require.Equal(1, s.Len())
}

func TestSchedulerFires(t *testing.T) {
	require := require.New(t)

	sched := NewScheduler("test", prometheus.NewRegistry())
	defer sched.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	sched.Schedule(10*time.Millisecond, func() { wg.Done() })

	require.Equal(1, sched.Pending())
	wg.Wait()

	require.Eventually(func() bool { return sched.Pending() == 0 }, time.Second, time.Millisecond)
}

func TestSchedulerCancel(t *testing.T) {
	require := require.New(t)

	sched := NewScheduler("test_cancel", prometheus.NewRegistry())
	defer sched.Close()

	fired := false
	handle := sched.Schedule(50*time.Millisecond, func() { fired = true })
	handle.Cancel()

	time.Sleep(80 * time.Millisecond)
	require.False(fired)
	require.Equal(0, sched.Pending())
}

func TestNetworkMaxElectionsTime(t *testing.T) {
	require := require.New(t)

	cfg := Config{MaxElectionsTime: 5 * time.Second}
	n := New(cfg, logging.NewNopLogger(), "test_network", prometheus.NewRegistry())
	defer n.Shutdown()

	require.Equal(5*time.Second, n.MaxElectionsTime())

	p1 := ids.NodeIDFromPublicKey([]byte("peer"))
	n.AddPeer(p1, "127.0.0.1:1")
	require.Equal(1, n.Size())
	require.Equal(1, n.CheckState(p1))
}
