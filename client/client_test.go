// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/quorumnode/database/memdb"
	"github.com/ava-labs/quorumnode/election"
	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/kernel"
	"github.com/ava-labs/quorumnode/ledger"
	"github.com/ava-labs/quorumnode/network"
	"github.com/ava-labs/quorumnode/state"
	"github.com/ava-labs/quorumnode/utils/logging"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	l := ledger.New(memdb.New(), logging.NewNopLogger())
	n := network.New(network.Config{MaxElectionsTime: time.Minute}, logging.NewNopLogger(), t.Name(), prometheus.NewRegistry())
	t.Cleanup(n.Shutdown)
	k := kernel.New(l, n, election.Config{QuorumSize: 1}, logging.NewNopLogger(), t.Name()+"_k", prometheus.NewRegistry())
	return New(k)
}

func TestClientRegisterAndWait(t *testing.T) {
	require := require.New(t)

	c := testClient(t)
	id := ids.ItemID{9}
	item := &state.Item{ID: id, Bytes: []byte("body")}

	info, err := c.RegisterItem(item, nil)
	require.NoError(err)
	require.Equal(state.Pending, info.Result.State)

	peer := ids.NodeIDFromPublicKey([]byte("peer"))
	positive := state.PendingPositive
	_, err = c.kernel.ProcessCheckItem(&peer, id, &positive, false, nil, nil)
	require.NoError(err)

	result, err := c.WaitForItem(context.Background(), id)
	require.NoError(err)
	require.Equal(state.Approved, result.State)
}

func TestClientCheckItemMiss(t *testing.T) {
	require := require.New(t)

	c := testClient(t)
	result, err := c.CheckItem(ids.ItemID{99})
	require.NoError(err)
	require.Nil(result)
}
