// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/quorumnode/client"
	"github.com/ava-labs/quorumnode/database/memdb"
	"github.com/ava-labs/quorumnode/election"
	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/kernel"
	"github.com/ava-labs/quorumnode/ledger"
	"github.com/ava-labs/quorumnode/network"
	"github.com/ava-labs/quorumnode/state"
	"github.com/ava-labs/quorumnode/utils/logging"
)

func testService(t *testing.T) *Service {
	t.Helper()
	l := ledger.New(memdb.New(), logging.NewNopLogger())
	n := network.New(network.Config{MaxElectionsTime: time.Minute}, logging.NewNopLogger(), t.Name(), prometheus.NewRegistry())
	t.Cleanup(n.Shutdown)
	k := kernel.New(l, n, election.Config{QuorumSize: 1}, logging.NewNopLogger(), t.Name()+"_k", prometheus.NewRegistry())
	return NewService(client.New(k), logging.NewNopLogger())
}

func TestServiceRegisterAndCheckItem(t *testing.T) {
	require := require.New(t)

	s := testService(t)
	id := ids.ItemID{42}

	var registerReply ItemInfoReply
	req := httptest.NewRequest("POST", "/", nil)
	err := s.RegisterItem(req, &RegisterItemArgs{ItemID: id.String(), Bytes: []byte("x")}, &registerReply)
	require.NoError(err)
	require.Equal(state.Pending.String(), registerReply.State)

	var checkReply ItemInfoReply
	err = s.CheckItem(req, &ItemIDArgs{ItemID: id.String()}, &checkReply)
	require.ErrorIs(err, errItemNotFound)

	var getReply GetItemReply
	err = s.GetItem(req, &ItemIDArgs{ItemID: id.String()}, &getReply)
	require.NoError(err)
	require.True(getReply.Found)
	require.Equal([]byte("x"), getReply.Bytes)
}

func TestServiceRegisterItemBadID(t *testing.T) {
	require := require.New(t)

	s := testService(t)
	req := httptest.NewRequest("POST", "/", nil)
	var reply ItemInfoReply
	err := s.RegisterItem(req, &RegisterItemArgs{ItemID: "not-cb58"}, &reply)
	require.ErrorIs(err, errBadItemID)
}
