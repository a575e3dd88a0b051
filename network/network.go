// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package network is the decision kernel's consumed networking
// collaborator: peer addressing, the network-wide election ceiling
// T_max, and a delayed-task scheduler elections and the kernel use for
// timeouts and post-decision purges.
package network

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/utils/logging"
)

// Network is the interface the decision kernel and its elections consume.
// The kernel itself only calls MaxElectionsTime and Schedule; Peers, Size,
// and CheckState are surfaced for clients and the API layer.
type Network interface {
	// Peers returns every peer this node currently knows about.
	Peers() []ids.NodeID

	// Size returns len(Peers()).
	Size() int

	// CheckState asks reporter for a liveness signal and returns the
	// number of peers currently considered active. reporter is included
	// for parity with the peer-driven health-check entry point; a stub
	// implementation may ignore it.
	CheckState(reporter ids.NodeID) int

	// MaxElectionsTime returns T_max, the network-wide ceiling on how
	// long an election may run and how long its map entry is retained
	// after DONE.
	MaxElectionsTime() time.Duration

	// Schedule enqueues task to run after delay on the shared scheduler
	// pool. Ordering between tasks of equal delay is unspecified.
	Schedule(delay time.Duration, task func()) Handle

	// AddPeer registers peer as known, addressable at addr.
	AddPeer(peer ids.NodeID, addr string)

	// RemovePeer forgets peer.
	RemovePeer(peer ids.NodeID)

	// Shutdown releases the scheduler's resources. Tasks already firing
	// still run to completion; pending ones are canceled.
	Shutdown()
}

type network struct {
	peers     PeerSet
	scheduler Scheduler
	tMax      time.Duration
	log       logging.Logger
}

// Config controls the fixed parameters of a Network.
type Config struct {
	// MaxElectionsTime is T_max: the ceiling on an election's lifetime
	// and the grace window its map entry survives past DONE.
	MaxElectionsTime time.Duration
}

// DefaultConfig mirrors the source's default election ceiling: long
// enough to gather a quorum across a slow network, short enough that a
// stalled election doesn't pin memory indefinitely.
func DefaultConfig() Config {
	return Config{MaxElectionsTime: 30 * time.Second}
}

// New returns a Network backed by an empty peer set and a scheduler
// registered under namespace.
func New(cfg Config, log logging.Logger, namespace string, registerer prometheus.Registerer) Network {
	return &network{
		peers:     NewPeerSet(),
		scheduler: NewScheduler(namespace, registerer),
		tMax:      cfg.MaxElectionsTime,
		log:       log,
	}
}

func (n *network) Peers() []ids.NodeID { return n.peers.List() }

func (n *network) Size() int { return n.peers.Len() }

func (n *network) CheckState(reporter ids.NodeID) int {
	n.log.Verbo("checking network state", zap.Stringer("reporter", reporter))
	return n.peers.Len()
}

func (n *network) MaxElectionsTime() time.Duration { return n.tMax }

func (n *network) Schedule(delay time.Duration, task func()) Handle {
	return n.scheduler.Schedule(delay, task)
}

func (n *network) AddPeer(peer ids.NodeID, addr string) { n.peers.Add(peer, addr) }

func (n *network) RemovePeer(peer ids.NodeID) { n.peers.Remove(peer) }

func (n *network) Shutdown() { n.scheduler.Close() }
