// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ava-labs/quorumnode/ids"
)

// PeerSet tracks the peers currently known to this node. It backs
// Network.Peers/Size/CheckState; the decision kernel itself never reads
// it directly.
type PeerSet interface {
	fmt.Stringer

	// Add registers peer as known, addressable at addr.
	Add(peer ids.NodeID, addr string)

	// Remove forgets peer.
	Remove(peer ids.NodeID)

	// Contains reports whether peer is currently known.
	Contains(peer ids.NodeID) bool

	// List returns every known peer.
	List() []ids.NodeID

	// Len returns the number of known peers.
	Len() int
}

type peerSet struct {
	lock sync.RWMutex
	// addrs maps a known peer to the address it last reported.
	addrs map[ids.NodeID]string
}

// NewPeerSet returns an empty PeerSet.
func NewPeerSet() PeerSet {
	return &peerSet{addrs: make(map[ids.NodeID]string)}
}

func (s *peerSet) Add(peer ids.NodeID, addr string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.addrs[peer] = addr
}

func (s *peerSet) Remove(peer ids.NodeID) {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.addrs, peer)
}

func (s *peerSet) Contains(peer ids.NodeID) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	_, ok := s.addrs[peer]
	return ok
}

func (s *peerSet) List() []ids.NodeID {
	s.lock.RLock()
	defer s.lock.RUnlock()

	peers := make([]ids.NodeID, 0, len(s.addrs))
	for peer := range s.addrs {
		peers = append(peers, peer)
	}
	return peers
}

func (s *peerSet) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.addrs)
}

func (s *peerSet) String() string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	peerStrs := make([]string, 0, len(s.addrs))
	for peer, addr := range s.addrs {
		peerStrs = append(peerStrs, fmt.Sprintf("%s (%s)", peer, addr))
	}
	return fmt.Sprintf("Peers: [%s]", strings.Join(peerStrs, ", "))
}
