// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api is the node's JSON-RPC HTTP surface: a thin RPC service
// wrapping client.Client, served through gorilla/mux + gorilla/rpc/v2
// behind CORS and gzip middleware.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/ava-labs/quorumnode/client"
	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/state"
	"github.com/ava-labs/quorumnode/utils/logging"
)

var (
	errBadItemID    = errors.New("api: malformed item id")
	errItemNotFound = errors.New("api: item not found")
)

// Service is the JSON-RPC method receiver registered under the "quorum"
// prefix. Every exported method matches gorilla/rpc/v2's signature
// convention: func(r *http.Request, args *Args, reply *Reply) error.
//
// The peer-facing check_item(caller, ...) entry point is deliberately not
// exposed here: this surface is for local clients only.
type Service struct {
	client *client.Client
	log    logging.Logger
}

// NewService returns a Service backed by c.
func NewService(c *client.Client, log logging.Logger) *Service {
	return &Service{client: c, log: log}
}

// RegisterItemArgs are the arguments to RegisterItem.
type RegisterItemArgs struct {
	ItemID string `json:"itemID"`
	Bytes  []byte `json:"bytes"`
}

// ItemInfoReply carries the fields of a state.ItemResult over the wire. It
// never includes the item body, for RegisterItem as for the other methods.
type ItemInfoReply struct {
	State     string     `json:"state"`
	HaveCopy  bool       `json:"haveCopy"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func toReply(r state.ItemResult) ItemInfoReply {
	return ItemInfoReply{
		State:     r.State.String(),
		HaveCopy:  r.HaveCopy,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

// RegisterItem submits a new item for decision.
func (s *Service) RegisterItem(r *http.Request, args *RegisterItemArgs, reply *ItemInfoReply) error {
	id, err := ids.FromString(args.ItemID)
	if err != nil {
		return errBadItemID
	}
	info, err := s.client.RegisterItem(&state.Item{ID: id, Bytes: args.Bytes}, nil)
	if err != nil {
		return err
	}
	*reply = toReply(info.Result)
	return nil
}

// ItemIDArgs identifies an item by its string id, shared by CheckItem
// and WaitForItem.
type ItemIDArgs struct {
	ItemID string `json:"itemID"`
}

// CheckItem is the cheap, ledger-only probe.
func (s *Service) CheckItem(r *http.Request, args *ItemIDArgs, reply *ItemInfoReply) error {
	id, err := ids.FromString(args.ItemID)
	if err != nil {
		return errBadItemID
	}
	result, err := s.client.CheckItem(id)
	if err != nil {
		return err
	}
	if result == nil {
		return errItemNotFound
	}
	*reply = toReply(*result)
	return nil
}

// WaitForItem blocks until the item's outcome is settled or the request
// context is canceled.
func (s *Service) WaitForItem(r *http.Request, args *ItemIDArgs, reply *ItemInfoReply) error {
	id, err := ids.FromString(args.ItemID)
	if err != nil {
		return errBadItemID
	}
	result, err := s.client.WaitForItem(r.Context(), id)
	if err != nil {
		return err
	}
	if result == nil {
		return errItemNotFound
	}
	*reply = toReply(*result)
	return nil
}

// GetItemReply carries the item body when a live election still holds it.
type GetItemReply struct {
	Found bool   `json:"found"`
	Bytes []byte `json:"bytes,omitempty"`
}

// GetItem returns the item body if a live election still holds it.
func (s *Service) GetItem(r *http.Request, args *ItemIDArgs, reply *GetItemReply) error {
	id, err := ids.FromString(args.ItemID)
	if err != nil {
		return errBadItemID
	}
	item := s.client.GetItem(id)
	if item == nil {
		*reply = GetItemReply{Found: false}
		return nil
	}
	*reply = GetItemReply{Found: true, Bytes: item.Bytes}
	return nil
}
