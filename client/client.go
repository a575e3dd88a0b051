// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package client is the in-process client surface: a thin adapter
// translating "register item"/"check item"/"wait for item" calls into
// kernel operations, for embedders that link this node as a library
// rather than talking to it over the api package's HTTP surface.
package client

import (
	"context"

	"github.com/ava-labs/quorumnode/ids"
	"github.com/ava-labs/quorumnode/kernel"
	"github.com/ava-labs/quorumnode/state"
)

// Client is the local, in-process view of a running Kernel.
type Client struct {
	kernel *kernel.Kernel
}

// New wraps k in a Client.
func New(k *kernel.Kernel) *Client {
	return &Client{kernel: k}
}

// RegisterItem submits item for decision, returning its immediate
// snapshot. onDone, if non-nil, is invoked once with the final result.
func (c *Client) RegisterItem(item *state.Item, onDone func(state.ItemResult)) (state.ItemInfo, error) {
	return c.kernel.RegisterItem(item, onDone)
}

// CheckItem probes the ledger only; it never observes an in-flight
// election, including one this client itself started.
func (c *Client) CheckItem(itemID ids.ItemID) (*state.ItemResult, error) {
	return c.kernel.CheckItem(itemID)
}

// WaitForItem blocks until itemID's outcome is settled or ctx is done.
func (c *Client) WaitForItem(ctx context.Context, itemID ids.ItemID) (*state.ItemResult, error) {
	return c.kernel.WaitForItem(ctx, itemID)
}

// GetItem returns the item body if a live election still holds it.
func (c *Client) GetItem(itemID ids.ItemID) *state.Item {
	return c.kernel.GetItem(itemID)
}
