// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command quorumnode runs a single node of the item-election kernel: it
// opens the on-disk ledger, starts the network scheduler, and serves the
// JSON-RPC client surface until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/quorumnode/api"
	"github.com/ava-labs/quorumnode/client"
	"github.com/ava-labs/quorumnode/config"
	"github.com/ava-labs/quorumnode/database/pebble"
	"github.com/ava-labs/quorumnode/kernel"
	"github.com/ava-labs/quorumnode/ledger"
	"github.com/ava-labs/quorumnode/network"
	"github.com/ava-labs/quorumnode/utils/logging"
	"github.com/ava-labs/quorumnode/utils/wrappers"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Parse(args)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	log, err := logging.NewLogger(cfg.LoggingConfig)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Stop()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	registerer := prometheus.NewRegistry()

	db, err := pebble.New(filepath.Join(cfg.DataDir, "ledger"), pebble.DefaultConfig, log, "ledger", registerer)
	if err != nil {
		return fmt.Errorf("opening ledger database: %w", err)
	}

	l := ledger.New(db, log)
	net := network.New(cfg.NetworkConfig, log, "network", registerer)
	defer net.Shutdown()

	for _, addr := range cfg.BootstrapPeers {
		log.Info("bootstrap peer configured", zap.String("addr", addr))
	}

	k := kernel.New(l, net, cfg.ElectionConfig, log, "kernel", registerer)
	c := client.New(k)

	srv, err := api.NewServer(c, log, cfg.HTTPHost, cfg.HTTPPort, []string{"*"})
	if err != nil {
		return fmt.Errorf("building API server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Dispatch()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		_ = db.Close()
		return err
	case <-sigCh:
		log.Info("shutting down")
	}

	errs := wrappers.Errs{}
	errs.Add(srv.Shutdown())
	closed := k.Shutdown()
	log.Info("closed live elections on shutdown", zap.Int("count", len(closed)))
	errs.Add(db.Close())

	if errs.Errored() {
		return fmt.Errorf("errors during shutdown: %w", errs.Err)
	}
	return nil
}
