// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := Parse(nil)
	require.NoError(err)
	require.Equal(uint16(9650), cfg.HTTPPort)
	require.Equal(2, cfg.ElectionConfig.QuorumSize)
	require.Positive(cfg.NetworkConfig.MaxElectionsTime)
	require.Empty(cfg.BootstrapPeers)
}

func TestParseOverrides(t *testing.T) {
	require := require.New(t)

	cfg, err := Parse([]string{
		"--" + HTTPPortKey, "8080",
		"--" + QuorumSizeKey, "5",
		"--" + MaxElectionsTimeKey, "10s",
		"--" + BootstrapPeerKey, "10.0.0.1:9651,10.0.0.2:9651",
	})
	require.NoError(err)
	require.Equal(uint16(8080), cfg.HTTPPort)
	require.Equal(5, cfg.ElectionConfig.QuorumSize)
	require.Equal(10*time.Second, cfg.NetworkConfig.MaxElectionsTime)
	require.Equal([]string{"10.0.0.1:9651", "10.0.0.2:9651"}, cfg.BootstrapPeers)
}

func TestParseRejectsInvalidQuorumSize(t *testing.T) {
	require := require.New(t)

	_, err := Parse([]string{"--" + QuorumSizeKey, "0"})
	require.Error(err)
}

func TestParseRejectsBadLogLevel(t *testing.T) {
	require := require.New(t)

	_, err := Parse([]string{"--" + LogLevelKey, "not-a-level"})
	require.Error(err)
}

func TestHTTPAddr(t *testing.T) {
	require := require.New(t)

	cfg := Config{HTTPHost: "127.0.0.1", HTTPPort: 9650}
	require.Equal("127.0.0.1:9650", cfg.HTTPAddr())
}
