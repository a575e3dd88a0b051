// (c) 2021-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config parses command-line flags and an optional config file
// into a Config describing how to run a node: where its ledger lives,
// what address it listens on, and the election parameters that govern
// every item this node decides on.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ava-labs/quorumnode/election"
	"github.com/ava-labs/quorumnode/network"
	"github.com/ava-labs/quorumnode/utils/logging"
)

// Flag keys, kept as exported constants so tests and callers can refer
// to them without repeating string literals.
const (
	DataDirKey       = "data-dir"
	HTTPHostKey      = "http-host"
	HTTPPortKey      = "http-port"
	BootstrapPeerKey = "bootstrap-peers"

	MaxElectionsTimeKey = "max-election-time"
	QuorumSizeKey       = "quorum-size"

	LogLevelKey     = "log-level"
	LogDisplayLevel = "log-display-level"
	LogDirKey       = "log-dir"
	LogDisableDisk  = "log-disable-disk"

	ConfigFileKey = "config-file"
)

var defaultDataDir = os.ExpandEnv("$HOME/.quorumnode")

// Config is the fully resolved set of parameters a node runs with.
type Config struct {
	DataDir string

	HTTPHost string
	HTTPPort uint16

	// BootstrapPeers are addr strings ("host:port") logged at startup; no
	// connection to them is opened.
	BootstrapPeers []string

	NetworkConfig  network.Config
	ElectionConfig election.Config
	LoggingConfig  logging.Config
}

// BuildFlagSet returns the full command-line surface for a node.
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("quorumnode", pflag.ContinueOnError)

	fs.String(ConfigFileKey, "", "Path to a YAML/JSON/TOML config file")

	fs.String(DataDirKey, defaultDataDir, "Directory holding the node's ledger database")
	fs.String(HTTPHostKey, "127.0.0.1", "Address the JSON-RPC API server listens on")
	fs.Uint16(HTTPPortKey, 9650, "Port the JSON-RPC API server listens on")
	fs.StringSlice(BootstrapPeerKey, nil, "Comma-separated list of host:port peer addresses to log at startup (no connection is opened)")

	fs.Duration(MaxElectionsTimeKey, network.DefaultConfig().MaxElectionsTime,
		"Ceiling on how long an election may run before it force-resolves")
	fs.Int(QuorumSizeKey, election.DefaultConfig().QuorumSize,
		"Number of consistent votes required to finalize an item")

	fs.String(LogLevelKey, logging.DefaultConfig().LogLevel.String(), "Log level written to disk")
	fs.String(LogDisplayLevel, logging.DefaultConfig().DisplayLevel.String(), "Log level written to stderr")
	fs.String(LogDirKey, logging.DefaultLogDirectory, "Directory log files are written to")
	fs.Bool(LogDisableDisk, false, "Disable writing logs to disk, stderr only")

	return fs
}

// Parse reads args through a FlagSet built by BuildFlagSet, layering an
// optional config file underneath, and returns the resolved Config.
func Parse(args []string) (Config, error) {
	fs := BuildFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}

	if path := v.GetString(ConfigFileKey); path != "" {
		v.SetConfigFile(os.ExpandEnv(path))
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}

	logLevel, err := logging.ToLevel(v.GetString(LogLevelKey))
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", LogLevelKey, err)
	}
	displayLevel, err := logging.ToLevel(v.GetString(LogDisplayLevel))
	if err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", LogDisplayLevel, err)
	}

	quorumSize := v.GetInt(QuorumSizeKey)
	if quorumSize < 1 {
		return Config{}, fmt.Errorf("%s must be >= 1, got %d", QuorumSizeKey, quorumSize)
	}

	maxElectionsTime := v.GetDuration(MaxElectionsTimeKey)
	if maxElectionsTime <= 0 {
		return Config{}, fmt.Errorf("%s must be > 0, got %s", MaxElectionsTimeKey, maxElectionsTime)
	}

	return Config{
		DataDir:        os.ExpandEnv(v.GetString(DataDirKey)),
		HTTPHost:       v.GetString(HTTPHostKey),
		HTTPPort:       uint16(v.GetUint(HTTPPortKey)),
		BootstrapPeers: v.GetStringSlice(BootstrapPeerKey),
		NetworkConfig: network.Config{
			MaxElectionsTime: maxElectionsTime,
		},
		ElectionConfig: election.Config{
			QuorumSize: quorumSize,
		},
		LoggingConfig: logging.Config{
			LoggerName:   "quorumnode",
			LogLevel:     logLevel,
			DisplayLevel: displayLevel,
			Directory:    os.ExpandEnv(v.GetString(LogDirKey)),
			DisableDisk:  v.GetBool(LogDisableDisk),
		},
	}, nil
}

// HTTPAddr formats the resolved HTTP host/port pair for net.Listen.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}
