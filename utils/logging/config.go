// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"fmt"
	"strings"
)

// AppName seeds the default log directory and the logger namespace prefix.
const AppName = "quorumnode"

// DefaultLogDirectory is where file-backed loggers write when no directory
// is supplied explicitly.
var DefaultLogDirectory = fmt.Sprintf("~/.%s/logs", AppName)

// Config controls how a Logger built by NewLogger or a Factory behaves.
type Config struct {
	LoggerName   string
	MsgPrefix    string
	LogLevel     Level
	DisplayLevel Level
	Directory    string
	DisableDisk  bool
}

// DefaultConfig returns a Config writing Info and above to stderr with no
// file backing.
func DefaultConfig() Config {
	return Config{
		LogLevel:     Info,
		DisplayLevel: Info,
		Directory:    DefaultLogDirectory,
		DisableDisk:  true,
	}
}

// AddFileNamePrefix appends prefix segments to MsgPrefix, separated by a
// period.
func (c *Config) AddFileNamePrefix(prefix ...string) {
	if len(prefix) == 0 {
		return
	}
	joined := strings.Join(prefix, ".")
	if c.MsgPrefix == "" {
		c.MsgPrefix = joined
		return
	}
	c.MsgPrefix = fmt.Sprintf("%s.%s", c.MsgPrefix, joined)
}
