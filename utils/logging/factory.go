// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"fmt"
	"sync"
)

// Factory creates named Logger instances sharing a base Config, one per
// node subsystem (kernel, election, ledger, network, api).
type Factory interface {
	Make(name string) (Logger, error)
	SetLogLevel(name string, level Level) error
	SetDisplayLevel(name string, level Level) error
	GetLoggerNames() []string
	Close()
}

type factory struct {
	config Config
	lock   sync.RWMutex

	loggers map[string]Logger
}

// NewFactory returns a Factory producing loggers configured with the
// values set in config, each scoped to its own MsgPrefix.
func NewFactory(config Config) Factory {
	return &factory{
		config:  config,
		loggers: make(map[string]Logger),
	}
}

func (f *factory) Make(name string) (Logger, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if _, ok := f.loggers[name]; ok {
		return nil, fmt.Errorf("logger with name %q already exists", name)
	}

	config := f.config
	config.LoggerName = name
	config.MsgPrefix = name

	l, err := NewLogger(config)
	if err != nil {
		return nil, err
	}
	f.loggers[name] = l
	return l, nil
}

func (f *factory) SetLogLevel(name string, level Level) error {
	f.lock.RLock()
	defer f.lock.RUnlock()

	l, ok := f.loggers[name]
	if !ok {
		return fmt.Errorf("logger with name %q not found", name)
	}
	l.SetLogLevel(level)
	return nil
}

func (f *factory) SetDisplayLevel(name string, level Level) error {
	f.lock.RLock()
	defer f.lock.RUnlock()

	l, ok := f.loggers[name]
	if !ok {
		return fmt.Errorf("logger with name %q not found", name)
	}
	l.SetDisplayLevel(level)
	return nil
}

func (f *factory) GetLoggerNames() []string {
	f.lock.RLock()
	defer f.lock.RUnlock()

	names := make([]string, 0, len(f.loggers))
	for name := range f.loggers {
		names = append(names, name)
	}
	return names
}

func (f *factory) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, l := range f.loggers {
		l.Stop()
	}
	f.loggers = nil
}
