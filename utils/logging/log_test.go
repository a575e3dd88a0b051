// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerLevels(t *testing.T) {
	require := require.New(t)

	l, err := NewLogger(DefaultConfig())
	require.NoError(err)
	defer l.Stop()

	require.Equal(Info, l.GetDisplayLevel())
	l.SetDisplayLevel(Debug)
	require.Equal(Debug, l.GetDisplayLevel())

	l.Info("hello", zap.String("who", "world"))
}

func TestFactoryRejectsDuplicateNames(t *testing.T) {
	require := require.New(t)

	f := NewFactory(DefaultConfig())
	defer f.Close()

	_, err := f.Make("kernel")
	require.NoError(err)

	_, err = f.Make("kernel")
	require.Error(err)
}
