// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import "sync"

// Atomic wraps a value of any type behind a mutex, giving it Get/Set
// without requiring the caller to reason about the underlying lock.
type Atomic[T any] struct {
	lock  sync.RWMutex
	value T
}

func NewAtomic[T any](v T) Atomic[T] {
	return Atomic[T]{value: v}
}

func (a *Atomic[T]) Get() T {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.value
}

func (a *Atomic[T]) Set(v T) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.value = v
}
