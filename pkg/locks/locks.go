/*
 * Copyright 2018 The Trickster Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package locks provides Named Locks, serializing cache operations on
// the same layer+key without contending across unrelated keys
package locks

import (
	"errors"
	"sync"
)

// ErrInvalidLockName is returned when a lock is requested with an empty name
var ErrInvalidLockName = errors.New("invalid lock name")

// NamedLocker provides a locker for handling Named Locks
type NamedLocker interface {
	Acquire(lockName string) (NamedLock, error)
	RAcquire(lockName string) (NamedLock, error)
}

// NamedLock defines the interface for implementing Named Locks
type NamedLock interface {
	Release()
	RRelease()
}

// NewNamedLocker returns a new Named Locker
func NewNamedLocker() NamedLocker {
	return &namedLocker{locks: make(map[string]*namedLock)}
}

type namedLocker struct {
	mtx   sync.Mutex
	locks map[string]*namedLock
}

type namedLock struct {
	sync.RWMutex
	name    string
	holders int
	locker  *namedLocker
}

func (lk *namedLocker) checkout(lockName string) (*namedLock, error) {
	if lockName == "" {
		return nil, ErrInvalidLockName
	}
	lk.mtx.Lock()
	nl, ok := lk.locks[lockName]
	if !ok {
		nl = &namedLock{name: lockName, locker: lk}
		lk.locks[lockName] = nl
	}
	nl.holders++
	lk.mtx.Unlock()
	return nl, nil
}

// Acquire locks the named lock for writing and blocks until acquired
func (lk *namedLocker) Acquire(lockName string) (NamedLock, error) {
	nl, err := lk.checkout(lockName)
	if err != nil {
		return nil, err
	}
	nl.Lock()
	return nl, nil
}

// RAcquire locks the named lock for reading and blocks until acquired
func (lk *namedLocker) RAcquire(lockName string) (NamedLock, error) {
	nl, err := lk.checkout(lockName)
	if err != nil {
		return nil, err
	}
	nl.RLock()
	return nl, nil
}

func (nl *namedLock) checkin() {
	lk := nl.locker
	lk.mtx.Lock()
	nl.holders--
	// the lock entry is removed from the map once nothing holds or awaits it
	if nl.holders == 0 {
		delete(lk.locks, nl.name)
	}
	lk.mtx.Unlock()
}

// Release releases the write lock on the subject Named Lock
func (nl *namedLock) Release() {
	nl.Unlock()
	nl.checkin()
}

// RRelease releases the read lock on the subject Named Lock
func (nl *namedLock) RRelease() {
	nl.RUnlock()
	nl.checkin()
}
