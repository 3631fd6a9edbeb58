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

package locks

import (
	"errors"
	"sync"
	"testing"
)

func TestLocks(t *testing.T) {
	locker := NewNamedLocker()
	var testVal int
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			nl, err := locker.Acquire("test")
			if err != nil {
				t.Error(err)
				return
			}
			testVal++
			nl.Release()
		}()
	}
	wg.Wait()
	if testVal != 10 {
		t.Errorf("expected 10 got %d", testVal)
	}
}

func TestRLocks(t *testing.T) {
	locker := NewNamedLocker()
	nl, err := locker.RAcquire("test")
	if err != nil {
		t.Fatal(err)
	}
	// a second reader proceeds without blocking
	nl2, err := locker.RAcquire("test")
	if err != nil {
		t.Fatal(err)
	}
	nl2.RRelease()
	nl.RRelease()
}

func TestLocksInvalidName(t *testing.T) {
	locker := NewNamedLocker()
	if _, err := locker.Acquire(""); !errors.Is(err, ErrInvalidLockName) {
		t.Errorf("expected ErrInvalidLockName got %v", err)
	}
	if _, err := locker.RAcquire(""); !errors.Is(err, ErrInvalidLockName) {
		t.Errorf("expected ErrInvalidLockName got %v", err)
	}
}

func TestLockEntryReaped(t *testing.T) {
	locker := NewNamedLocker().(*namedLocker)
	nl, err := locker.Acquire("test")
	if err != nil {
		t.Fatal(err)
	}
	nl.Release()
	locker.mtx.Lock()
	n := len(locker.locks)
	locker.mtx.Unlock()
	if n != 0 {
		t.Errorf("expected the released lock reaped from the map, got %d entries", n)
	}
}
