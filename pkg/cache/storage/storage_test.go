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

package storage

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/evictionmethods"
	"github.com/trickstercache/tiercache/pkg/cache/memory"
	"github.com/trickstercache/tiercache/pkg/observability/logging"
	"github.com/trickstercache/tiercache/pkg/observability/logging/level"
	"github.com/trickstercache/tiercache/pkg/observability/logging/logger"
)

const provider = "memory"

func newTestStore(t *testing.T, opts Options) *Store {
	logger.SetLogger(logging.ConsoleLogger(level.Error))
	s := New(t.Name(), provider, memory.New(t.Name()), opts)
	if err := s.Connect(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEntry(value string) *cache.Entry {
	return cache.NewEntry([]byte(value), 0, nil)
}

func TestStoreGetSet(t *testing.T) {
	s := newTestStore(t, Options{})
	if err := s.Set("k", testEntry("data")); err != nil {
		t.Fatal(err)
	}
	e, err := s.Get("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(e.Value) != "data" {
		t.Errorf("expected data got %s", string(e.Value))
	}
	if e.Hits != 1 {
		t.Errorf("expected 1 hit got %d", e.Hits)
	}

	_, err = s.Get("absent")
	if !errors.Is(err, cache.ErrKNF) {
		t.Errorf("expected ErrKNF got %v", err)
	}
}

func TestStorePeekDoesNotTouch(t *testing.T) {
	s := newTestStore(t, Options{})
	if err := s.Set("k", testEntry("data")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Peek("k"); err != nil {
		t.Fatal(err)
	}
	e, err := s.Peek("k")
	if err != nil {
		t.Fatal(err)
	}
	if e.Hits != 0 {
		t.Errorf("expected peek to leave hits at 0, got %d", e.Hits)
	}
}

func TestStoreCapacityInvariant(t *testing.T) {
	const maxObjects = 3
	s := newTestStore(t, Options{MaxSizeObjects: maxObjects})
	for i := 0; i < 10; i++ {
		if err := s.Set("k"+strconv.Itoa(i), testEntry("data")); err != nil {
			t.Fatal(err)
		}
		if s.Len() > maxObjects {
			t.Fatalf("capacity invariant violated: %d entries after set %d",
				s.Len(), i)
		}
	}
}

func TestStoreLRU(t *testing.T) {
	s := newTestStore(t, Options{MaxSizeObjects: 3,
		EvictionMethod: evictionmethods.EvictionMethodLRU})

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Set(k, testEntry("data")); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
	}
	// touching a makes b the least recently used
	if _, err := s.Get("a"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if err := s.Set("d", testEntry("data")); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Peek("b"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected b to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, err := s.Peek(k); err != nil {
			t.Errorf("expected %s to remain: %v", k, err)
		}
	}
}

func TestStoreLFU(t *testing.T) {
	s := newTestStore(t, Options{MaxSizeObjects: 2,
		EvictionMethod: evictionmethods.EvictionMethodLFU})

	s.Set("hot", testEntry("data"))
	s.Set("cold", testEntry("data"))
	for i := 0; i < 3; i++ {
		if _, err := s.Get("hot"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Get("cold"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("new", testEntry("data")); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Peek("cold"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected the least frequently used entry to be evicted")
	}
	if _, err := s.Peek("hot"); err != nil {
		t.Errorf("expected hot to remain: %v", err)
	}
}

func TestStoreMemoryBounded(t *testing.T) {
	s := newTestStore(t, Options{MaxSizeBytes: 10,
		EvictionMethod: evictionmethods.EvictionMethodMemoryBounded})

	s.Set("a", testEntry("12345"))
	time.Sleep(time.Millisecond)
	s.Set("b", testEntry("12345"))
	time.Sleep(time.Millisecond)
	// 5 more bytes exceed the limit; a is the oldest and is evicted
	if err := s.Set("c", testEntry("12345")); err != nil {
		t.Fatal(err)
	}
	if s.MemoryUsage() > 10 {
		t.Errorf("memory invariant violated: %d bytes", s.MemoryUsage())
	}
	if _, err := s.Peek("a"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected a to be evicted")
	}
}

func TestStoreOversizedEntry(t *testing.T) {
	s := newTestStore(t, Options{MaxSizeBytes: 4})
	s.Set("a", testEntry("12"))
	err := s.Set("big", testEntry("123456789"))
	if !errors.Is(err, cache.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded got %v", err)
	}
	if _, err := s.Peek("big"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected the oversized entry to be absent")
	}
	if s.Len() != 0 {
		t.Errorf("expected the store emptied by the oversized write, got %d entries",
			s.Len())
	}
}

func TestStoreUpdateReplacesSize(t *testing.T) {
	s := newTestStore(t, Options{})
	s.Set("k", testEntry("1234"))
	s.Set("k", testEntry("12"))
	if s.MemoryUsage() != 2 {
		t.Errorf("expected 2 bytes after update got %d", s.MemoryUsage())
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entry got %d", s.Len())
	}
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore(t, Options{})
	s.Set("k", testEntry("data"))
	if !s.Delete("k") {
		t.Error("expected delete of a present key to return true")
	}
	if s.Delete("k") {
		t.Error("expected delete of an absent key to return false")
	}
	if s.MemoryUsage() != 0 {
		t.Errorf("expected 0 bytes after delete got %d", s.MemoryUsage())
	}
}

func TestStoreClear(t *testing.T) {
	s := newTestStore(t, Options{})
	s.Set("a", testEntry("data"))
	s.Set("b", testEntry("data"))
	s.Clear()
	if s.Len() != 0 || s.MemoryUsage() != 0 {
		t.Errorf("expected empty store after clear, got %d entries %d bytes",
			s.Len(), s.MemoryUsage())
	}
	// clear is idempotent
	s.Clear()
	if s.Len() != 0 {
		t.Error("expected repeated clear to be a no-op")
	}
}

func TestStoreKeys(t *testing.T) {
	s := newTestStore(t, Options{})
	for _, k := range []string{"c", "a", "b"} {
		s.Set(k, testEntry("data"))
	}
	keys := s.Keys()
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys got %d", len(keys))
	}
	if keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("expected lexical key order got %v", keys)
	}
}
