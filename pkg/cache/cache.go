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

// Package cache defines the tiercache storage interfaces and the cache
// entry model shared by all layers
package cache

import (
	"time"
)

// Client is the interface for the raw key/value fabrics that hold entry
// bytes on behalf of a storage Backend. Retrieve() must return ErrKNF on
// a cache miss.
type Client interface {
	Connect() error
	Store(cacheKey string, data []byte, ttl time.Duration) error
	Retrieve(cacheKey string) ([]byte, error)
	Remove(cacheKeys ...string) error
	Clear() error
	Close() error
}

// Backend is the interface for a single cache tier's storage. A Backend
// owns its entries exclusively; no entry is shared by reference across
// Backends. Set enforces the Backend's capacity limits synchronously, so
// the entry count and memory invariants hold by the time Set returns.
type Backend interface {
	// Get returns the entry for cacheKey and updates its access
	// bookkeeping (Hits, LastAccessed). Returns ErrKNF when absent.
	Get(cacheKey string) (*Entry, error)
	// Peek returns the entry for cacheKey without updating access
	// bookkeeping; used for tag and pattern scans.
	Peek(cacheKey string) (*Entry, error)
	// Set upserts the entry, then evicts per the Backend's policy until
	// capacity limits are satisfied. Returns ErrCapacityExceeded when the
	// entry cannot fit even after evicting everything else.
	Set(cacheKey string, entry *Entry) error
	// Delete removes the entry, returning true if it was present.
	Delete(cacheKey string) bool
	Clear()
	Keys() []string
	Len() int
	MemoryUsage() int64
	Close() error
}

// SetOptions carries the caller-supplied options for a write through the
// cache manager. A zero TTL defers to each layer's default TTL.
type SetOptions struct {
	TTL      time.Duration
	Tags     []string
	Metadata map[string]any
}
