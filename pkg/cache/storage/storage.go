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

// Package storage implements the tiercache storage backend: an entry
// metadata index over a raw client, with synchronous capacity
// enforcement. Eviction is paid by the writer; capacity invariants hold
// whenever Set returns.
package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/evictionmethods"
	"github.com/trickstercache/tiercache/pkg/cache/metrics"
	"github.com/trickstercache/tiercache/pkg/observability/logging"
	"github.com/trickstercache/tiercache/pkg/observability/logging/logger"
	gm "github.com/trickstercache/tiercache/pkg/observability/metrics"
)

// Store implements the cache.Backend interface
var _ cache.Backend = &Store{}

// Options defines the capacity limits and eviction method of a Store
type Options struct {
	// MaxSizeObjects is the entry count above which the Store evicts;
	// 0 means unlimited
	MaxSizeObjects int64 `yaml:"max_size_objects,omitempty"`
	// MaxSizeBytes is the total entry byte size above which the Store
	// evicts; 0 means unlimited
	MaxSizeBytes int64 `yaml:"max_size_bytes,omitempty"`
	// EvictionMethod selects the victim-selection rule
	EvictionMethod evictionmethods.EvictionMethod `yaml:"-"`
}

// Store maintains metadata about every entry held by its raw client: the
// client owns the value bytes, the Store owns the timing/size/hit
// bookkeeping that drives eviction. The index always lives in memory,
// even when the client is a disk or network store.
type Store struct {
	name     string
	provider string
	client   cache.Client
	opts     Options

	mtx   sync.Mutex
	index map[string]*cache.Entry // metadata records; Value always nil
	size  int64
}

// New returns a Store over the provided raw client
func New(name, provider string, client cache.Client, opts Options) *Store {
	return &Store{
		name:     name,
		provider: provider,
		client:   client,
		opts:     opts,
		index:    make(map[string]*cache.Entry),
	}
}

// Connect initializes the raw client and publishes the Store's capacity
// limits to the metrics registry
func (s *Store) Connect() error {
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("storage connect: %w", err)
	}
	gm.CacheMaxObjects.WithLabelValues(s.name, s.provider).Set(float64(s.opts.MaxSizeObjects))
	gm.CacheMaxBytes.WithLabelValues(s.name, s.provider).Set(float64(s.opts.MaxSizeBytes))
	return nil
}

// Get returns the entry for cacheKey, updating the hit and last-access
// bookkeeping used by the eviction heuristics
func (s *Store) Get(cacheKey string) (*cache.Entry, error) {
	return s.retrieve(cacheKey, true)
}

// Peek returns the entry for cacheKey without touching its bookkeeping
func (s *Store) Peek(cacheKey string) (*cache.Entry, error) {
	return s.retrieve(cacheKey, false)
}

func (s *Store) retrieve(cacheKey string, touch bool) (*cache.Entry, error) {
	s.mtx.Lock()
	meta, ok := s.index[cacheKey]
	if !ok {
		s.mtx.Unlock()
		metrics.ObserveCacheMiss(s.name, s.provider)
		return nil, cache.ErrKNF
	}
	if touch {
		meta.Touch(time.Now())
	}
	out := meta.Clone()
	s.mtx.Unlock()

	data, err := s.client.Retrieve(cacheKey)
	if err == cache.ErrKNF {
		// the client lost the value behind the index's back; forget it
		s.Delete(cacheKey)
		return nil, cache.ErrKNF
	}
	if err != nil {
		return nil, fmt.Errorf("storage retrieve: %w", err)
	}
	out.Value = data
	metrics.ObserveCacheOperation(s.name, s.provider, "get", "hit", float64(len(data)))
	return out, nil
}

// Set upserts the entry under cacheKey, then evicts one victim at a time
// until the Store's capacity limits are satisfied
func (s *Store) Set(cacheKey string, entry *cache.Entry) error {
	if err := s.client.Store(cacheKey, entry.Value, entry.TTL); err != nil {
		return fmt.Errorf("storage store: %w", err)
	}

	meta := entry.Clone()
	meta.Value = nil

	s.mtx.Lock()
	defer s.mtx.Unlock()
	if old, ok := s.index[cacheKey]; ok {
		s.size -= old.Size
	}
	s.index[cacheKey] = meta
	s.size += meta.Size
	metrics.ObserveCacheSizeChange(s.name, s.provider, s.size, int64(len(s.index)))

	return s.enforceCapacity(cacheKey, meta)
}

// enforceCapacity evicts until the count and byte invariants hold; the
// caller must hold s.mtx
func (s *Store) enforceCapacity(newKey string, newMeta *cache.Entry) error {
	for s.overCapacity() {
		if len(s.index) == 1 {
			// only the incoming entry remains and it still does not fit
			s.removeLocked(newKey, newMeta)
			metrics.ObserveCacheEvent(s.name, s.provider, "error", "capacity")
			return cache.ErrCapacityExceeded
		}
		victimKey, victim := s.victim(newKey)
		if victim == nil {
			return nil
		}
		s.removeLocked(victimKey, victim)
		metrics.ObserveCacheEvent(s.name, s.provider, "eviction",
			s.opts.EvictionMethod.String())
		logger.Debug("cache entry evicted", logging.Pairs{
			"cacheName": s.name, "key": victimKey,
			"method": s.opts.EvictionMethod.String()})
	}
	return nil
}

func (s *Store) overCapacity() bool {
	return (s.opts.MaxSizeObjects > 0 && int64(len(s.index)) > s.opts.MaxSizeObjects) ||
		(s.opts.MaxSizeBytes > 0 && s.size > s.opts.MaxSizeBytes)
}

// victim selects the next entry to evict per the configured method,
// never choosing the entry just written; the caller must hold s.mtx
func (s *Store) victim(excludeKey string) (string, *cache.Entry) {
	var victimKey string
	var victim *cache.Entry
	for k, m := range s.index {
		if k == excludeKey {
			continue
		}
		if victim == nil || s.precedes(m, victim) {
			victimKey, victim = k, m
		}
	}
	return victimKey, victim
}

// precedes returns true if a should be evicted before b
func (s *Store) precedes(a, b *cache.Entry) bool {
	switch s.opts.EvictionMethod {
	case evictionmethods.EvictionMethodLFU:
		if a.Hits != b.Hits {
			return a.Hits < b.Hits
		}
		return a.LastAccessed.Before(b.LastAccessed)
	default: // LRU is the base rule for the memory-bounded method as well
		if !a.LastAccessed.Equal(b.LastAccessed) {
			return a.LastAccessed.Before(b.LastAccessed)
		}
		return a.Timestamp.Before(b.Timestamp)
	}
}

// removeLocked removes an entry and its client value; the caller must
// hold s.mtx
func (s *Store) removeLocked(cacheKey string, meta *cache.Entry) {
	delete(s.index, cacheKey)
	s.size -= meta.Size
	if err := s.client.Remove(cacheKey); err != nil {
		logger.Warn("storage remove failed", logging.Pairs{
			"cacheName": s.name, "key": cacheKey, "error": err.Error()})
	}
	metrics.ObserveCacheSizeChange(s.name, s.provider, s.size, int64(len(s.index)))
}

// Delete removes the entry under cacheKey, returning true if present
func (s *Store) Delete(cacheKey string) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	meta, ok := s.index[cacheKey]
	if !ok {
		return false
	}
	s.removeLocked(cacheKey, meta)
	metrics.ObserveCacheDel(s.name, s.provider, 1)
	return true
}

// Clear removes every entry from the Store and its client
func (s *Store) Clear() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.index = make(map[string]*cache.Entry)
	s.size = 0
	if err := s.client.Clear(); err != nil {
		logger.Warn("storage clear failed", logging.Pairs{
			"cacheName": s.name, "error": err.Error()})
	}
	metrics.ObserveCacheSizeChange(s.name, s.provider, 0, 0)
}

// Keys returns the Store's keys in lexical order
func (s *Store) Keys() []string {
	s.mtx.Lock()
	keys := make([]string, 0, len(s.index))
	for k := range s.index {
		keys = append(keys, k)
	}
	s.mtx.Unlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries in the Store
func (s *Store) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.index)
}

// MemoryUsage returns the sum of entry sizes in bytes
func (s *Store) MemoryUsage() int64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.size
}

// Close closes the raw client
func (s *Store) Close() error {
	return s.client.Close()
}
