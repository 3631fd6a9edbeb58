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

// Package manager implements the multi-tier cache Manager: a stack of
// priority-ordered layers with read-through promotion, fan-out writes,
// tag/pattern/dependency invalidation, write triggers, cache warming and
// per-operation analytics. Callers interact only with the Manager; it
// delegates entry storage to each layer's backend.
package manager

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/analytics"
	"github.com/trickstercache/tiercache/pkg/cache/metrics"
	"github.com/trickstercache/tiercache/pkg/locks"
	"github.com/trickstercache/tiercache/pkg/observability/logging"
	"github.com/trickstercache/tiercache/pkg/observability/logging/logger"
	"golang.org/x/sync/singleflight"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config defines a Manager's non-layer behavior
type Config struct {
	// Analytics configures the analytics engine; nil applies defaults
	Analytics *analytics.Config `yaml:"analytics,omitempty"`
}

// Manager orchestrates the cache tiers
type Manager struct {
	mtx        sync.RWMutex
	layers     []*Layer // sorted by priority descending
	layerNames map[string]*Layer
	triggers   []*Trigger
	strategies map[string]*WarmingStrategy
	sched      gocron.Scheduler

	engine *analytics.Engine
	locker locks.NamedLocker
	sf     singleflight.Group
}

// New returns a Manager with no layers registered
func New(cfg *Config) *Manager {
	var ac *analytics.Config
	if cfg != nil {
		ac = cfg.Analytics
	}
	return &Manager{
		layerNames: make(map[string]*Layer),
		strategies: make(map[string]*WarmingStrategy),
		engine:     analytics.New(ac),
		locker:     locks.NewNamedLocker(),
	}
}

// AddLayer registers a layer and re-sorts the stack by priority
// descending. Duplicate layer names are rejected.
func (m *Manager) AddLayer(l *Layer) error {
	if err := l.validate(); err != nil {
		return err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if _, ok := m.layerNames[l.Name]; ok {
		return fmt.Errorf("%w: %s", cache.ErrDuplicateLayer, l.Name)
	}
	m.layerNames[l.Name] = l
	m.layers = append(m.layers, l)
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority > m.layers[j].Priority
	})
	logger.Info("cache layer registered", logging.Pairs{
		"layer": l.Name, "priority": l.Priority, "layerCount": len(m.layers)})
	return nil
}

// Layer returns the registered layer of the provided name
func (m *Manager) Layer(name string) (*Layer, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	l, ok := m.layerNames[name]
	return l, ok
}

// Layers returns the layer stack in priority order, highest first
func (m *Manager) Layers() []*Layer {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	out := make([]*Layer, len(m.layers))
	copy(out, m.layers)
	return out
}

type lookupResult struct {
	value []byte
	found bool
}

// Get scans the layer stack from highest to lowest priority and returns
// the first live value found, promoting it into every higher-priority
// layer before returning. Expired entries encountered on the way down
// are lazily deleted. A failing layer is skipped; Get errors only when
// every layer fails.
func (m *Manager) Get(key string) ([]byte, bool, error) {
	start := time.Now()
	layers := m.Layers()
	if len(layers) == 0 {
		m.engine.RecordMiss(key, time.Since(start))
		return nil, false, nil
	}
	v, err, _ := m.sf.Do(key, func() (any, error) {
		return m.lookup(key, layers)
	})
	if err != nil {
		m.engine.RecordError(key)
		return nil, false, err
	}
	lr := v.(*lookupResult)
	if !lr.found {
		m.engine.RecordMiss(key, time.Since(start))
		return nil, false, nil
	}
	m.engine.RecordHit(key, time.Since(start))
	return lr.value, true, nil
}

// GetAs looks up key through the Manager and deserializes the value
// into T
func GetAs[T any](m *Manager, key string) (T, bool, error) {
	var out T
	b, ok, err := m.Get(key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, false, fmt.Errorf("cache value decode: %w", err)
	}
	return out, true, nil
}

func (m *Manager) lookup(key string, layers []*Layer) (*lookupResult, error) {
	nl, err := m.locker.RAcquire(key)
	if err != nil {
		return nil, err
	}
	defer nl.RRelease()

	now := time.Now()
	var failures int
	for i, l := range layers {
		entry, err := l.Storage.Get(key)
		if errors.Is(err, cache.ErrKNF) {
			continue
		}
		if err != nil {
			failures++
			m.engine.RecordError(key)
			metrics.ObserveCacheEvent(l.Name, "layer", "error", "retrieve")
			logger.Warn("cache layer read failed", logging.Pairs{
				"layer": l.Name, "key": key, "error": err.Error()})
			continue
		}
		if !entry.Live(now) {
			l.Storage.Delete(key)
			metrics.ObserveCacheEvent(l.Name, "layer", "eviction", "ttl")
			continue
		}
		// promotion is synchronous: a direct read of any higher layer
		// observes the promoted value once Get returns
		m.promote(key, entry, layers[:i], now)
		return &lookupResult{value: entry.Value, found: true}, nil
	}
	if failures > 0 && failures == len(layers) {
		return nil, fmt.Errorf("%w: get %s", cache.ErrAllLayersFailed, key)
	}
	return &lookupResult{}, nil
}

// promote copies the entry into every higher-priority layer that lacks a
// live entry for the key, with fresh write and access times
func (m *Manager) promote(key string, entry *cache.Entry, higher []*Layer, now time.Time) {
	for _, h := range higher {
		if cur, err := h.Storage.Peek(key); err == nil && cur.Live(now) {
			continue
		}
		promoted := entry.Clone()
		promoted.Timestamp = now
		promoted.LastAccessed = now
		if err := h.Storage.Set(key, promoted); err != nil {
			logger.Warn("cache promotion failed", logging.Pairs{
				"layer": h.Name, "key": key, "error": err.Error()})
			continue
		}
		metrics.ObserveCacheEvent(h.Name, "layer", "promotion", "read")
	}
}

// Set serializes the value once and fans an independent copy out to
// every registered layer; each layer applies its own default TTL and
// eviction. Writes are best-effort per layer; Set errors only when every
// layer fails. Registered triggers whose condition matches the key run
// after the fan-out, exactly one set is recorded in analytics.
func (m *Manager) Set(key string, value any, opts *cache.SetOptions) error {
	start := time.Now()
	layers := m.Layers()
	if len(layers) == 0 {
		return cache.ErrNoLayers
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache value encode: %w", err)
	}
	var tags []string
	var ttl time.Duration
	var md map[string]any
	if opts != nil {
		tags, ttl, md = opts.Tags, opts.TTL, opts.Metadata
	}

	nl, err := m.locker.Acquire(key)
	if err != nil {
		return err
	}
	var failed int
	var lastErr error
	for _, l := range layers {
		layerTTL := ttl
		if layerTTL <= 0 {
			layerTTL = l.TTL
		}
		entry := cache.NewEntry(data, layerTTL, tags)
		if md != nil {
			entry.Metadata = make(map[string]any, len(md))
			for k, v := range md {
				entry.Metadata[k] = v
			}
		}
		if err := l.Storage.Set(key, entry); err != nil {
			failed++
			lastErr = err
			m.engine.RecordError(key)
			metrics.ObserveCacheEvent(l.Name, "layer", "error", "store")
			logger.Warn("cache layer write failed", logging.Pairs{
				"layer": l.Name, "key": key, "error": err.Error()})
			continue
		}
		metrics.ObserveCacheOperation(l.Name, "layer", "set", "none", float64(len(data)))
	}
	nl.Release()

	m.engine.RecordSet(key, time.Since(start))
	m.engine.ObserveMemoryUsage(m.memoryUsage(layers))
	m.runTriggers(key)

	if failed == len(layers) {
		return fmt.Errorf("%w: set %s: %v", cache.ErrAllLayersFailed, key, lastErr)
	}
	return nil
}

// Delete removes the key from every layer, returning the count of layers
// in which it was present
func (m *Manager) Delete(key string) int {
	start := time.Now()
	layers := m.Layers()
	nl, err := m.locker.Acquire(key)
	if err != nil {
		return 0
	}
	count := m.removeFromLayers(key, layers)
	nl.Release()
	m.engine.RecordDelete(key, time.Since(start))
	m.engine.ObserveMemoryUsage(m.memoryUsage(layers))
	return count
}

// removeFromLayers deletes key from the provided layers without touching
// analytics; shared by Delete, triggers and the invalidation operations
func (m *Manager) removeFromLayers(key string, layers []*Layer) int {
	var count int
	for _, l := range layers {
		if l.Storage.Delete(key) {
			count++
		}
	}
	return count
}

// MemoryUsage returns the total estimated byte size held across layers
func (m *Manager) MemoryUsage() int64 {
	return m.memoryUsage(m.Layers())
}

func (m *Manager) memoryUsage(layers []*Layer) int64 {
	var total int64
	for _, l := range layers {
		total += l.Storage.MemoryUsage()
	}
	return total
}

// Clear empties every layer's storage. Registered layers, triggers and
// strategies remain; analytics counters are untouched.
func (m *Manager) Clear() {
	for _, l := range m.Layers() {
		l.Storage.Clear()
	}
	m.engine.ObserveMemoryUsage(0)
	logger.Debug("cache cleared", logging.Pairs{"layers": len(m.Layers())})
}

// Close stops the warming scheduler and closes every layer's storage
func (m *Manager) Close() error {
	var lastErr error
	if err := m.StopScheduler(); err != nil {
		lastErr = err
	}
	for _, l := range m.Layers() {
		if err := l.Storage.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Analytics returns the cumulative session counters
func (m *Manager) Analytics() analytics.Snapshot {
	return m.engine.Snapshot()
}

// PerformanceMetrics returns timing metrics from the rolling sample
func (m *Manager) PerformanceMetrics() analytics.PerformanceSnapshot {
	return m.engine.Performance()
}

// HealthMetrics returns the weighted health scoring of the cache
func (m *Manager) HealthMetrics() analytics.HealthSnapshot {
	return m.engine.Health()
}

// EfficiencyAnalysis returns the cost model view of the session
func (m *Manager) EfficiencyAnalysis() analytics.EfficiencySnapshot {
	return m.engine.Efficiency()
}

// OnAlert registers a callback invoked when a recorded operation
// breaches a configured threshold
func (m *Manager) OnAlert(cb analytics.AlertFunc) {
	m.engine.OnAlert(cb)
}

// ExportAnalytics serializes the full analytics state
func (m *Manager) ExportAnalytics() ([]byte, error) {
	return m.engine.Export()
}

// ImportAnalytics restores analytics state from an exported snapshot
func (m *Manager) ImportAnalytics(data []byte) error {
	return m.engine.Import(data)
}

// ClearAnalytics drops the analytics history buffer only; the cumulative
// session counters intentionally survive
func (m *Manager) ClearAnalytics() {
	m.engine.ClearHistory()
}

// AnalyticsHistory returns the recorded analytics events, oldest first
func (m *Manager) AnalyticsHistory() []analytics.Event {
	return m.engine.History()
}
