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

package manager

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/metrics"
	"github.com/trickstercache/tiercache/pkg/observability/logging"
	"github.com/trickstercache/tiercache/pkg/observability/logging/logger"
	"github.com/trickstercache/tiercache/pkg/util/sets"
)

// TriggerAction indicates what a matched trigger does
type TriggerAction int

const (
	// ActionDelete removes the matched key from all layers
	ActionDelete TriggerAction = iota
	// ActionCustom invokes the trigger's Custom function with the key
	ActionCustom
)

// Trigger associates a key condition with an invalidation action that
// runs after every successful write
type Trigger struct {
	Name      string
	Priority  int
	Condition func(key string) bool
	Action    TriggerAction
	Custom    func(key string)
	// Resource and Kind annotate what the trigger protects, for logging
	Resource string
	Kind     string
}

func (t *Trigger) validate() error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("%w: trigger requires a name", cache.ErrInvalidTrigger)
	}
	if t.Condition == nil {
		return fmt.Errorf("%w: trigger %s requires a condition", cache.ErrInvalidTrigger, t.Name)
	}
	if t.Action == ActionCustom && t.Custom == nil {
		return fmt.Errorf("%w: trigger %s has no custom function", cache.ErrInvalidTrigger, t.Name)
	}
	return nil
}

// RegisterTrigger adds an invalidation trigger, keeping the trigger list
// ordered by priority descending. Duplicate trigger names are rejected.
func (m *Manager) RegisterTrigger(t *Trigger) error {
	if err := t.validate(); err != nil {
		return err
	}
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, r := range m.triggers {
		if r.Name == t.Name {
			return fmt.Errorf("%w: %s", cache.ErrDuplicateTrigger, t.Name)
		}
	}
	m.triggers = append(m.triggers, t)
	sort.SliceStable(m.triggers, func(i, j int) bool {
		return m.triggers[i].Priority > m.triggers[j].Priority
	})
	return nil
}

// Triggers returns the registered triggers in priority order
func (m *Manager) Triggers() []*Trigger {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	out := make([]*Trigger, len(m.triggers))
	copy(out, m.triggers)
	return out
}

// runTriggers is called after a write completes and its key lock is
// released; delete actions re-acquire the lock for the keys they remove
func (m *Manager) runTriggers(key string) {
	for _, t := range m.Triggers() {
		if !t.Condition(key) {
			continue
		}
		switch t.Action {
		case ActionDelete:
			m.Delete(key)
		case ActionCustom:
			t.Custom(key)
		}
		logger.Debug("invalidation trigger fired", logging.Pairs{
			"trigger": t.Name, "key": key, "resource": t.Resource, "kind": t.Kind})
	}
}

// InvalidateByTag removes every entry carrying the tag from all layers
// and returns the number of distinct keys removed
func (m *Manager) InvalidateByTag(tag string) (int, error) {
	return m.invalidate("tag", tag, func(key string, entry *cache.Entry) bool {
		return entry.HasTag(tag)
	})
}

// InvalidateByPattern removes every entry whose key begins with the
// prefix and returns the number of distinct keys removed
func (m *Manager) InvalidateByPattern(prefix string) (int, error) {
	return m.invalidate("pattern", prefix, func(key string, _ *cache.Entry) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// invalidate scans every layer with non-mutating reads, collects the
// distinct keys the match function selects, then deletes each under its
// key lock
func (m *Manager) invalidate(method, arg string,
	match func(string, *cache.Entry) bool) (int, error) {
	start := time.Now()
	layers := m.Layers()
	matched := sets.NewStringSet()
	for _, l := range layers {
		for _, key := range l.Storage.Keys() {
			if matched.Contains(key) {
				continue
			}
			entry, err := l.Storage.Peek(key)
			if err != nil {
				continue
			}
			if match(key, entry) {
				matched.Add(key)
			}
		}
	}
	for _, key := range sets.Sorted(matched) {
		nl, err := m.locker.Acquire(key)
		if err != nil {
			continue
		}
		m.removeFromLayers(key, layers)
		nl.Release()
		m.engine.RecordDelete(key, 0)
		for _, l := range layers {
			metrics.ObserveCacheEvent(l.Name, "layer", "invalidation", method)
		}
	}
	if matched.Len() > 0 {
		m.engine.ObserveMemoryUsage(m.memoryUsage(layers))
	}
	logger.Debug("cache invalidation complete", logging.Pairs{
		"method": method, "argument": arg, "keys": matched.Len(),
		"duration": time.Since(start).String()})
	return matched.Len(), nil
}

// InvalidateByDependency resolves the registered triggers bound to the
// resource and kind and deletes every key their conditions match,
// returning the number of distinct keys removed. A resource/kind pair
// with no registered trigger is an error.
func (m *Manager) InvalidateByDependency(resource, kind string) (int, error) {
	var bound []*Trigger
	for _, t := range m.Triggers() {
		if t.Resource == resource && t.Kind == kind {
			bound = append(bound, t)
		}
	}
	if len(bound) == 0 {
		return 0, fmt.Errorf("%w: %s/%s", cache.ErrUnknownDependency, resource, kind)
	}
	return m.invalidate("dependency", resource+"/"+kind,
		func(key string, _ *cache.Entry) bool {
			for _, t := range bound {
				if t.Condition(key) {
					return true
				}
			}
			return false
		})
}
