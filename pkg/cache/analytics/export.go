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

package analytics

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExportedSnapshot is the JSON-serializable analytics dump
type ExportedSnapshot struct {
	Metrics     Snapshot            `json:"metrics"`
	Performance PerformanceSnapshot `json:"performance"`
	Health      HealthSnapshot      `json:"health"`
	Efficiency  EfficiencySnapshot  `json:"efficiency"`
	History     []Event             `json:"history"`
}

// Export serializes the full analytics state
func (e *Engine) Export() ([]byte, error) {
	snap := ExportedSnapshot{
		Metrics:     e.Snapshot(),
		Performance: e.Performance(),
		Health:      e.Health(),
		Efficiency:  e.Efficiency(),
		History:     e.History(),
	}
	b, err := json.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("analytics export: %w", err)
	}
	return b, nil
}

// Import restores counters and history from a previously exported
// snapshot, replacing the engine's current state
func (e *Engine) Import(data []byte) error {
	var snap ExportedSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("analytics import: %w", err)
	}
	e.hits.Store(snap.Metrics.Hits)
	e.misses.Store(snap.Metrics.Misses)
	e.sets.Store(snap.Metrics.Sets)
	e.deletes.Store(snap.Metrics.Deletes)
	e.errors.Store(snap.Metrics.Errors)
	e.memory.Store(snap.Metrics.MemoryUsage)

	e.mtx.Lock()
	e.histPos, e.histCount = 0, 0
	for _, ev := range snap.History {
		e.history[e.histPos] = ev
		e.histPos = (e.histPos + 1) % len(e.history)
		if e.histCount < len(e.history) {
			e.histCount++
		}
	}
	e.mtx.Unlock()
	return nil
}
