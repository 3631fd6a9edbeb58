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

import "time"

// AlertType identifies which threshold a recorded operation breached
type AlertType string

const (
	AlertHitRate      = AlertType("hit_rate")
	AlertErrorRate    = AlertType("error_rate")
	AlertResponseTime = AlertType("response_time")
	AlertMemoryUsage  = AlertType("memory_usage")
)

// AlertFunc is a callback invoked when a recorded operation breaches a
// configured threshold. Callbacks run synchronously on the recording
// goroutine and must not block.
type AlertFunc func(alertType AlertType, value float64)

// Thresholds configures when alert callbacks fire; zero values disable
// the corresponding check
type Thresholds struct {
	// MinHitRate fires AlertHitRate when the session hit rate drops
	// below this floor
	MinHitRate float64 `yaml:"min_hit_rate,omitempty"`
	// MinHitRateLookups is the lookup count required before the hit
	// rate floor is evaluated, avoiding cold-start noise
	MinHitRateLookups int64 `yaml:"min_hit_rate_lookups,omitempty"`
	// MaxErrorRate fires AlertErrorRate when errors/totalOperations
	// exceeds this ceiling
	MaxErrorRate float64 `yaml:"max_error_rate,omitempty"`
	// MaxResponseTime fires AlertResponseTime when a recorded operation
	// exceeds this ceiling
	MaxResponseTime time.Duration `yaml:"max_response_time,omitempty"`
	// MaxMemoryUsage fires AlertMemoryUsage when observed cache memory
	// exceeds this ceiling in bytes
	MaxMemoryUsage int64 `yaml:"max_memory_usage,omitempty"`
}

// OnAlert registers a callback invoked on threshold breaches
func (e *Engine) OnAlert(cb AlertFunc) {
	if cb == nil {
		return
	}
	e.mtx.Lock()
	e.callbacks = append(e.callbacks, cb)
	e.mtx.Unlock()
}

func (e *Engine) fire(alertType AlertType, value float64) {
	e.mtx.Lock()
	cbs := make([]AlertFunc, len(e.callbacks))
	copy(cbs, e.callbacks)
	e.mtx.Unlock()
	for _, cb := range cbs {
		cb(alertType, value)
	}
}

func (e *Engine) checkThresholds(op Operation, d time.Duration) {
	t := e.cfg.Thresholds
	if t == nil {
		return
	}
	snap := e.Snapshot()
	if t.MinHitRate > 0 && (op == OpHit || op == OpMiss) {
		lookups := snap.Hits + snap.Misses
		if lookups >= max(t.MinHitRateLookups, 1) && snap.HitRate < t.MinHitRate {
			e.fire(AlertHitRate, snap.HitRate)
		}
	}
	if t.MaxErrorRate > 0 && snap.TotalOperations > 0 {
		errorRate := float64(snap.Errors) / float64(snap.TotalOperations)
		if errorRate > t.MaxErrorRate {
			e.fire(AlertErrorRate, errorRate)
		}
	}
	if t.MaxResponseTime > 0 && d > t.MaxResponseTime {
		e.fire(AlertResponseTime, d.Seconds())
	}
}

func (e *Engine) checkMemoryThreshold(bytes int64) {
	t := e.cfg.Thresholds
	if t == nil || t.MaxMemoryUsage <= 0 {
		return
	}
	if bytes > t.MaxMemoryUsage {
		e.fire(AlertMemoryUsage, float64(bytes))
	}
}
