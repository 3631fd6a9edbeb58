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

// Package analytics tracks cache effectiveness for a manager instance:
// cumulative operation counters, a bounded event history, sampled
// latency/performance figures, health scoring, a cost/efficiency model,
// and threshold-based alerting. Analytics computations never fail; every
// rate is zero-guarded.
package analytics

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultSampleRate is the fraction of operation durations sampled
	DefaultSampleRate = 1.0
	// DefaultMaxSamples bounds the rolling latency sample buffer
	DefaultMaxSamples = 1024
	// DefaultMaxHistory bounds the event history buffer
	DefaultMaxHistory = 8192
	// DefaultMaxKeyStats bounds the per-key lookup tracking map
	DefaultMaxKeyStats = 1024
)

// Config defines the analytics engine's sampling and alerting behavior
type Config struct {
	// SampleRate is the fraction ∈ [0,1] of operation durations recorded
	// into the rolling performance sample
	SampleRate float64 `yaml:"sample_rate,omitempty"`
	// MaxSamples is the capacity of the rolling latency sample buffer
	MaxSamples int `yaml:"max_samples,omitempty"`
	// MaxHistory is the capacity of the event history buffer
	MaxHistory int `yaml:"max_history,omitempty"`
	// MaxKeyStats is the capacity of the per-key lookup tracking map
	MaxKeyStats int `yaml:"max_key_stats,omitempty"`
	// Thresholds configures alerting; nil disables alert evaluation
	Thresholds *Thresholds `yaml:"thresholds,omitempty"`
}

// NewConfig returns a Config with default values set
func NewConfig() *Config {
	return &Config{
		SampleRate:  DefaultSampleRate,
		MaxSamples:  DefaultMaxSamples,
		MaxHistory:  DefaultMaxHistory,
		MaxKeyStats: DefaultMaxKeyStats,
	}
}

// Operation enumerates the recordable cache operations
type Operation string

const (
	OpHit    = Operation("hit")
	OpMiss   = Operation("miss")
	OpSet    = Operation("set")
	OpDelete = Operation("delete")
	OpError  = Operation("error")
)

// Event is one record in the analytics history buffer
type Event struct {
	Time      time.Time     `json:"time"`
	Operation Operation     `json:"operation"`
	Key       string        `json:"key,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

type keyStat struct {
	hits   int64
	misses int64
}

// Engine is the analytics state for one manager instance. Counters are
// cumulative for the life of the Engine; ClearHistory drops only the
// historical event buffer, never the session counters.
type Engine struct {
	cfg   Config
	start time.Time

	hits    atomic.Int64
	misses  atomic.Int64
	sets    atomic.Int64
	deletes atomic.Int64
	errors  atomic.Int64
	memory  atomic.Int64

	mtx         sync.Mutex
	rnd         *rand.Rand
	samples     []time.Duration
	samplePos   int
	sampleCount int
	history     []Event
	histPos     int
	histCount   int
	keyStats    map[string]*keyStat
	callbacks   []AlertFunc
}

// New returns an analytics Engine for the provided Config
func New(cfg *Config) *Engine {
	c := NewConfig()
	if cfg != nil {
		if cfg.SampleRate > 0 {
			c.SampleRate = min(cfg.SampleRate, 1)
		} else if cfg.SampleRate < 0 {
			c.SampleRate = 0
		}
		if cfg.MaxSamples > 0 {
			c.MaxSamples = cfg.MaxSamples
		}
		if cfg.MaxHistory > 0 {
			c.MaxHistory = cfg.MaxHistory
		}
		if cfg.MaxKeyStats > 0 {
			c.MaxKeyStats = cfg.MaxKeyStats
		}
		c.Thresholds = cfg.Thresholds
	}
	return &Engine{
		cfg:      *c,
		start:    time.Now(),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		samples:  make([]time.Duration, c.MaxSamples),
		history:  make([]Event, c.MaxHistory),
		keyStats: make(map[string]*keyStat),
	}
}

// RecordHit records a successful lookup of key taking d
func (e *Engine) RecordHit(key string, d time.Duration) {
	e.hits.Add(1)
	e.record(OpHit, key, d)
}

// RecordMiss records a failed lookup of key taking d
func (e *Engine) RecordMiss(key string, d time.Duration) {
	e.misses.Add(1)
	e.record(OpMiss, key, d)
}

// RecordSet records one write taking d, regardless of layer count
func (e *Engine) RecordSet(key string, d time.Duration) {
	e.sets.Add(1)
	e.record(OpSet, key, d)
}

// RecordDelete records one delete taking d
func (e *Engine) RecordDelete(key string, d time.Duration) {
	e.deletes.Add(1)
	e.record(OpDelete, key, d)
}

// RecordError records a layer failure; errors do not count toward
// TotalOperations
func (e *Engine) RecordError(key string) {
	e.errors.Add(1)
	e.record(OpError, key, 0)
}

// ObserveMemoryUsage updates the engine's view of total cache memory,
// evaluating the memory alert threshold
func (e *Engine) ObserveMemoryUsage(bytes int64) {
	e.memory.Store(bytes)
	e.checkMemoryThreshold(bytes)
}

func (e *Engine) record(op Operation, key string, d time.Duration) {
	e.mtx.Lock()
	if d > 0 && (e.cfg.SampleRate >= 1 || e.rnd.Float64() < e.cfg.SampleRate) {
		e.samples[e.samplePos] = d
		e.samplePos = (e.samplePos + 1) % len(e.samples)
		if e.sampleCount < len(e.samples) {
			e.sampleCount++
		}
	}
	e.history[e.histPos] = Event{Time: time.Now(), Operation: op, Key: key, Duration: d}
	e.histPos = (e.histPos + 1) % len(e.history)
	if e.histCount < len(e.history) {
		e.histCount++
	}
	if op == OpHit || op == OpMiss {
		ks, ok := e.keyStats[key]
		if !ok && len(e.keyStats) < e.cfg.MaxKeyStats {
			ks = &keyStat{}
			e.keyStats[key] = ks
		}
		if ks != nil {
			if op == OpHit {
				ks.hits++
			} else {
				ks.misses++
			}
		}
	}
	e.mtx.Unlock()
	e.checkThresholds(op, d)
}

// Snapshot is a point-in-time view of the cumulative session counters
type Snapshot struct {
	Hits            int64   `json:"hits"`
	Misses          int64   `json:"misses"`
	Sets            int64   `json:"sets"`
	Deletes         int64   `json:"deletes"`
	Errors          int64   `json:"errors"`
	TotalOperations int64   `json:"totalOperations"`
	HitRate         float64 `json:"hitRate"`
	MemoryUsage     int64   `json:"memoryUsage"`
}

// Snapshot returns the current counter values and derived hit rate
func (e *Engine) Snapshot() Snapshot {
	h, m := e.hits.Load(), e.misses.Load()
	s, d := e.sets.Load(), e.deletes.Load()
	snap := Snapshot{
		Hits:            h,
		Misses:          m,
		Sets:            s,
		Deletes:         d,
		Errors:          e.errors.Load(),
		TotalOperations: h + m + s + d,
		MemoryUsage:     e.memory.Load(),
	}
	if h+m > 0 {
		snap.HitRate = float64(h) / float64(h+m)
	}
	return snap
}

// History returns the recorded events, oldest first
func (e *Engine) History() []Event {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.historyLocked()
}

func (e *Engine) historyLocked() []Event {
	out := make([]Event, 0, e.histCount)
	start := e.histPos - e.histCount
	if start < 0 {
		start += len(e.history)
	}
	for i := 0; i < e.histCount; i++ {
		out = append(out, e.history[(start+i)%len(e.history)])
	}
	return out
}

// ClearHistory drops the historical event buffer and latency samples.
// The cumulative session counters survive; they reset only with the
// Engine itself.
func (e *Engine) ClearHistory() {
	e.mtx.Lock()
	e.histPos, e.histCount = 0, 0
	e.samplePos, e.sampleCount = 0, 0
	e.keyStats = make(map[string]*keyStat)
	e.mtx.Unlock()
}
