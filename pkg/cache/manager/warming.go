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
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/observability/logging"
	"github.com/trickstercache/tiercache/pkg/observability/logging/logger"
)

// KV is one key/value pair produced by a warming data provider
type KV struct {
	Key   string
	Value any
}

// WarmingStrategy pairs a key provider with a data provider. When
// Schedule is set and the scheduler is running, the strategy fires
// automatically; Enabled gates scheduled runs only, manual warming via
// WarmStrategy always executes.
type WarmingStrategy struct {
	Name    string
	Keys    func(ctx context.Context) ([]string, error)
	Data    func(ctx context.Context, keys []string) ([]KV, error)
	Enabled bool
	// Schedule is a time.Duration string (e.g. "5m") for interval runs,
	// or a 5-field cron expression; empty means manual-only
	Schedule string
	// TTL and Tags are applied to every entry the strategy writes
	TTL  time.Duration
	Tags []string
}

func (s *WarmingStrategy) validate() error {
	if s == nil || s.Name == "" {
		return fmt.Errorf("%w: strategy requires a name", cache.ErrInvalidStrategy)
	}
	if s.Keys == nil || s.Data == nil {
		return fmt.Errorf("%w: strategy %s requires key and data providers",
			cache.ErrInvalidStrategy, s.Name)
	}
	return nil
}

// RegisterWarmingStrategy adds a warming strategy. If the scheduler is
// already running and the strategy carries a schedule, its job is
// registered immediately.
func (m *Manager) RegisterWarmingStrategy(s *WarmingStrategy) error {
	if err := s.validate(); err != nil {
		return err
	}
	m.mtx.Lock()
	if _, ok := m.strategies[s.Name]; ok {
		m.mtx.Unlock()
		return fmt.Errorf("%w: %s", cache.ErrDuplicateStrategy, s.Name)
	}
	m.strategies[s.Name] = s
	sched := m.sched
	m.mtx.Unlock()
	if sched != nil && s.Schedule != "" {
		if err := m.scheduleStrategy(sched, s); err != nil {
			return err
		}
	}
	return nil
}

// WarmStrategy executes the named strategy now, regardless of its
// Enabled flag, and returns the number of keys warmed. Warming is
// atomic with respect to provider failure: nothing is written unless
// both providers succeed.
func (m *Manager) WarmStrategy(ctx context.Context, name string) (int, error) {
	m.mtx.RLock()
	s, ok := m.strategies[name]
	m.mtx.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", cache.ErrUnknownStrategy, name)
	}
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("warming strategy %s: keys provider: %w", name, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	kvs, err := s.Data(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("warming strategy %s: data provider: %w", name, err)
	}
	opts := &cache.SetOptions{TTL: s.TTL, Tags: s.Tags}
	var warmed int
	for _, kv := range kvs {
		if err := m.Set(kv.Key, kv.Value, opts); err != nil {
			logger.Warn("cache warming write failed", logging.Pairs{
				"strategy": name, "key": kv.Key, "error": err.Error()})
			continue
		}
		warmed++
	}
	logger.Info("cache warming complete", logging.Pairs{
		"strategy": name, "keys": warmed})
	return warmed, nil
}

// StartScheduler starts the background warming scheduler and registers a
// job for every already-registered strategy that carries a schedule
func (m *Manager) StartScheduler() error {
	m.mtx.Lock()
	if m.sched != nil {
		m.mtx.Unlock()
		return nil
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		m.mtx.Unlock()
		return err
	}
	m.sched = sched
	pending := make([]*WarmingStrategy, 0, len(m.strategies))
	for _, s := range m.strategies {
		if s.Schedule != "" {
			pending = append(pending, s)
		}
	}
	m.mtx.Unlock()
	for _, s := range pending {
		if err := m.scheduleStrategy(sched, s); err != nil {
			return err
		}
	}
	sched.Start()
	return nil
}

// StopScheduler shuts the warming scheduler down; in-flight jobs are
// allowed to finish
func (m *Manager) StopScheduler() error {
	m.mtx.Lock()
	sched := m.sched
	m.sched = nil
	m.mtx.Unlock()
	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

func (m *Manager) scheduleStrategy(sched gocron.Scheduler, s *WarmingStrategy) error {
	var def gocron.JobDefinition
	if d, err := time.ParseDuration(s.Schedule); err == nil {
		def = gocron.DurationJob(d)
	} else {
		def = gocron.CronJob(s.Schedule, false)
	}
	_, err := sched.NewJob(def, gocron.NewTask(func() {
		m.mtx.RLock()
		enabled := s.Enabled
		m.mtx.RUnlock()
		if !enabled {
			return
		}
		if _, err := m.WarmStrategy(context.Background(), s.Name); err != nil {
			logger.Error("scheduled cache warming failed", logging.Pairs{
				"strategy": s.Name, "error": err.Error()})
		}
	}))
	if err != nil {
		return fmt.Errorf("%w: strategy %s schedule %q: %v",
			cache.ErrInvalidStrategy, s.Name, s.Schedule, err)
	}
	return nil
}
