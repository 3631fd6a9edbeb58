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

// Package registration constructs cache layers and managers from
// configuration
package registration

import (
	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/badger"
	"github.com/trickstercache/tiercache/pkg/cache/bbolt"
	"github.com/trickstercache/tiercache/pkg/cache/manager"
	"github.com/trickstercache/tiercache/pkg/cache/memory"
	"github.com/trickstercache/tiercache/pkg/cache/options"
	"github.com/trickstercache/tiercache/pkg/cache/providers"
	"github.com/trickstercache/tiercache/pkg/cache/redis"
	"github.com/trickstercache/tiercache/pkg/cache/storage"
)

// NewClient returns a raw byte-store Client for the configured provider
func NewClient(o *options.Options) cache.Client {
	switch o.ProviderID {
	case providers.RedisID:
		return redis.New(o.Name, o.Redis)
	case providers.BBoltID:
		return bbolt.New(o.Name, o.BBolt)
	case providers.BadgerDBID:
		return badger.New(o.Name, o.Badger)
	default:
		return memory.New(o.Name)
	}
}

// NewBackend wraps the configured provider's Client in an eviction-
// enforcing Store and connects it
func NewBackend(o *options.Options) (cache.Backend, error) {
	s := storage.New(o.Name, o.Provider, NewClient(o), storage.Options{
		MaxSizeObjects: o.MaxSizeObjects,
		MaxSizeBytes:   o.MaxSizeBytes,
		EvictionMethod: o.EvictionMethodID,
	})
	if err := s.Connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewLayer builds and connects one cache layer from its options
func NewLayer(o *options.Options) (*manager.Layer, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	b, err := NewBackend(o)
	if err != nil {
		return nil, err
	}
	return &manager.Layer{
		Name:     o.Name,
		Priority: o.Priority,
		Storage:  b,
		TTL:      o.TTL,
	}, nil
}

// LoadManagerFromConfig builds a Manager with every configured layer
// registered and connected. On any failure the already-connected layers
// are closed before the error is returned.
func LoadManagerFromConfig(cfg *options.Config) (*manager.Manager, error) {
	m := manager.New(&manager.Config{Analytics: cfg.Analytics})
	for _, o := range cfg.Layers {
		l, err := NewLayer(o)
		if err != nil {
			m.Close()
			return nil, err
		}
		if err := m.AddLayer(l); err != nil {
			l.Storage.Close()
			m.Close()
			return nil, err
		}
	}
	return m, nil
}
