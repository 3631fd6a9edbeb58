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

package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/trickstercache/tiercache/pkg/cache/analytics"
	badger "github.com/trickstercache/tiercache/pkg/cache/badger/options"
	bbolt "github.com/trickstercache/tiercache/pkg/cache/bbolt/options"
	"github.com/trickstercache/tiercache/pkg/cache/evictionmethods"
	"github.com/trickstercache/tiercache/pkg/cache/providers"
	redis "github.com/trickstercache/tiercache/pkg/cache/redis/options"
	"gopkg.in/yaml.v2"
)

// Lookup is a map of layer Options keyed by layer name
type Lookup map[string]*Options

// Options defines one cache layer's behavior
type Options struct {
	// Name is the layer name, taken from the key in the Layers map
	Name string `yaml:"-"`
	// Provider is the storage backend: "memory", "redis", "bbolt" or "badger"
	Provider string `yaml:"provider,omitempty"`
	// Priority orders the layer within the tier stack, higher checked first
	Priority int `yaml:"priority,omitempty"`
	// TTL is the default entry lifetime applied when a write omits one;
	// 0 means entries never expire
	TTL time.Duration `yaml:"ttl,omitempty"`
	// MaxSizeObjects caps the layer's entry count; 0 means unlimited
	MaxSizeObjects int64 `yaml:"max_size_objects,omitempty"`
	// MaxSizeBytes caps the layer's total entry byte size; 0 means unlimited
	MaxSizeBytes int64 `yaml:"max_size_bytes,omitempty"`
	// EvictionPolicy selects the victim-selection rule: "lru", "lfu" or "memory"
	EvictionPolicy string `yaml:"eviction_policy,omitempty"`

	// Redis provides options for Redis-backed layers
	Redis *redis.Options `yaml:"redis,omitempty"`
	// BBolt provides options for BBolt-backed layers
	BBolt *bbolt.Options `yaml:"bbolt,omitempty"`
	// Badger provides options for BadgerDB-backed layers
	Badger *badger.Options `yaml:"badger,omitempty"`

	//  Synthetic Values

	// ProviderID is the internal constant for the configured Provider,
	// populated during validation
	ProviderID providers.Provider `yaml:"-"`
	// EvictionMethodID is the internal constant for the configured
	// EvictionPolicy, populated during validation
	EvictionMethodID evictionmethods.EvictionMethod `yaml:"-"`
}

const (
	// DefaultProvider is the storage backend used when none is configured
	DefaultProvider = providers.Memory
	// DefaultEvictionPolicy is the eviction policy used when none is configured
	DefaultEvictionPolicy = "lru"
)

var ErrInvalidName = errors.New("invalid layer name")
var ErrInvalidProvider = errors.New("invalid layer provider")
var ErrInvalidEvictionPolicy = errors.New("invalid eviction policy")

// New returns an Options with default configuration settings
func New() *Options {
	return &Options{
		Provider:       DefaultProvider,
		EvictionPolicy: DefaultEvictionPolicy,
		Redis:          redis.New(),
		BBolt:          bbolt.New(),
		Badger:         badger.New(),
	}
}

// Clone returns an exact copy of the Options
func (o *Options) Clone() *Options {
	out := New()
	out.Name = o.Name
	out.Provider = o.Provider
	out.Priority = o.Priority
	out.TTL = o.TTL
	out.MaxSizeObjects = o.MaxSizeObjects
	out.MaxSizeBytes = o.MaxSizeBytes
	out.EvictionPolicy = o.EvictionPolicy
	out.ProviderID = o.ProviderID
	out.EvictionMethodID = o.EvictionMethodID

	if o.Redis != nil {
		out.Redis = o.Redis.Clone()
	}
	if o.BBolt != nil {
		out.BBolt = &bbolt.Options{Filename: o.BBolt.Filename, Bucket: o.BBolt.Bucket}
	}
	if o.Badger != nil {
		out.Badger = &badger.Options{Directory: o.Badger.Directory,
			ValueDirectory: o.Badger.ValueDirectory}
	}
	return out
}

// Validate checks the Options and populates the synthetic values
func (o *Options) Validate() error {
	if o.Name == "" {
		return ErrInvalidName
	}
	if o.Provider == "" {
		o.Provider = DefaultProvider
	}
	id, ok := providers.Names[o.Provider]
	if !ok {
		return fmt.Errorf("%w: %s (layer %s)", ErrInvalidProvider, o.Provider, o.Name)
	}
	o.ProviderID = id
	if o.EvictionPolicy == "" {
		o.EvictionPolicy = DefaultEvictionPolicy
	}
	em, ok := evictionmethods.Names[o.EvictionPolicy]
	if !ok {
		return fmt.Errorf("%w: %s (layer %s)", ErrInvalidEvictionPolicy,
			o.EvictionPolicy, o.Name)
	}
	o.EvictionMethodID = em
	return nil
}

// Config is the full tiered-cache configuration: layers plus analytics
type Config struct {
	// Layers is the set of cache layers keyed by name
	Layers Lookup `yaml:"layers"`
	// Analytics configures the analytics engine
	Analytics *analytics.Config `yaml:"analytics,omitempty"`
}

// NewConfig returns a Config with an empty layer set
func NewConfig() *Config {
	return &Config{Layers: make(Lookup)}
}

// Load parses a YAML document into a validated Config
func Load(data []byte) (*Config, error) {
	c := NewConfig()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate names and validates each configured layer
func (c *Config) Validate() error {
	for name, o := range c.Layers {
		if o == nil {
			o = New()
			c.Layers[name] = o
		}
		o.Name = name
		if err := o.Validate(); err != nil {
			return err
		}
	}
	return nil
}
