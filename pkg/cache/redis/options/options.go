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
	"slices"
	"time"
)

// Options is a collection of Redis client configurations
type Options struct {
	// ClientType defines the type of Redis client: "standard", "sentinel" or "cluster"
	ClientType string `yaml:"client_type,omitempty"`
	// Protocol represents the connection method: "tcp" or "unix"
	Protocol string `yaml:"protocol,omitempty"`
	// Endpoint represents the host:port of the Redis endpoint ("standard" client)
	Endpoint string `yaml:"endpoint,omitempty"`
	// Endpoints represents the host:port list for "sentinel" and "cluster" clients
	Endpoints []string `yaml:"endpoints,omitempty"`
	// SentinelMaster is the name of the sentinel master ("sentinel" client)
	SentinelMaster string `yaml:"sentinel_master,omitempty"`
	// Password provides the Redis password
	Password string `yaml:"password,omitempty"`
	// DB is the database to be selected after connecting
	DB int `yaml:"db,omitempty"`
	// MaxRetries is the maximum number of retries before giving up on a command
	MaxRetries int `yaml:"max_retries,omitempty"`
	// MinRetryBackoff is the minimum backoff between each retry
	MinRetryBackoff time.Duration `yaml:"min_retry_backoff,omitempty"`
	// MaxRetryBackoff is the maximum backoff between each retry
	MaxRetryBackoff time.Duration `yaml:"max_retry_backoff,omitempty"`
	// DialTimeout is the timeout for establishing new connections
	DialTimeout time.Duration `yaml:"dial_timeout,omitempty"`
	// ReadTimeout is the timeout for reading a single command reply
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty"`
	// WriteTimeout is the timeout for writing a single command
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty"`
	// PoolSize is the maximum number of socket connections
	PoolSize int `yaml:"pool_size,omitempty"`
}

// New returns a new Redis Options Reference with default values set
func New() *Options {
	return &Options{
		ClientType: "standard",
		Protocol:   "tcp",
		Endpoint:   "redis:6379",
	}
}

// Clone returns an exact copy of the Options
func (o *Options) Clone() *Options {
	out := *o
	out.Endpoints = slices.Clone(o.Endpoints)
	return &out
}
