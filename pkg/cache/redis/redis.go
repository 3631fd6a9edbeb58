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

// Package redis is the redis implementation of the tiercache raw client
// and supports Standalone, Sentinel and Cluster
package redis

import (
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/redis/options"
)

// Client implements the cache.Client interface
var _ cache.Client = &Client{}

// Client represents a redis raw client
type Client struct {
	Name   string
	Config *options.Options
	client redis.Cmdable
	closer func() error
}

// New returns a new redis client for the provided options
func New(name string, opts *options.Options) *Client {
	if opts == nil {
		opts = options.New()
	}
	return &Client{Name: name, Config: opts}
}

// Connect connects to the configured Redis endpoint
func (c *Client) Connect() error {
	switch c.Config.ClientType {
	case "sentinel":
		opts, err := c.sentinelOpts()
		if err != nil {
			return err
		}
		client := redis.NewFailoverClient(opts)
		c.closer = client.Close
		c.client = client
	case "cluster":
		opts, err := c.clusterOpts()
		if err != nil {
			return err
		}
		client := redis.NewClusterClient(opts)
		c.closer = client.Close
		c.client = client
	default:
		opts, err := c.clientOpts()
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		c.closer = client.Close
		c.client = client
	}
	return c.client.Ping().Err()
}

// Store places data into the Redis store using the provided key and TTL
func (c *Client) Store(cacheKey string, data []byte, ttl time.Duration) error {
	return c.client.Set(cacheKey, data, ttl).Err()
}

// Retrieve gets data from the Redis store using the provided key
func (c *Client) Retrieve(cacheKey string) ([]byte, error) {
	res, err := c.client.Get(cacheKey).Result()
	if err == redis.Nil {
		return nil, cache.ErrKNF
	}
	if err != nil {
		return nil, err
	}
	return []byte(res), nil
}

// Remove deletes the provided keys from the Redis store
func (c *Client) Remove(cacheKeys ...string) error {
	return c.client.Del(cacheKeys...).Err()
}

// Clear flushes the selected Redis database
func (c *Client) Clear() error {
	return c.client.FlushDB().Err()
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) clientOpts() (*redis.Options, error) {
	if c.Config.Endpoint == "" {
		return nil, fmt.Errorf("invalid endpoint: %s", c.Config.Endpoint)
	}
	o := &redis.Options{Addr: c.Config.Endpoint}
	c.applyCommon(&o.Password, &o.DB, &o.MaxRetries, &o.MinRetryBackoff,
		&o.MaxRetryBackoff, &o.DialTimeout, &o.ReadTimeout, &o.WriteTimeout, &o.PoolSize)
	if c.Config.Protocol != "" {
		o.Network = c.Config.Protocol
	}
	return o, nil
}

func (c *Client) sentinelOpts() (*redis.FailoverOptions, error) {
	if len(c.Config.Endpoints) == 0 {
		return nil, fmt.Errorf("invalid 'endpoints' config")
	}
	if c.Config.SentinelMaster == "" {
		return nil, fmt.Errorf("invalid 'sentinel_master' config")
	}
	o := &redis.FailoverOptions{
		SentinelAddrs: c.Config.Endpoints,
		MasterName:    c.Config.SentinelMaster,
	}
	c.applyCommon(&o.Password, &o.DB, &o.MaxRetries, &o.MinRetryBackoff,
		&o.MaxRetryBackoff, &o.DialTimeout, &o.ReadTimeout, &o.WriteTimeout, &o.PoolSize)
	return o, nil
}

func (c *Client) clusterOpts() (*redis.ClusterOptions, error) {
	if len(c.Config.Endpoints) == 0 {
		return nil, fmt.Errorf("invalid 'endpoints' config")
	}
	o := &redis.ClusterOptions{Addrs: c.Config.Endpoints}
	var db int
	c.applyCommon(&o.Password, &db, &o.MaxRetries, &o.MinRetryBackoff,
		&o.MaxRetryBackoff, &o.DialTimeout, &o.ReadTimeout, &o.WriteTimeout, &o.PoolSize)
	return o, nil
}

func (c *Client) applyCommon(password *string, db, maxRetries *int,
	minRetryBackoff, maxRetryBackoff, dialTimeout, readTimeout,
	writeTimeout *time.Duration, poolSize *int) {
	if c.Config.Password != "" {
		*password = c.Config.Password
	}
	if c.Config.DB != 0 {
		*db = c.Config.DB
	}
	if c.Config.MaxRetries != 0 {
		*maxRetries = c.Config.MaxRetries
	}
	if c.Config.MinRetryBackoff != 0 {
		*minRetryBackoff = c.Config.MinRetryBackoff
	}
	if c.Config.MaxRetryBackoff != 0 {
		*maxRetryBackoff = c.Config.MaxRetryBackoff
	}
	if c.Config.DialTimeout != 0 {
		*dialTimeout = c.Config.DialTimeout
	}
	if c.Config.ReadTimeout != 0 {
		*readTimeout = c.Config.ReadTimeout
	}
	if c.Config.WriteTimeout != 0 {
		*writeTimeout = c.Config.WriteTimeout
	}
	if c.Config.PoolSize != 0 {
		*poolSize = c.Config.PoolSize
	}
}
