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

// Package memory is the in-memory implementation of the tiercache raw
// client and uses a sync.Map to manage entry bytes
package memory

import (
	"sync"
	"time"

	"github.com/trickstercache/tiercache/pkg/cache"
)

// Client implements the cache.Client interface
var _ cache.Client = &Client{}

// Client defines an in-memory client; expiration is judged by the owning
// storage backend, so the ttl parameter is unused here
type Client struct {
	Name   string
	client sync.Map
}

// New returns a new memory client
func New(name string) *Client {
	return &Client{Name: name}
}

// Connect initializes the Client
func (c *Client) Connect() error {
	return nil
}

// Store places data into the map using the provided key
func (c *Client) Store(cacheKey string, data []byte, _ time.Duration) error {
	c.client.Store(cacheKey, data)
	return nil
}

// Retrieve looks up data in the map and returns it, or ErrKNF when absent
func (c *Client) Retrieve(cacheKey string) ([]byte, error) {
	record, ok := c.client.Load(cacheKey)
	if !ok {
		return nil, cache.ErrKNF
	}
	return record.([]byte), nil
}

// Remove deletes the provided keys from the map
func (c *Client) Remove(cacheKeys ...string) error {
	for _, k := range cacheKeys {
		c.client.Delete(k)
	}
	return nil
}

// Clear removes all keys from the map
func (c *Client) Clear() error {
	c.client.Clear()
	return nil
}

func (c *Client) Close() error {
	c.client.Clear()
	return nil
}
