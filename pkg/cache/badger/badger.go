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

// Package badger is the BadgerDB implementation of the tiercache raw client
package badger

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/badger/options"
)

// Client implements the cache.Client interface
var _ cache.Client = &Client{}

// Client describes a Badger-backed raw client
type Client struct {
	Name   string
	Config *options.Options
	dbh    *badger.DB
}

// New returns a new badger client for the provided options
func New(name string, opts *options.Options) *Client {
	if opts == nil {
		opts = options.New()
	}
	return &Client{Name: name, Config: opts}
}

// Connect opens the configured Badger key-value store
func (c *Client) Connect() error {
	opts := badger.DefaultOptions(c.Config.Directory)
	if c.Config.ValueDirectory != "" {
		opts.ValueDir = c.Config.ValueDirectory
	}
	opts.Logger = nil
	var err error
	c.dbh, err = badger.Open(opts)
	return err
}

// Store places data into the Badger store using the provided key.
// Expiration is judged by the owning storage backend, so the ttl
// parameter is unused.
func (c *Client) Store(cacheKey string, data []byte, _ time.Duration) error {
	return c.dbh.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cacheKey), data)
	})
}

// Retrieve gets data from the Badger store using the provided key
func (c *Client) Retrieve(cacheKey string) ([]byte, error) {
	var data []byte
	err := c.dbh.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, cache.ErrKNF
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Remove deletes the provided keys from the Badger store
func (c *Client) Remove(cacheKeys ...string) error {
	return c.dbh.Update(func(txn *badger.Txn) error {
		for _, cacheKey := range cacheKeys {
			if err := txn.Delete([]byte(cacheKey)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear drops all keys from the Badger store
func (c *Client) Clear() error {
	return c.dbh.DropAll()
}

func (c *Client) Close() error {
	if c.dbh == nil {
		return nil
	}
	return c.dbh.Close()
}
