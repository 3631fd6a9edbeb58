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

// Package bbolt is the bbolt implementation of the tiercache raw client
package bbolt

import (
	"fmt"
	"time"

	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/bbolt/options"
	"go.etcd.io/bbolt"
)

// Client implements the cache.Client interface
var _ cache.Client = &Client{}

// Client describes a BBolt-backed raw client
type Client struct {
	Name   string
	Config *options.Options
	dbh    *bbolt.DB
}

// New returns a new bbolt client for the provided options
func New(name string, opts *options.Options) *Client {
	if opts == nil {
		opts = options.New()
	}
	return &Client{Name: name, Config: opts}
}

// Connect opens the configured BBolt database and ensures the bucket exists
func (c *Client) Connect() error {
	var err error
	c.dbh, err = bbolt.Open(c.Config.Filename, 0o644, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		_, err2 := tx.CreateBucketIfNotExists([]byte(c.Config.Bucket))
		if err2 != nil {
			return fmt.Errorf("create bucket: %w", err2)
		}
		return nil
	})
}

// Store places data into the bucket using the provided key. Expiration is
// judged by the owning storage backend, so the ttl parameter is unused.
func (c *Client) Store(cacheKey string, data []byte, _ time.Duration) error {
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.Bucket))
		return b.Put([]byte(cacheKey), data)
	})
}

// Retrieve gets data from the bucket using the provided key
func (c *Client) Retrieve(cacheKey string) ([]byte, error) {
	var data []byte
	err := c.dbh.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.Bucket))
		v := b.Get([]byte(cacheKey))
		if v == nil {
			return cache.ErrKNF
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Remove deletes the provided keys from the bucket
func (c *Client) Remove(cacheKeys ...string) error {
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(c.Config.Bucket))
		for _, cacheKey := range cacheKeys {
			if err := b.Delete([]byte(cacheKey)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear deletes and recreates the bucket
func (c *Client) Clear() error {
	return c.dbh.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(c.Config.Bucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(c.Config.Bucket))
		return err
	})
}

func (c *Client) Close() error {
	if c.dbh == nil {
		return nil
	}
	return c.dbh.Close()
}
