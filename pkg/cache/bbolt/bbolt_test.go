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

package bbolt

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/bbolt/options"
)

const cacheKey = "cacheKey"

func newTestClient(t *testing.T) *Client {
	opts := options.New()
	opts.Filename = filepath.Join(t.TempDir(), "tiercache.db")
	bc := New(t.Name(), opts)
	if err := bc.Connect(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { bc.Close() })
	return bc
}

func TestClientConnectBadPath(t *testing.T) {
	opts := options.New()
	opts.Filename = "/root/noexist/tiercache.db"
	bc := New(t.Name(), opts)
	if err := bc.Connect(); err == nil {
		t.Error("expected an error connecting to an unwritable path")
		bc.Close()
	}
}

func TestClientStoreRetrieve(t *testing.T) {
	bc := newTestClient(t)
	if err := bc.Store(cacheKey, []byte("data"), time.Minute); err != nil {
		t.Error(err)
	}
	data, err := bc.Retrieve(cacheKey)
	if err != nil {
		t.Error(err)
	}
	if string(data) != "data" {
		t.Errorf("expected data got %s", string(data))
	}

	_, err = bc.Retrieve("absent")
	if !errors.Is(err, cache.ErrKNF) {
		t.Errorf("expected ErrKNF got %v", err)
	}
}

func TestClientRemove(t *testing.T) {
	bc := newTestClient(t)
	bc.Store("a", []byte("data"), 0)
	bc.Store("b", []byte("data"), 0)

	if err := bc.Remove("a", "b"); err != nil {
		t.Error(err)
	}
	if _, err := bc.Retrieve("a"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected a removed")
	}
}

func TestClientClear(t *testing.T) {
	bc := newTestClient(t)
	bc.Store("a", []byte("data"), 0)

	if err := bc.Clear(); err != nil {
		t.Error(err)
	}
	if _, err := bc.Retrieve("a"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected the bucket emptied by clear")
	}
	// the bucket is recreated and usable
	if err := bc.Store("b", []byte("data"), 0); err != nil {
		t.Error(err)
	}
}

func TestClientDefaultOptions(t *testing.T) {
	bc := New(t.Name(), nil)
	if bc.Config.Filename != "tiercache.db" || bc.Config.Bucket != "tiercache" {
		t.Errorf("unexpected defaults %+v", bc.Config)
	}
}
