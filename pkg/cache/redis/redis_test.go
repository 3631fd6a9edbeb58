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

package redis

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis"
	"github.com/trickstercache/tiercache/pkg/cache"
	"github.com/trickstercache/tiercache/pkg/cache/redis/options"
)

const cacheKey = "cacheKey"

func newTestClient(t *testing.T) *Client {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)

	opts := options.New()
	opts.Endpoint = s.Addr()
	rc := New(t.Name(), opts)
	if err := rc.Connect(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { rc.Close() })
	return rc
}

func TestClientStoreRetrieve(t *testing.T) {
	rc := newTestClient(t)
	if err := rc.Store(cacheKey, []byte("data"), time.Minute); err != nil {
		t.Error(err)
	}
	data, err := rc.Retrieve(cacheKey)
	if err != nil {
		t.Error(err)
	}
	if string(data) != "data" {
		t.Errorf("expected data got %s", string(data))
	}

	_, err = rc.Retrieve("absent")
	if !errors.Is(err, cache.ErrKNF) {
		t.Errorf("expected ErrKNF got %v", err)
	}
}

func TestClientRemove(t *testing.T) {
	rc := newTestClient(t)
	rc.Store("a", []byte("data"), 0)
	rc.Store("b", []byte("data"), 0)

	if err := rc.Remove("a", "b"); err != nil {
		t.Error(err)
	}
	if _, err := rc.Retrieve("a"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected a removed")
	}
}

func TestClientClear(t *testing.T) {
	rc := newTestClient(t)
	rc.Store("a", []byte("data"), 0)

	if err := rc.Clear(); err != nil {
		t.Error(err)
	}
	if _, err := rc.Retrieve("a"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected the database flushed by clear")
	}
}

func TestClientConnectFailure(t *testing.T) {
	opts := options.New()
	opts.Endpoint = "127.0.0.1:0"
	opts.MaxRetries = 1
	opts.DialTimeout = 100 * time.Millisecond
	rc := New(t.Name(), opts)
	if err := rc.Connect(); err == nil {
		t.Error("expected an error connecting to an unreachable endpoint")
		rc.Close()
	}
}

func TestClientInvalidConfigs(t *testing.T) {
	tests := []struct {
		name string
		opts *options.Options
	}{
		{"standard no endpoint", &options.Options{ClientType: "standard"}},
		{"sentinel no endpoints", &options.Options{ClientType: "sentinel"}},
		{"sentinel no master", &options.Options{ClientType: "sentinel",
			Endpoints: []string{"127.0.0.1:26379"}}},
		{"cluster no endpoints", &options.Options{ClientType: "cluster"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rc := New(t.Name(), tc.opts)
			if err := rc.Connect(); err == nil {
				t.Error("expected a config error")
				rc.Close()
			}
		})
	}
}

func TestClientCloseBeforeConnect(t *testing.T) {
	rc := New(t.Name(), nil)
	if err := rc.Close(); err != nil {
		t.Errorf("expected close before connect to be a no-op: %v", err)
	}
}
