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

package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/trickstercache/tiercache/pkg/cache"
)

const cacheKey = "cacheKey"

func TestClientStoreRetrieve(t *testing.T) {
	mc := New(t.Name())
	if err := mc.Connect(); err != nil {
		t.Fatal(err)
	}

	if err := mc.Store(cacheKey, []byte("data"), time.Minute); err != nil {
		t.Error(err)
	}
	data, err := mc.Retrieve(cacheKey)
	if err != nil {
		t.Error(err)
	}
	if string(data) != "data" {
		t.Errorf("expected data got %s", string(data))
	}

	_, err = mc.Retrieve("absent")
	if !errors.Is(err, cache.ErrKNF) {
		t.Errorf("expected ErrKNF got %v", err)
	}
}

func TestClientRemove(t *testing.T) {
	mc := New(t.Name())
	mc.Connect()
	mc.Store("a", []byte("data"), 0)
	mc.Store("b", []byte("data"), 0)

	if err := mc.Remove("a", "b"); err != nil {
		t.Error(err)
	}
	if _, err := mc.Retrieve("a"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected a removed")
	}
}

func TestClientClear(t *testing.T) {
	mc := New(t.Name())
	mc.Connect()
	mc.Store("a", []byte("data"), 0)

	if err := mc.Clear(); err != nil {
		t.Error(err)
	}
	if _, err := mc.Retrieve("a"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected the map emptied by clear")
	}
}

func TestClientClose(t *testing.T) {
	mc := New(t.Name())
	mc.Connect()
	mc.Store("a", []byte("data"), 0)
	if err := mc.Close(); err != nil {
		t.Error(err)
	}
	if _, err := mc.Retrieve("a"); !errors.Is(err, cache.ErrKNF) {
		t.Error("expected the map emptied by close")
	}
}
