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

package cache

import (
	"testing"
	"time"
)

func TestNewEntry(t *testing.T) {
	e := NewEntry([]byte("data"), time.Minute, []string{"t1"})
	if e.Size != 4 {
		t.Errorf("expected size 4 got %d", e.Size)
	}
	if e.Hits != 0 {
		t.Errorf("expected 0 hits got %d", e.Hits)
	}
	if e.LastAccessed.Before(e.Timestamp) {
		t.Error("expected lastAccessed >= timestamp")
	}
	if !e.HasTag("t1") || e.HasTag("t2") {
		t.Error("unexpected tag membership")
	}
}

func TestEntryLive(t *testing.T) {
	now := time.Now()
	e := &Entry{Timestamp: now, TTL: time.Minute}
	if !e.Live(now) {
		t.Error("expected a fresh entry to be live")
	}
	if e.Live(now.Add(2 * time.Minute)) {
		t.Error("expected an expired entry to be dead")
	}

	// zero TTL never expires
	e = &Entry{Timestamp: now}
	if !e.Live(now.Add(24 * time.Hour)) {
		t.Error("expected a zero-TTL entry to never expire")
	}
}

func TestEntryTouch(t *testing.T) {
	e := NewEntry([]byte("data"), 0, nil)
	then := time.Now().Add(time.Second)
	e.Touch(then)
	if e.Hits != 1 {
		t.Errorf("expected 1 hit got %d", e.Hits)
	}
	if !e.LastAccessed.Equal(then) {
		t.Error("expected lastAccessed updated")
	}
}

func TestEntryClone(t *testing.T) {
	e := NewEntry([]byte("data"), time.Minute, []string{"t1"})
	e.Metadata = map[string]any{"source": "origin"}
	c := e.Clone()

	c.Value[0] = 'X'
	c.Tags[0] = "t2"
	c.Metadata["source"] = "copy"

	if string(e.Value) != "data" {
		t.Error("expected clone value to be independent")
	}
	if e.Tags[0] != "t1" {
		t.Error("expected clone tags to be independent")
	}
	if e.Metadata["source"] != "origin" {
		t.Error("expected clone metadata to be independent")
	}
}
