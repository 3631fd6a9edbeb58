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
	"slices"
	"time"
)

// Entry is a single cached object held by one Backend. Value is the
// serialized caller value; each layer holds its own copy so a mutation
// through one layer never affects another.
type Entry struct {
	// Value is the serialized object bytes
	Value []byte `json:"value"`
	// Timestamp is the time the Entry was written
	Timestamp time.Time `json:"timestamp"`
	// TTL is the Entry's time-to-live; <= 0 means the Entry never
	// expires and is removed only by eviction
	TTL time.Duration `json:"ttl"`
	// Hits is the number of times the Entry has been read
	Hits int64 `json:"hits"`
	// LastAccessed is the time of the most recent read; never earlier
	// than Timestamp
	LastAccessed time.Time `json:"lastAccessed"`
	// Tags are the invalidation tags attached at write time
	Tags []string `json:"tags,omitempty"`
	// Size is the estimated byte size of the serialized Value
	Size int64 `json:"size"`
	// Metadata carries optional caller-defined annotations
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewEntry returns an Entry for the provided serialized value, stamped at
// the current time
func NewEntry(value []byte, ttl time.Duration, tags []string) *Entry {
	now := time.Now()
	return &Entry{
		Value:        slices.Clone(value),
		Timestamp:    now,
		TTL:          ttl,
		LastAccessed: now,
		Tags:         slices.Clone(tags),
		Size:         int64(len(value)),
	}
}

// Live returns true if the Entry has not expired as of now
func (e *Entry) Live(now time.Time) bool {
	if e.TTL <= 0 {
		return true
	}
	return now.Before(e.Timestamp.Add(e.TTL))
}

// Touch updates the Entry's access bookkeeping used by the eviction
// heuristics (LRU via LastAccessed, LFU via Hits)
func (e *Entry) Touch(now time.Time) {
	e.Hits++
	e.LastAccessed = now
}

// HasTag returns true if the Entry carries the provided tag
func (e *Entry) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// Clone returns a deep copy of the Entry, so the copy can be handed to
// another layer without sharing any mutable state
func (e *Entry) Clone() *Entry {
	out := &Entry{
		Value:        slices.Clone(e.Value),
		Timestamp:    e.Timestamp,
		TTL:          e.TTL,
		Hits:         e.Hits,
		LastAccessed: e.LastAccessed,
		Tags:         slices.Clone(e.Tags),
		Size:         e.Size,
	}
	if e.Metadata != nil {
		out.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
