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

package evictionmethods

import "strconv"

// EvictionMethod enumerates the methodologies for evicting cache entries
// when a storage backend exceeds its capacity limits
type EvictionMethod int

const (
	// EvictionMethodLRU evicts the entry with the oldest last-access
	// time; ties are broken by the oldest write time
	EvictionMethodLRU = EvictionMethod(iota)
	// EvictionMethodLFU evicts the entry with the fewest recorded hits;
	// ties are broken by the oldest last-access time
	EvictionMethodLFU
	// EvictionMethodMemoryBounded applies the backend's base method
	// (LRU unless configured otherwise) repeatedly until the backend's
	// total entry size satisfies its memory limit
	EvictionMethodMemoryBounded
)

// Names is a map of EvictionMethods keyed by string name
var Names = map[string]EvictionMethod{
	"lru":    EvictionMethodLRU,
	"lfu":    EvictionMethodLFU,
	"memory": EvictionMethodMemoryBounded,
}

// Values is a map of EvictionMethods valued by string name
var Values = make(map[EvictionMethod]string)

func init() {
	for k, v := range Names {
		Values[v] = k
	}
}

func (t EvictionMethod) String() string {
	if v, ok := Values[t]; ok {
		return v
	}
	return strconv.Itoa(int(t))
}
