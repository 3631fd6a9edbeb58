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

package manager

import (
	"time"

	"github.com/trickstercache/tiercache/pkg/cache"
)

// Layer is one priority-ordered tier of the cache: a name, a storage
// backend and a default TTL. Layers are immutable once registered; the
// Manager checks and promotes into higher-priority layers first.
type Layer struct {
	// Name uniquely identifies the Layer within its Manager
	Name string
	// Priority orders the Layer among its peers; higher is checked first
	Priority int
	// Storage is the Layer's backend; each Layer owns its entries
	// exclusively
	Storage cache.Backend
	// TTL is the default time-to-live applied when a write provides none
	TTL time.Duration
}

func (l *Layer) validate() error {
	if l == nil || l.Name == "" || l.Storage == nil {
		return cache.ErrInvalidLayer
	}
	return nil
}
