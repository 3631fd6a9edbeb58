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

import "errors"

// ErrKNF represents the error "key not found in cache"
var ErrKNF = errors.New("key not found in cache")

// ErrCapacityExceeded is returned when an entry cannot fit in a backend
// even after evicting every other entry
var ErrCapacityExceeded = errors.New("entry exceeds cache capacity")

// ErrInvalidLayer is returned when a layer definition is malformed
var ErrInvalidLayer = errors.New("invalid layer")

// ErrDuplicateLayer is returned when a layer is registered under a name
// already held by another layer
var ErrDuplicateLayer = errors.New("duplicate layer name")

// ErrNoLayers is returned by operations that require at least one
// registered layer
var ErrNoLayers = errors.New("no layers registered")

// ErrAllLayersFailed is returned when every registered layer failed to
// serve an operation
var ErrAllLayersFailed = errors.New("all cache layers failed")

// ErrInvalidTrigger is returned when an invalidation trigger definition
// is malformed
var ErrInvalidTrigger = errors.New("invalid invalidation trigger")

// ErrDuplicateTrigger is returned when a trigger is registered under a
// name already in use
var ErrDuplicateTrigger = errors.New("duplicate trigger name")

// ErrUnknownDependency is returned when no dependency-invalidation
// trigger is registered for the requested resource and kind
var ErrUnknownDependency = errors.New("unknown invalidation dependency")

// ErrInvalidStrategy is returned when a warming strategy definition is
// malformed
var ErrInvalidStrategy = errors.New("invalid warming strategy")

// ErrDuplicateStrategy is returned when a warming strategy is registered
// under a name already in use
var ErrDuplicateStrategy = errors.New("duplicate warming strategy name")

// ErrUnknownStrategy is returned when the named warming strategy is not
// registered
var ErrUnknownStrategy = errors.New("unknown warming strategy")
