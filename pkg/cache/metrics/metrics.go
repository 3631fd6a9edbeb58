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

// Package metrics provides the observation helpers called as cache
// operations occur
package metrics

import (
	"github.com/trickstercache/tiercache/pkg/observability/metrics"
)

// ObserveCacheMiss records a cache miss event
func ObserveCacheMiss(cacheName, provider string) {
	ObserveCacheOperation(cacheName, provider, "get", "miss", 0)
}

// ObserveCacheDel records a cache deletion event
func ObserveCacheDel(cacheName, provider string, count float64) {
	ObserveCacheOperation(cacheName, provider, "del", "none", count)
}

// ObserveCacheOperation increments counters as cache operations occur
func ObserveCacheOperation(cacheName, provider, operation, status string, bytes float64) {
	metrics.CacheObjectOperations.WithLabelValues(cacheName, provider, operation, status).Inc()
	if bytes > 0 {
		metrics.CacheByteOperations.WithLabelValues(cacheName, provider, operation, status).Add(bytes)
	}
}

// ObserveCacheEvent increments counters as cache events occur
func ObserveCacheEvent(cacheName, provider, event, reason string) {
	metrics.CacheEvents.WithLabelValues(cacheName, provider, event, reason).Inc()
}

// ObserveCacheSizeChange adjusts gauges as the cache size changes due to object operations
func ObserveCacheSizeChange(cacheName, provider string, byteCount, objectCount int64) {
	metrics.CacheObjects.WithLabelValues(cacheName, provider).Set(float64(objectCount))
	metrics.CacheBytes.WithLabelValues(cacheName, provider).Set(float64(byteCount))
}
