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

package analytics

import "time"

// PerformanceSnapshot summarizes operation timing from the rolling
// latency sample
type PerformanceSnapshot struct {
	// OperationsPerSecond is the lifetime operation rate of the engine
	OperationsPerSecond float64 `json:"operationsPerSecond"`
	// AverageLatency is the mean duration of sampled operations
	AverageLatency time.Duration `json:"averageLatency"`
	// Throughput is the sustained operation rate implied by the sampled
	// latencies (operations per second of busy time)
	Throughput float64 `json:"throughput"`
	// SampleCount is the number of samples backing these figures
	SampleCount int `json:"sampleCount"`
}

// Performance returns timing metrics derived from the rolling sample;
// all rates are zero when no samples exist
func (e *Engine) Performance() PerformanceSnapshot {
	snap := e.Snapshot()
	out := PerformanceSnapshot{}

	elapsed := time.Since(e.start).Seconds()
	if elapsed > 0 {
		out.OperationsPerSecond = float64(snap.TotalOperations) / elapsed
	}

	e.mtx.Lock()
	n := e.sampleCount
	var total time.Duration
	for i := 0; i < n; i++ {
		total += e.samples[i]
	}
	e.mtx.Unlock()

	out.SampleCount = n
	if n > 0 {
		out.AverageLatency = total / time.Duration(n)
		if total > 0 {
			out.Throughput = float64(n) / total.Seconds()
		}
	}
	return out
}
