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

import (
	"fmt"
	"sort"
)

// Unit costs for the efficiency model. A miss is modeled as 10x the cost
// of a hit, reflecting the backing-store round trip it implies.
const (
	HitCost  = 1.0
	MissCost = 10.0
)

// a key must have this many lookups before it can be called a bottleneck
const bottleneckMinLookups = 4

// EfficiencySnapshot is the cost view of the session's lookups, with
// textual diagnostics for low-hit-rate keys
type EfficiencySnapshot struct {
	HitCost          float64  `json:"hitCost"`
	MissCost         float64  `json:"missCost"`
	TotalCost        float64  `json:"totalCost"`
	BaselineCost     float64  `json:"baselineCost"`
	Savings          float64  `json:"savings"`
	CostPerOperation float64  `json:"costPerOperation"`
	Bottlenecks      []string `json:"bottlenecks,omitempty"`
	Optimizations    []string `json:"optimizations,omitempty"`
}

// Efficiency aggregates lookup costs against an all-miss baseline and
// derives bottleneck/optimization diagnostics
func (e *Engine) Efficiency() EfficiencySnapshot {
	snap := e.Snapshot()
	out := EfficiencySnapshot{HitCost: HitCost, MissCost: MissCost}

	lookups := snap.Hits + snap.Misses
	out.TotalCost = float64(snap.Hits)*HitCost + float64(snap.Misses)*MissCost
	out.BaselineCost = float64(lookups) * MissCost
	out.Savings = out.BaselineCost - out.TotalCost
	if lookups > 0 {
		out.CostPerOperation = out.TotalCost / float64(lookups)
	}

	type coldKey struct {
		key     string
		rate    float64
		lookups int64
	}
	var cold []coldKey
	e.mtx.Lock()
	for k, ks := range e.keyStats {
		n := ks.hits + ks.misses
		if n < bottleneckMinLookups {
			continue
		}
		rate := float64(ks.hits) / float64(n)
		if rate < hitRateFair {
			cold = append(cold, coldKey{key: k, rate: rate, lookups: n})
		}
	}
	e.mtx.Unlock()

	sort.Slice(cold, func(i, j int) bool {
		if cold[i].rate != cold[j].rate {
			return cold[i].rate < cold[j].rate
		}
		return cold[i].key < cold[j].key
	})
	for _, c := range cold {
		out.Bottlenecks = append(out.Bottlenecks,
			fmt.Sprintf("key %q hit rate %.2f over %d lookups", c.key, c.rate, c.lookups))
	}

	if lookups > 0 && snap.HitRate < hitRateGood {
		out.Optimizations = append(out.Optimizations,
			fmt.Sprintf("overall hit rate %.2f is below %.2f; increase TTLs or enlarge the top layer",
				snap.HitRate, hitRateGood))
	}
	if len(cold) > 0 {
		out.Optimizations = append(out.Optimizations,
			fmt.Sprintf("%d keys miss more than they hit; consider a warming strategy for them", len(cold)))
	}

	return out
}
