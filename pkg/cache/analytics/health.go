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

// Indicator statuses
const (
	StatusGood = "good"
	StatusFair = "fair"
	StatusPoor = "poor"
)

// Overall health labels
const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// hit-rate grading boundaries
const (
	hitRateGood = 0.8
	hitRateFair = 0.5
)

// error-rate grading boundaries
const (
	errorRateGood = 0.01
	errorRateFair = 0.05
)

var indicatorPoints = map[string]float64{
	StatusGood: 100,
	StatusFair: 60,
	StatusPoor: 20,
}

// Indicator is one weighted contributor to the health score
type Indicator struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Status string  `json:"status"`
	Weight float64 `json:"weight"`
}

// HealthSnapshot is a 0-100 scoring of the cache's current condition,
// recomputed fresh on each query with no hysteresis
type HealthSnapshot struct {
	Score      float64     `json:"score"`
	Overall    string      `json:"overall"`
	Indicators []Indicator `json:"indicators"`
}

// Health grades the hit rate, error rate, latency and memory indicators
// and folds them into a weighted overall score. With no recorded
// operations every indicator reports good; nothing has gone wrong yet.
func (e *Engine) Health() HealthSnapshot {
	snap := e.Snapshot()
	perf := e.Performance()

	lookups := snap.Hits + snap.Misses
	hitInd := Indicator{Name: "hit_rate", Value: snap.HitRate, Weight: 0.4, Status: StatusGood}
	if lookups > 0 {
		switch {
		case snap.HitRate >= hitRateGood:
			hitInd.Status = StatusGood
		case snap.HitRate >= hitRateFair:
			hitInd.Status = StatusFair
		default:
			hitInd.Status = StatusPoor
		}
	}

	var errorRate float64
	if snap.TotalOperations > 0 {
		errorRate = float64(snap.Errors) / float64(snap.TotalOperations)
	}
	errInd := Indicator{Name: "error_rate", Value: errorRate, Weight: 0.2, Status: StatusGood}
	switch {
	case errorRate <= errorRateGood:
		errInd.Status = StatusGood
	case errorRate <= errorRateFair:
		errInd.Status = StatusFair
	default:
		errInd.Status = StatusPoor
	}

	latInd := Indicator{Name: "response_time",
		Value: perf.AverageLatency.Seconds(), Weight: 0.2, Status: StatusGood}
	if t := e.cfg.Thresholds; t != nil && t.MaxResponseTime > 0 && perf.SampleCount > 0 {
		switch {
		case perf.AverageLatency <= t.MaxResponseTime/2:
			latInd.Status = StatusGood
		case perf.AverageLatency <= t.MaxResponseTime:
			latInd.Status = StatusFair
		default:
			latInd.Status = StatusPoor
		}
	}

	memInd := Indicator{Name: "memory_usage",
		Value: float64(snap.MemoryUsage), Weight: 0.2, Status: StatusGood}
	if t := e.cfg.Thresholds; t != nil && t.MaxMemoryUsage > 0 {
		used := float64(snap.MemoryUsage) / float64(t.MaxMemoryUsage)
		switch {
		case used <= 0.5:
			memInd.Status = StatusGood
		case used <= 1:
			memInd.Status = StatusFair
		default:
			memInd.Status = StatusPoor
		}
	}

	indicators := []Indicator{hitInd, errInd, latInd, memInd}
	var score, weight float64
	for _, ind := range indicators {
		score += indicatorPoints[ind.Status] * ind.Weight
		weight += ind.Weight
	}
	if weight > 0 {
		score /= weight
	}

	overall := HealthUnhealthy
	switch {
	case score > 80:
		overall = HealthHealthy
	case score > 50:
		overall = HealthDegraded
	}

	return HealthSnapshot{Score: score, Overall: overall, Indicators: indicators}
}
