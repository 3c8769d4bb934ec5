// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package govcrawler

import "testing"

func TestMetricsRecordPageCrawledIncrementsPagesAndBytes(t *testing.T) {
	m := NewMetrics()
	m.recordPageCrawled(1024)
	m.recordPageCrawled(512)

	snap := m.Snapshot()
	if snap.PagesCrawled != 2 {
		t.Fatalf("got pages=%d", snap.PagesCrawled)
	}
	if snap.BytesDownloaded != 1536 {
		t.Fatalf("got bytes=%d", snap.BytesDownloaded)
	}
}

func TestMetricsSuccessRate(t *testing.T) {
	m := NewMetrics()
	m.recordSuccess()
	m.recordSuccess()
	m.recordSuccess()
	m.recordFailure()

	snap := m.Snapshot()
	if snap.SuccessfulRequests != 3 || snap.FailedRequests != 1 {
		t.Fatalf("got succ=%d fail=%d", snap.SuccessfulRequests, snap.FailedRequests)
	}
	if snap.SuccessRate != 0.75 {
		t.Fatalf("got success rate %v", snap.SuccessRate)
	}
}

func TestMetricsSuccessRateZeroWhenNoRequests(t *testing.T) {
	m := NewMetrics()
	snap := m.Snapshot()
	if snap.SuccessRate != 0 {
		t.Fatalf("expected zero success rate with no requests, got %v", snap.SuccessRate)
	}
}

func TestMetricsCacheHitsCounted(t *testing.T) {
	m := NewMetrics()
	m.recordCacheHit()
	m.recordCacheHit()

	snap := m.Snapshot()
	if snap.CacheHits != 2 {
		t.Fatalf("got cache hits=%d", snap.CacheHits)
	}
}

func TestMetricsIndependentRegistriesDoNotCollide(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.recordSuccess()

	if a.Snapshot().SuccessfulRequests != 1 {
		t.Fatalf("expected a's counter to increment")
	}
	if b.Snapshot().SuccessfulRequests != 0 {
		t.Fatalf("expected b's counter to stay at zero, independent registries")
	}
}
