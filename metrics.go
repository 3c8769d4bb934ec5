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

import (
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Snapshot is the point-in-time view returned by Crawler.Metrics.
type Snapshot struct {
	PagesCrawled        int64
	BytesDownloaded     int64
	SuccessfulRequests  int64
	FailedRequests      int64
	CacheHits           int64
	Elapsed             time.Duration
	CrawlRate           float64
	SuccessRate         float64
}

// Metrics holds the monotonic counters, one prometheus registry per
// Crawler instance so multiple crawlers in one process don't collide on
// the default registry.
type Metrics struct {
	registry *prometheus.Registry

	pagesCrawled       prometheus.Counter
	bytesDownloaded    prometheus.Counter
	successfulRequests prometheus.Counter
	failedRequests     prometheus.Counter
	cacheHits          prometheus.Counter

	startedAt time.Time
}

// NewMetrics registers a fresh set of counters.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		pagesCrawled: factory.NewCounter(prometheus.CounterOpts{
			Name: "govcrawler_pages_crawled_total",
			Help: "Number of pages successfully fetched.",
		}),
		bytesDownloaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "govcrawler_bytes_downloaded_total",
			Help: "Total decoded bytes downloaded across fetches.",
		}),
		successfulRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "govcrawler_successful_requests_total",
			Help: "Fetches that returned status 200 with an HTML content-type.",
		}),
		failedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "govcrawler_failed_requests_total",
			Help: "Fetches that failed with a transport or status error.",
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "govcrawler_cache_hits_total",
			Help: "Fetches avoided because a fresh cached page existed.",
		}),
		startedAt: time.Now(),
	}
}

func (m *Metrics) recordPageCrawled(bytes int) {
	m.pagesCrawled.Inc()
	m.bytesDownloaded.Add(float64(bytes))
}

func (m *Metrics) recordSuccess()  { m.successfulRequests.Inc() }
func (m *Metrics) recordFailure()  { m.failedRequests.Inc() }
func (m *Metrics) recordCacheHit() { m.cacheHits.Inc() }

// Registry exposes the per-instance prometheus registry for callers that
// want to serve /metrics themselves.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Snapshot reads the counters back (via the prometheus metric Write
// path) and computes the derived rates.
func (m *Metrics) Snapshot() Snapshot {
	pages := counterValue(m.pagesCrawled)
	bytes := counterValue(m.bytesDownloaded)
	succ := counterValue(m.successfulRequests)
	fail := counterValue(m.failedRequests)
	hits := counterValue(m.cacheHits)

	elapsed := time.Since(m.startedAt)
	snap := Snapshot{
		PagesCrawled:       int64(pages),
		BytesDownloaded:    int64(bytes),
		SuccessfulRequests: int64(succ),
		FailedRequests:     int64(fail),
		CacheHits:          int64(hits),
		Elapsed:            elapsed,
	}
	if elapsed > 0 {
		snap.CrawlRate = pages / elapsed.Seconds()
	}
	if succ+fail > 0 {
		snap.SuccessRate = succ / (succ + fail)
	}
	return snap
}

func counterValue(c prometheus.Counter) float64 {
	pb := &dto.Metric{}
	if err := c.Write(pb); err != nil {
		return 0
	}
	return pb.GetCounter().GetValue()
}
