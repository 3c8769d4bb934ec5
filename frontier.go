// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// This file includes modifications to code originally developed by Adam Tauber,
// licensed under the Apache License, Version 2.0.
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
	"context"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/agentberlin/govcrawler/internal/cache"
)

// Frontier is the bounded-concurrency scheduler. Its admission policy
// generalizes the teacher's WorkerPool: WorkerPool.Submit blocks the
// caller when the queue is full, but the spec wants the opposite —
// dropped work, not backpressure — so admission here is a non-blocking
// semaphore TryAcquire rather than a blocking channel send.
type Frontier struct {
	sem *semaphore.Weighted

	mu          sync.Mutex
	inFlight    map[string]struct{}
	visitedFast map[string]struct{}
	rescanRing  []rescanEntry // bounded ring of fetched pages eligible for opportunistic rescan

	maxDepth int
	running  atomic.Bool

	cache    cacheClaimer
	governor *Governor
	fetcher  *Fetcher
	pipeline *Pipeline
	metrics  *Metrics
	logger   *log.Logger

	wg sync.WaitGroup
}

// cacheClaimer is the subset of internal/cache.Store the Frontier needs,
// expressed as an interface so tests can fake it without a real store.
type cacheClaimer interface {
	ClaimVisited(url string) (bool, error)
	LoadVisited() (map[string]struct{}, error)
	GetFreshPage(url string) (string, bool, error)
	PutPage(url, html string) error
	GetImage(digest string) ([]byte, bool, error)
	PutImage(digest string, jpegBytes []byte) error
}

// NewFrontier wires the scheduler to its collaborators.
func NewFrontier(maxConcurrent, maxDepth int, store cacheClaimer, governor *Governor, fetcher *Fetcher, pipeline *Pipeline, metrics *Metrics, logger *log.Logger) *Frontier {
	if logger == nil {
		logger = log.Default()
	}
	return &Frontier{
		sem:         semaphore.NewWeighted(int64(maxConcurrent)),
		inFlight:    make(map[string]struct{}),
		visitedFast: make(map[string]struct{}),
		maxDepth:    maxDepth,
		cache:       store,
		governor:    governor,
		fetcher:     fetcher,
		pipeline:    pipeline,
		metrics:     metrics,
		logger:      logger,
	}
}

// Run schedules every seed at depth 0, then drives the cooperative loop
// until cancelled or drained: poll for completions every second,
// opportunistically rescan the cache's already-fetched pages for newly
// reachable links, and exit once nothing is in flight or running has
// been flipped false.
func (f *Frontier) Run(ctx context.Context, seeds []string) {
	f.running.Store(true)

	visited, err := f.cache.LoadVisited()
	if err != nil {
		f.logger.Printf("govcrawler: load_visited failed, starting cold: %v", err)
		visited = make(map[string]struct{})
	}
	f.mu.Lock()
	for u := range visited {
		f.visitedFast[u] = struct{}{}
	}
	f.mu.Unlock()

	for _, seed := range seeds {
		f.schedule(ctx, seed, 0)
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		if !f.running.Load() || f.inFlightCount() == 0 {
			break
		}
		select {
		case <-ctx.Done():
		case <-ticker.C:
			f.rescanOne(ctx)
		}
	}

	f.running.Store(false)
	drained := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		f.logger.Printf("govcrawler: 5s drain timeout exceeded, abandoning remaining tasks")
	}
}

// Stop flips is_running; Run's loop and every schedule() decision
// consult it on their next check.
func (f *Frontier) Stop() { f.running.Store(false) }

func (f *Frontier) inFlightCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inFlight)
}

const rescanRingCap = 128

// rescanEntry is a fetched page kept around for opportunistic re-expansion.
type rescanEntry struct {
	url   string
	depth int
}

// rememberForRescan records a successfully-fetched page in the bounded
// rescan ring, evicting the oldest entry once full. Only the
// rescanRingCap most recently expanded pages are rescanned; a page
// evicted from the ring is not looked at again in this run.
func (f *Frontier) rememberForRescan(url string, depth int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rescanRing = append(f.rescanRing, rescanEntry{url: url, depth: depth})
	if len(f.rescanRing) > rescanRingCap {
		f.rescanRing = f.rescanRing[1:]
	}
}

// rescanOne re-examines one page already in the ring for links to
// URLs that are unvisited now but weren't when the page was first
// expanded, and schedules them, bounded by the Frontier's own capacity.
func (f *Frontier) rescanOne(ctx context.Context) {
	f.mu.Lock()
	if len(f.rescanRing) == 0 {
		f.mu.Unlock()
		return
	}
	candidate := f.rescanRing[0]
	f.rescanRing = append(f.rescanRing[1:], candidate)
	f.mu.Unlock()

	html, hit, err := f.cache.GetFreshPage(candidate.url)
	if err != nil || !hit {
		return
	}
	doc := ParseHTML([]byte(html))
	for _, link := range ExtractLinks(doc, candidate.url) {
		f.schedule(ctx, link, candidate.depth+1)
	}
}

// schedule implements 4.F's schedule(url, depth): drop silently unless
// running, within depth, unclaimed on the fast path, and under capacity.
func (f *Frontier) schedule(ctx context.Context, url string, depth int) {
	if !f.running.Load() || depth > f.maxDepth {
		return
	}

	f.mu.Lock()
	if _, seen := f.visitedFast[url]; seen {
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()

	if !f.sem.TryAcquire(1) {
		return
	}

	f.mu.Lock()
	f.inFlight[url] = struct{}{}
	f.mu.Unlock()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.sem.Release(1)
		defer func() {
			f.mu.Lock()
			delete(f.inFlight, url)
			f.mu.Unlock()
		}()
		f.runTask(ctx, url, depth)
	}()
}

// runTask is the Task body for (url, depth): acquire politeness, claim,
// try cache, fetch on miss, parse, emit, and expand (4.F steps 1-7).
func (f *Frontier) runTask(ctx context.Context, url string, depth int) {
	origin := originOf(url)

	hold, err := f.governor.Acquire(ctx, origin)
	if err != nil {
		return // cancellation: swallowed, per the error-handling design
	}
	defer hold.Release()

	claimed, err := f.cache.ClaimVisited(url)
	if err != nil {
		f.logger.Printf("govcrawler: claim_visited error for %s: %v", url, err)
		return
	}
	if !claimed {
		return
	}
	f.mu.Lock()
	f.visitedFast[url] = struct{}{}
	f.mu.Unlock()

	if html, hit, err := f.cache.GetFreshPage(url); err == nil && hit {
		f.metrics.recordCacheHit()
		f.expandFromHTML(ctx, url, html, depth, false)
		f.rememberForRescan(url, depth)
		return
	} else if err != nil {
		f.logger.Printf("govcrawler: cache read error for %s, treating as cold: %v", url, err)
	}

	result, err := f.fetcher.Fetch(ctx, url)
	if err != nil {
		fe, _ := err.(*FetchError)
		if fe != nil && (fe.Kind == ErrTransport || fe.Kind == ErrStatus) {
			f.governor.Record(origin, OutcomeError)
			f.metrics.recordFailure()
		}
		return
	}

	f.governor.Record(origin, OutcomeSuccess)
	f.metrics.recordSuccess()
	f.metrics.recordPageCrawled(result.ByteCount)

	if err := f.cache.PutPage(url, result.HTML); err != nil {
		f.logger.Printf("govcrawler: cache write error for %s, will refetch next run: %v", url, err)
	}

	f.expandFromHTML(ctx, url, result.HTML, depth, true)
	f.rememberForRescan(url, depth)
}

// expandFromHTML parses html, emits a text record when eligible, fetches
// and caches image refs only on a fresh fetch (not on a cache hit,
// matching the preserved reference behavior in §9.1), and schedules
// every extracted link at depth+1.
func (f *Frontier) expandFromHTML(ctx context.Context, url, html string, depth int, freshFetch bool) {
	doc := ParseHTML([]byte(html))

	text := ExtractText(doc)
	if wordCount(text) > 50 {
		f.pipeline.TrySendText(TextRecord{URL: url, Text: text, Depth: depth})
	}

	if freshFetch {
		for _, ref := range ExtractImageRefs(doc, url) {
			f.cacheImage(ref, depth)
		}
	}

	for _, link := range ExtractLinks(doc, url) {
		f.schedule(ctx, link, depth+1)
	}
}

// cacheImage fetches an image URL into the blob store on a miss, then
// emits an ImageRecord either way.
func (f *Frontier) cacheImage(imageURL string, depth int) {
	digest := cache.ImageDigest(imageURL)
	data, hit, err := f.cache.GetImage(digest)
	if err != nil {
		f.logger.Printf("govcrawler: image cache read error for %s: %v", imageURL, err)
	}
	if !hit {
		resp, err := f.fetcher.FetchRaw(imageURL)
		if err != nil {
			return
		}
		data = resp
		if err := f.cache.PutImage(digest, data); err != nil {
			f.logger.Printf("govcrawler: image cache write error for %s: %v", imageURL, err)
		}
	}
	f.pipeline.TrySendImage(ImageRecord{URL: imageURL, Bytes: data, Depth: depth})
}

// originOf returns the (scheme, host, port) politeness unit for a
// normalized URL.
func originOf(normalized string) string {
	u, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	return u.Scheme + "://" + u.Host
}
