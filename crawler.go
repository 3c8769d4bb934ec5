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

// Package govcrawler implements a concurrent, depth-bounded web crawler:
// a frontier scheduler bounded by an in-flight cap, per-origin politeness
// with adaptive pacing, a two-tier persistent cache, and a bounded,
// drop-on-full output pipeline feeding external consumers.
package govcrawler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/agentberlin/govcrawler/internal/cache"
)

// Crawler is the library's single owned handle: it holds every mutex,
// counter, and cache handle the run needs, with no process-wide
// singletons (per the source's global-mutable-state concern).
type Crawler struct {
	cfg      *Config
	store    *cache.Store
	governor *Governor
	fetcher  *Fetcher
	pipeline *Pipeline
	metrics  *Metrics
	frontier *Frontier
	logger   *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Crawler from cfg, opening the persistent cache under
// cfg.CacheDir. Call Start to begin a crawl.
func New(cfg *Config, logger *log.Logger) (*Crawler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = log.Default()
	}

	store, err := cache.Open(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	governor := NewGovernor()
	fetcher := NewFetcher()
	pipeline := NewPipeline(cfg.MemoryGB, logger)
	metrics := NewMetrics()
	frontier := NewFrontier(cfg.MaxConcurrent, cfg.MaxDepth, store, governor, fetcher, pipeline, metrics, logger)

	return &Crawler{
		cfg:      cfg,
		store:    store,
		governor: governor,
		fetcher:  fetcher,
		pipeline: pipeline,
		metrics:  metrics,
		frontier: frontier,
		logger:   logger,
	}, nil
}

// TextRecords exposes the bounded text output channel. Consumers read;
// the core never blocks on it.
func (c *Crawler) TextRecords() <-chan TextRecord { return c.pipeline.TextRecords }

// ImageRecords exposes the bounded image output channel.
func (c *Crawler) ImageRecords() <-chan ImageRecord { return c.pipeline.ImageRecords }

// Start normalizes every seed and spawns the scheduler loop in its own
// goroutine. It returns immediately.
func (c *Crawler) Start(seeds []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	normalized := make([]string, 0, len(seeds))
	for _, s := range seeds {
		u, err := Normalize(s, "")
		if err != nil {
			c.logger.Printf("govcrawler: rejecting seed %q: %v", s, err)
			continue
		}
		normalized = append(normalized, u)
	}

	go func() {
		defer close(c.done)
		c.frontier.Run(ctx, normalized)
	}()
}

// Stop sets is_running false, cancels in-flight network operations, and
// joins the scheduler with a 10s hard timeout.
func (c *Crawler) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	c.frontier.Stop()
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		c.logger.Printf("govcrawler: 10s shutdown timeout exceeded")
	}
}

// Close releases the persistent cache's underlying connection. Call
// after Stop.
func (c *Crawler) Close() error {
	return c.store.Close()
}

// Metrics returns the current counters and derived rates.
func (c *Crawler) Metrics() Snapshot {
	return c.metrics.Snapshot()
}
