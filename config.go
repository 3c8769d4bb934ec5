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

import "runtime"

// Config is the configuration record consumed when constructing a Crawler.
// Parsing it out of flags, environment, or a file is the caller's concern.
type Config struct {
	// MaxDepth is the maximum hop distance from any seed that a task may
	// be scheduled at.
	MaxDepth int
	// MaxConcurrent bounds the number of in-flight tasks at any instant.
	MaxConcurrent int
	// CacheDir is the root directory for the persistent cache: the
	// embedded relational store and the image blob directory both live
	// under it.
	CacheDir string
	// MemoryGB sizes MaxConcurrent's default and the output pipeline's
	// queue capacities (1000*MemoryGB text records, 500*MemoryGB image
	// records). No dependency in this stack reports usable memory
	// portably, so this is left for the caller to set from its own
	// deployment knowledge; it defaults to 1.
	MemoryGB float64
}

// DefaultConfig returns a Config with every field at its documented default.
func DefaultConfig() *Config {
	cfg := &Config{
		MaxDepth: 10,
		CacheDir: "./crawler_cache",
		MemoryGB: 1,
	}
	cfg.MaxConcurrent = defaultMaxConcurrent(cfg.MemoryGB)
	return cfg
}

// defaultMaxConcurrent computes min(2*cpus, 2*mem_gb, 50).
func defaultMaxConcurrent(memGB float64) int {
	n := 2 * runtime.NumCPU()
	memBound := int(2 * memGB)
	if memBound > 0 && memBound < n {
		n = memBound
	}
	if n > 50 {
		return 50
	}
	if n < 1 {
		return 1
	}
	return n
}
