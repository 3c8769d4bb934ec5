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

package cache

import "time"

// Page is a row in the pages table: a durable, freshness-gated HTML
// cache entry.
type Page struct {
	URL         string `gorm:"column:url;primaryKey"`
	Content     string `gorm:"column:content"`
	LastCrawled time.Time `gorm:"column:last_crawled"`
}

func (Page) TableName() string { return "pages" }

// VisitedURL is a row in the visited_urls table: the durable claim
// ledger that gates redundant fetches across runs.
type VisitedURL struct {
	URL       string    `gorm:"column:url;primaryKey"`
	Timestamp time.Time `gorm:"column:timestamp"`
}

func (VisitedURL) TableName() string { return "visited_urls" }
