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

// Package cache implements the two-tier persistent cache: an embedded
// relational store for HTML pages and the visited-URL ledger, plus a
// content-addressed blob directory for images.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const freshnessWindow = 24 * time.Hour

// Store wraps the embedded relational store plus the image blob
// directory living under the same cache root.
type Store struct {
	db       *gorm.DB
	imageDir string
}

// Open creates (or reuses) the store rooted at cacheDir: cacheDir/crawler_cache.db
// for the relational store, cacheDir/images for blobs.
func Open(cacheDir string) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create cache dir: %w", err)
	}
	imageDir := filepath.Join(cacheDir, "images")
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create image dir: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "crawler_cache.db")
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cache: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := db.AutoMigrate(&Page{}, &VisitedURL{}); err != nil {
		return nil, fmt.Errorf("cache: migrate schema: %w", err)
	}

	return &Store{db: db, imageDir: imageDir}, nil
}

// Close releases the underlying *sql.DB.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ClaimVisited atomically inserts url into the visited ledger. It
// returns true only for the caller whose insert actually happened —
// the one that now owns the crawl of this URL.
func (s *Store) ClaimVisited(url string) (bool, error) {
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&VisitedURL{URL: url, Timestamp: time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// LoadVisited rehydrates the full visited set, called once at startup.
func (s *Store) LoadVisited() (map[string]struct{}, error) {
	var rows []VisitedURL
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		set[r.URL] = struct{}{}
	}
	return set, nil
}

// GetFreshPage returns the stored HTML for url iff it was crawled less
// than 24h ago. The second return is false on a miss (absent or stale).
func (s *Store) GetFreshPage(url string) (string, bool, error) {
	var page Page
	err := s.db.Where("url = ?", url).First(&page).Error
	if err == gorm.ErrRecordNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if time.Since(page.LastCrawled) >= freshnessWindow {
		return "", false, nil
	}
	return page.Content, true, nil
}

// PutPage upserts the page's HTML with fetched_at/last_crawled set to now.
func (s *Store) PutPage(url, html string) error {
	page := Page{URL: url, Content: html, LastCrawled: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "last_crawled"}),
	}).Create(&page).Error
}

// ImageDigest returns the content-addressing key for an image URL: a
// 16-hex-character xxhash digest. Collision resistance matters here for
// safety, not adversarial security, so xxhash is sufficient.
func ImageDigest(imageURL string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(imageURL))
}

func (s *Store) imagePath(digest string) string {
	return filepath.Join(s.imageDir, digest+".jpg")
}

// GetImage returns the cached JPEG bytes for digest, if present. Images
// are content-addressed and immutable, so presence alone is a hit — no
// freshness check.
func (s *Store) GetImage(digest string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.imagePath(digest))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// PutImage writes re-encoded JPEG bytes under digest.
func (s *Store) PutImage(digest string, jpegBytes []byte) error {
	tmp := s.imagePath(digest) + ".tmp"
	if err := os.WriteFile(tmp, jpegBytes, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.imagePath(digest))
}
