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

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestClaimVisitedOnlyOneWinner(t *testing.T) {
	s := openTestStore(t)

	first, err := s.ClaimVisited("https://example.com/a")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := s.ClaimVisited("https://example.com/a")
	require.NoError(t, err)
	assert.False(t, second, "a URL already claimed must not be claimable again")
}

func TestLoadVisitedReflectsClaims(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ClaimVisited("https://example.com/a")
	require.NoError(t, err)
	_, err = s.ClaimVisited("https://example.com/b")
	require.NoError(t, err)

	visited, err := s.LoadVisited()
	require.NoError(t, err)
	assert.Contains(t, visited, "https://example.com/a")
	assert.Contains(t, visited, "https://example.com/b")
	assert.Len(t, visited, 2)
}

func TestPutPageThenFreshHit(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutPage("https://example.com/", "<html></html>"))

	html, ok, err := s.GetFreshPage("https://example.com/")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<html></html>", html)
}

func TestGetFreshPageMissOnStaleEntry(t *testing.T) {
	s := openTestStore(t)

	page := Page{URL: "https://example.com/", Content: "stale", LastCrawled: time.Now().Add(-25 * time.Hour)}
	require.NoError(t, s.db.Create(&page).Error)

	_, ok, err := s.GetFreshPage("https://example.com/")
	require.NoError(t, err)
	assert.False(t, ok, "an entry older than 24h must miss")
}

func TestPutPageIdempotent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutPage("https://example.com/", "<html>v1</html>"))
	require.NoError(t, s.PutPage("https://example.com/", "<html>v1</html>"))

	var count int64
	require.NoError(t, s.db.Model(&Page{}).Where("url = ?", "https://example.com/").Count(&count).Error)
	assert.Equal(t, int64(1), count, "two puts of the same content must not duplicate the row")
}

func TestImageBlobRoundTrip(t *testing.T) {
	s := openTestStore(t)

	digest := ImageDigest("https://example.com/img.jpg")
	_, ok, err := s.GetImage(digest)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutImage(digest, []byte("fake-jpeg-bytes")))

	data, ok, err := s.GetImage(digest)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("fake-jpeg-bytes"), data)
}

func TestImageDigestIsStableAndSixteenHexChars(t *testing.T) {
	a := ImageDigest("https://example.com/IMG.JPG")
	b := ImageDigest("https://example.com/IMG.JPG")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestOpenCreatesImageDirUnderCacheDir(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	assert.DirExists(t, filepath.Join(dir, "images"))
	assert.FileExists(t, filepath.Join(dir, "crawler_cache.db"))
}
