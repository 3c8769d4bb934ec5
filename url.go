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
	"errors"
	"strings"

	whatwgUrl "github.com/nlnwa/whatwg-url/url"
)

// Classification is the outcome of classifying a normalized URL.
type Classification int

const (
	ClassHTML Classification = iota
	ClassImage
	ClassVideo
	ClassReject
)

func (c Classification) String() string {
	switch c {
	case ClassHTML:
		return "html_candidate"
	case ClassImage:
		return "image"
	case ClassVideo:
		return "video"
	default:
		return "reject"
	}
}

// ErrRejectedURL is returned by Normalize for schemes or hosts that can
// never be crawled.
var ErrRejectedURL = errors.New("govcrawler: rejected url")

var urlParser = whatwgUrl.NewParser(whatwgUrl.WithPercentEncodeSinglePercentSign())

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

var videoHosts = []string{"youtube.com", "vimeo.com", "dailymotion.com"}

var rejectHostSubstrings = []string{
	"facebook.com", "twitter.com", "instagram.com",
	"ads.", "analytics.", "tracker.",
}

// Normalize resolves raw against base (which may be empty for an absolute
// URL), lowercases scheme and host, strips the fragment and a default
// port, and rejects anything that isn't a crawlable http(s) URL with a
// host.
func Normalize(raw, base string) (string, error) {
	var u *whatwgUrl.Url
	var err error

	if base != "" {
		u, err = urlParser.ParseRef(base, raw)
	} else {
		u, err = urlParser.Parse(raw)
	}
	if err != nil {
		return "", err
	}

	scheme := strings.ToLower(u.Scheme())
	if scheme != "http" && scheme != "https" {
		return "", ErrRejectedURL
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", ErrRejectedURL
	}

	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	path := u.Pathname()
	if path == "" {
		path = "/"
	}

	var sb strings.Builder
	sb.WriteString(scheme)
	sb.WriteString("://")
	sb.WriteString(host)
	if port != "" {
		sb.WriteByte(':')
		sb.WriteString(port)
	}
	sb.WriteString(path)
	if q := u.Search(); q != "" {
		sb.WriteString(q)
	}
	return sb.String(), nil
}

// Classify buckets a normalized URL into the categories the Frontier and
// HTML Parser Adapter act on.
func Classify(u string) Classification {
	parsed, err := urlParser.Parse(u)
	if err != nil {
		return ClassReject
	}
	host := strings.ToLower(parsed.Hostname())
	path := strings.ToLower(parsed.Pathname())

	for _, suffix := range imageExtensions {
		if strings.HasSuffix(path, suffix) {
			return ClassImage
		}
	}
	for _, vh := range videoHosts {
		if strings.Contains(host, vh) {
			return ClassVideo
		}
	}
	for _, bad := range rejectHostSubstrings {
		if strings.Contains(host, bad) {
			return ClassReject
		}
	}
	return ClassHTML
}
