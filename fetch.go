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
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrorKind classifies why a fetch did not produce html bytes.
type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrTransport
	ErrStatus
	ErrContentType
	ErrDecodeFatal
)

const (
	totalDeadline   = 30 * time.Second
	connectDeadline = 10 * time.Second

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.9"
)

// FetchResult is what a successful fetch produces.
type FetchResult struct {
	HTML      string
	ByteCount int
}

// FetchError reports the classified reason a fetch failed.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string { return e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher issues politely-headered HTTP GETs with a connect deadline
// distinct from the total deadline — http.Client.Timeout alone can't
// express that split, so each request gets its own context and a dialer
// with its own connect timeout.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a Fetcher. Cookies are never sent or stored;
// redirects follow net/http's defaults, matching the spec's "no redirect
// policy override."
func NewFetcher() *Fetcher {
	dialer := &net.Dialer{Timeout: connectDeadline}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: connectDeadline,
	}
	return &Fetcher{
		client: &http.Client{
			Transport: transport,
		},
	}
}

// Fetch performs the GET. The returned error, when non-nil, is always a
// *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, totalDeadline)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: ErrStatus, Err: errors.New("non-200 status")}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "text/html") {
		return nil, &FetchError{Kind: ErrContentType, Err: errors.New("non-html content-type")}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, Err: err}
	}

	text, err := decodeBody(body)
	if err != nil {
		return nil, &FetchError{Kind: ErrDecodeFatal, Err: err}
	}

	return &FetchResult{HTML: text, ByteCount: len(text)}, nil
}

// FetchRaw downloads imageURL and re-encodes it as JPEG at quality 85,
// the on-disk format for the image blob store (§6). Decoding supports
// JPEG, PNG, and GIF source images; no dependency in this stack performs
// general raster transcoding, so this one piece is standard-library by
// necessity.
func (f *Fetcher) FetchRaw(imageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), totalDeadline)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("govcrawler: non-200 status fetching image")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	_ = format

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// decodeBody decodes body as UTF-8. On failure it sniffs a charset with
// chardet and decodes with the matching golang.org/x/text decoder;
// failing that, it falls back to lossy UTF-8 replacement. Only an empty
// result after all fallbacks is a decode_fatal error.
func decodeBody(body []byte) (string, error) {
	if utf8.Valid(body) {
		return string(body), nil
	}

	detector := chardet.NewTextDetector()
	if result, err := detector.DetectBest(body); err == nil {
		if enc, err := htmlindex.Get(result.Charset); err == nil {
			if decoded, err := enc.NewDecoder().Bytes(body); err == nil && len(decoded) > 0 {
				return string(decoded), nil
			}
		}
	}

	replaced := strings.ToValidUTF8(string(body), "�")
	if replaced == "" {
		return "", errors.New("govcrawler: unable to decode body")
	}
	return replaced, nil
}
