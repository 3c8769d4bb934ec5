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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDecodeBodyPassesThroughValidUTF8(t *testing.T) {
	got, err := decodeBody([]byte("<html>héllo</html>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "<html>héllo</html>" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeBodyFallsBackOnInvalidUTF8(t *testing.T) {
	invalid := []byte{0xff, 0xfe, 'a', 'b', 'c'}
	got, err := decodeBody(invalid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == "" {
		t.Fatal("expected non-empty fallback decode")
	}
}

func TestFetchSuccessOnHTML200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><p>hi</p></body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher()
	result, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HTML == "" {
		t.Fatal("expected non-empty html")
	}
}

func TestFetchNon200IsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher()
	_, err := f.Fetch(context.Background(), srv.URL)
	fe, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Kind != ErrStatus {
		t.Fatalf("got kind %v", fe.Kind)
	}
}

func TestFetchNonHTMLContentTypeIsContentTypeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := NewFetcher()
	_, err := f.Fetch(context.Background(), srv.URL)
	fe, ok := err.(*FetchError)
	if !ok {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.Kind != ErrContentType {
		t.Fatalf("got kind %v", fe.Kind)
	}
}
