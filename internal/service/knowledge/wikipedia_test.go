package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"
)

func TestSummaryFetchesExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "Leo_Tolstoy") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"extract":"Leo Tolstoy was a Russian writer."}`))
	}))
	defer server.Close()

	wiki, err := NewWikipedia(server.URL + "/")
	if err != nil {
		t.Fatalf("new wikipedia: %v", err)
	}

	extract, err := wiki.Summary(context.Background(), "Leo Tolstoy")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if extract != "Leo Tolstoy was a Russian writer." {
		t.Fatalf("unexpected extract %q", extract)
	}
}

func TestSummaryCachesResult(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"extract":"cached"}`))
	}))
	defer server.Close()

	wiki, err := NewWikipedia(server.URL + "/")
	if err != nil {
		t.Fatalf("new wikipedia: %v", err)
	}

	ctx := context.Background()
	if _, err := wiki.Summary(ctx, "Anton Chekhov"); err != nil {
		t.Fatalf("first summary: %v", err)
	}

	// ristretto applies writes asynchronously.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := wiki.cache.Get("Anton Chekhov"); ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := wiki.Summary(ctx, "Anton Chekhov"); err != nil {
		t.Fatalf("second summary: %v", err)
	}
	if hits.Load() > 2 {
		t.Fatalf("expected at most 2 upstream hits, got %d", hits.Load())
	}
}

func TestSummaryTruncatesOnRuneBoundary(t *testing.T) {
	// An ASCII byte up front misaligns every following two-byte letter, so a
	// naive byte cut at the limit would land inside a rune.
	long := "a" + strings.Repeat("б", 1600)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := json.Marshal(map[string]string{"extract": long})
		w.Write(payload)
	}))
	defer server.Close()

	wiki, err := NewWikipedia(server.URL + "/")
	if err != nil {
		t.Fatalf("new wikipedia: %v", err)
	}

	extract, err := wiki.Summary(context.Background(), "Фёдор Достоевский")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(extract) > extractLimit {
		t.Fatalf("extract exceeds limit: %d bytes", len(extract))
	}
	if !utf8.ValidString(extract) {
		t.Fatalf("truncated extract is invalid UTF-8 at the tail: %q", extract[len(extract)-4:])
	}
}

func TestSummaryUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	wiki, err := NewWikipedia(server.URL + "/")
	if err != nil {
		t.Fatalf("new wikipedia: %v", err)
	}

	if _, err := wiki.Summary(context.Background(), "Nobody"); err == nil {
		t.Fatal("expected error for upstream 404")
	}
}

func TestFactsSkipsFailedFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	wiki, err := NewWikipedia(server.URL + "/")
	if err != nil {
		t.Fatalf("new wikipedia: %v", err)
	}
	svc := NewService(wiki)

	facts := svc.Facts(context.Background(), "tolstoy", "Leo Tolstoy")
	if len(facts) != len(staticFacts["tolstoy"]) {
		t.Fatalf("expected only curated facts on fetch failure, got %d", len(facts))
	}
}

func TestFactsWithoutWiki(t *testing.T) {
	svc := NewService(nil)

	facts := svc.Facts(context.Background(), "gogol", "Nikolai Gogol")
	if len(facts) != len(staticFacts["gogol"]) {
		t.Fatalf("expected curated facts, got %d", len(facts))
	}
	facts[0] = "mutated"
	if staticFacts["gogol"][0] == "mutated" {
		t.Fatal("Facts must not expose the curated backing slice")
	}
}
