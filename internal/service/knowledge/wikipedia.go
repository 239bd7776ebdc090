package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgraph-io/ristretto"
)

const (
	summaryEndpoint = "https://en.wikipedia.org/api/rest_v1/page/summary/"
	cacheTTL        = time.Hour
	extractLimit    = 1500
)

// Wikipedia fetches page summaries as supplementary persona facts, with a
// TTL cache so one popular persona does not hammer the API.
type Wikipedia struct {
	cache   *ristretto.Cache
	client  *http.Client
	baseURL string
}

// NewWikipedia builds the fetcher. baseURL overrides the public endpoint
// for tests; pass "" for the default.
func NewWikipedia(baseURL string) (*Wikipedia, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 22, // ~4MB of extracts
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("init knowledge cache: %w", err)
	}
	if baseURL == "" {
		baseURL = summaryEndpoint
	}
	return &Wikipedia{
		cache:   cache,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}, nil
}

// Summary returns the page extract for a title, serving from cache when the
// entry is fresh.
func (w *Wikipedia) Summary(ctx context.Context, title string) (string, error) {
	if cached, ok := w.cache.Get(title); ok {
		if extract, ok := cached.(string); ok {
			return extract, nil
		}
	}

	page := strings.ReplaceAll(title, " ", "_")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+url.PathEscape(page), nil)
	if err != nil {
		return "", fmt.Errorf("build wikipedia request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch wikipedia summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia summary for %q: status %d", title, resp.StatusCode)
	}

	var payload struct {
		Extract string `json:"extract"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode wikipedia summary: %w", err)
	}

	extract := payload.Extract
	if len(extract) > extractLimit {
		// Back up to a rune boundary so truncation never leaves a broken
		// multibyte character at the end.
		cut := extractLimit
		for cut > 0 && !utf8.RuneStart(extract[cut]) {
			cut--
		}
		extract = extract[:cut]
	}
	w.cache.SetWithTTL(title, extract, int64(len(extract)), cacheTTL)
	return extract, nil
}
