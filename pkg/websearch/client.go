// Package websearch implements the external web-search client backed by the
// Google Custom Search API, with a database-backed result cache.
//
// The client never returns an error: missing credentials, upstream failures
// and cache problems all degrade to an empty result list with a logged
// reason, so a broken search integration can never take down a page.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jairbenitez29/blueedu/pkg/core"
	"github.com/jairbenitez29/blueedu/pkg/log"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// DefaultCacheTTL is how long cached results stay valid.
const DefaultCacheTTL = 7 * 24 * time.Hour

// ResultCache is the slice of the store the client needs. Queries passed in
// are already normalized.
type ResultCache interface {
	GetCachedResults(ctx context.Context, query string) ([]core.WebResult, bool, error)
	PutCachedResults(ctx context.Context, query string, results []core.WebResult, expiresAt time.Time) error
}

// Config holds client settings. APIKey and SearchEngineID usually come from
// the environment; when either is empty the client degrades silently.
type Config struct {
	APIKey         string
	SearchEngineID string
	BaseURL        string
	Language       string
	CacheTTL       time.Duration
	Timeout        time.Duration
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Language == "" {
		c.Language = "lang_es"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
}

// Client queries the Custom Search API.
type Client struct {
	config Config
	cache  ResultCache
	client *http.Client
	logger *log.Logger
}

// NewClient creates a search client. cache may not be nil.
func NewClient(config Config, cache ResultCache) *Client {
	config.applyDefaults()
	return &Client{
		config: config,
		cache:  cache,
		client: &http.Client{Timeout: config.Timeout},
		logger: log.ForService("websearch"),
	}
}

// apiResponse mirrors the subset of the Custom Search response we consume.
type apiResponse struct {
	Items []apiItem `json:"items"`
}

type apiItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search returns up to 5 web results for the query, serving from the cache
// when a non-expired row exists. A nil or empty slice means "no web results
// available"; the caller cannot distinguish failure from an empty result
// set, which is intentional.
func (c *Client) Search(ctx context.Context, query string) []core.WebResult {
	normalized := core.NormalizeQuery(query)

	cached, ok, err := c.cache.GetCachedResults(ctx, normalized)
	if err != nil {
		c.logger.Warnf("cache read failed for %q: %v", normalized, err)
	} else if ok {
		c.logger.Debugf("cache hit for %q (%d results)", normalized, len(cached))
		return cached
	}

	if c.config.APIKey == "" || c.config.SearchEngineID == "" {
		c.logger.Debugf("search credentials missing, returning no web results")
		return nil
	}

	results, err := c.fetch(ctx, query, 5, true)
	if err != nil {
		c.logger.Errorf("web search for %q failed: %v", normalized, err)
		return nil
	}
	if len(results) == 0 {
		c.logger.Infof("no web results for %q", normalized)
		return nil
	}

	expiresAt := time.Now().Add(c.config.CacheTTL)
	if err := c.cache.PutCachedResults(ctx, normalized, results, expiresAt); err != nil {
		// Fetched results are still good; only the next caller pays again.
		c.logger.Warnf("cache write failed for %q: %v", normalized, err)
	}

	return results
}

// SearchLimit issues a single uncached request capped at n results. Used by
// the targeted species/topic lookups.
func (c *Client) SearchLimit(ctx context.Context, query string, n int) []core.WebResult {
	if c.config.APIKey == "" || c.config.SearchEngineID == "" {
		c.logger.Debugf("search credentials missing, returning no web results")
		return nil
	}
	results, err := c.fetch(ctx, query, n, false)
	if err != nil {
		c.logger.Errorf("web search for %q failed: %v", query, err)
		return nil
	}
	return results
}

func (c *Client) fetch(ctx context.Context, query string, n int, safe bool) ([]core.WebResult, error) {
	params := url.Values{}
	params.Set("key", c.config.APIKey)
	params.Set("cx", c.config.SearchEngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(n))
	params.Set("lr", c.config.Language)
	if safe {
		params.Set("safe", "active")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling search API: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	results := make([]core.WebResult, 0, len(apiResp.Items))
	for _, item := range apiResp.Items {
		title := item.Title
		if title == "" {
			title = "Sin título"
		}
		description := item.Snippet
		if description == "" {
			description = "Sin descripción disponible"
		}
		results = append(results, core.WebResult{
			Title:       title,
			URL:         item.Link,
			Description: description,
			Source:      core.SourceDomain(item.Link),
		})
	}
	return results, nil
}
