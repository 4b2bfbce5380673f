// Package extractor fetches arbitrary web pages and recovers a normalized
// document from their markup using ordered heuristic fallback chains. The
// result is classified as a species or article page so the ingestion layer
// can decide how to persist it.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jairbenitez29/blueedu/pkg/core"
	"github.com/jairbenitez29/blueedu/pkg/log"
)

// ErrUnavailable reports that a page could not be fetched: network failure
// or a non-success HTTP status. It is a recoverable condition, distinct
// from a malformed URL, and callers are expected to test for it with
// errors.Is.
var ErrUnavailable = errors.New("content unavailable")

const defaultTimeout = 20 * time.Second

// Extractor fetches URLs and turns their markup into WebDocuments.
type Extractor struct {
	client *http.Client
	logger *log.Logger
}

// New creates an Extractor with a bounded HTTP client.
func New(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		logger: log.ForService("extractor"),
	}
}

// Extract fetches rawURL and recovers title, description, body and kind.
// A malformed URL is an input error; fetch failures and non-success
// statuses return ErrUnavailable.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*core.WebDocument, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "blueedu-extractor/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warnf("fetching %s: %v", rawURL, err)
		return nil, fmt.Errorf("fetching %s: %w", rawURL, ErrUnavailable)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			e.logger.Warnf("closing response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Warnf("fetching %s: status %d", rawURL, resp.StatusCode)
		return nil, fmt.Errorf("fetching %s (status %d): %w", rawURL, resp.StatusCode, ErrUnavailable)
	}

	page, err := parsePage(resp.Body)
	if err != nil {
		e.logger.Warnf("parsing %s: %v", rawURL, err)
		return nil, fmt.Errorf("parsing %s: %w", rawURL, ErrUnavailable)
	}

	return &core.WebDocument{
		Title:       page.Title(),
		Description: page.Description(),
		Body:        page.Body(),
		URL:         rawURL,
		Source:      core.SourceDomain(rawURL),
		Kind:        classify(rawURL, page.Text()),
	}, nil
}

// speciesURLTokens and speciesTextPhrases form a keyword-membership test:
// any single hit classifies the page as a species page.
var speciesURLTokens = []string{
	"species", "especie", "animal", "wildlife", "iucn", "wikipedia",
}

var speciesTextPhrases = []string{
	"nombre científico", "scientific name", "conservación", "conservation status",
}

func classify(rawURL, text string) core.DocKind {
	lowerURL := strings.ToLower(rawURL)
	for _, token := range speciesURLTokens {
		if strings.Contains(lowerURL, token) {
			return core.KindSpecies
		}
	}
	lowerText := strings.ToLower(text)
	for _, phrase := range speciesTextPhrases {
		if strings.Contains(lowerText, phrase) {
			return core.KindSpecies
		}
	}
	return core.KindArticle
}
