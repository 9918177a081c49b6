// Package web ingests URLs by extracting their readable article text.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"golang.org/x/sync/singleflight"
)

const fetchTimeout = 30 * time.Second

// Extractor fetches a page and reduces it to its main article text.
// Results are cached per URL and concurrent fetches of the same URL
// collapse into one request.
type Extractor struct {
	client *http.Client

	cache   map[string]string
	cacheMu sync.RWMutex
	group   singleflight.Group
}

func New() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  make(map[string]string),
	}
}

// ExtractURL fetches the page and returns its readable text. HTML
// responses go through readability to strip navigation and boilerplate;
// anything else returns the body as-is.
func (e *Extractor) ExtractURL(ctx context.Context, pageURL string) (string, error) {
	e.cacheMu.RLock()
	if cached, ok := e.cache[pageURL]; ok {
		e.cacheMu.RUnlock()
		return cached, nil
	}
	e.cacheMu.RUnlock()

	result, err, _ := e.group.Do(pageURL, func() (any, error) {
		e.cacheMu.RLock()
		if cached, ok := e.cache[pageURL]; ok {
			e.cacheMu.RUnlock()
			return cached, nil
		}
		e.cacheMu.RUnlock()

		text, err := e.fetch(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		e.cacheMu.Lock()
		e.cache[pageURL] = text
		e.cacheMu.Unlock()

		return text, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("failed to fetch url: status %d", resp.StatusCode)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}
		return string(body), nil
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}
	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var b strings.Builder
	if err := article.RenderText(&b); err != nil {
		return "", fmt.Errorf("failed to render article text: %w", err)
	}
	return b.String(), nil
}
