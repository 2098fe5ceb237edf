// Package search queries the Serper.dev Google search API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"seo_article_writer/apperr"
	"seo_article_writer/metrics"
)

const (
	DefaultEndpoint = "https://google.serper.dev/search"
	DefaultCount    = 3

	maxBodyBytes = 4 << 20
	excerptLen   = 200
)

// Result is one organic search hit.
type Result struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// Client calls the Serper search endpoint.
type Client struct {
	Endpoint string
	Language string

	apiKey string
	client *http.Client
	logger *zap.Logger
}

type searchPayload struct {
	Query    string `json:"q"`
	Language string `json:"hl,omitempty"`
	Num      int    `json:"num"`
}

// New creates a Client. A nil http client gets a 30s timeout; a nil logger is a no-op.
func New(apiKey, language string, client *http.Client, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, apperr.Config("search api key is required", nil)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		Endpoint: DefaultEndpoint,
		Language: language,
		apiKey:   apiKey,
		client:   client,
		logger:   logger,
	}, nil
}

// Search returns up to count organic results for query, in ranking order.
func (c *Client) Search(ctx context.Context, query string, count int) (results []Result, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is empty")
	}
	if count <= 0 {
		count = DefaultCount
	}

	start := time.Now()
	defer func() {
		metrics.ObserveUpstream(metrics.ServiceSearch, start, err)
		c.logger.Debug("search finished",
			zap.String("query", query),
			zap.Int("results", len(results)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}()

	body, err := json.Marshal(searchPayload{Query: query, Language: c.Language, Num: count})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("search request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Upstream("reading search response failed", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream(fmt.Sprintf("search api returned %d: %s", resp.StatusCode, excerpt(data)), nil)
	}

	return parseOrganic(data, count)
}

func parseOrganic(data []byte, count int) ([]Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, apperr.Parse("search response is not valid JSON", string(data), nil)
	}
	organic := gjson.GetBytes(data, "organic")
	if !organic.Exists() || !organic.IsArray() {
		return nil, apperr.Parse("search response has no organic results array", string(data), nil)
	}

	results := make([]Result, 0, count)
	seen := make(map[string]bool, count)
	for _, item := range organic.Array() {
		if len(results) == count {
			break
		}
		if !item.IsObject() {
			return nil, apperr.Parse("search response has a malformed organic entry", string(data), nil)
		}
		link := strings.TrimSpace(item.Get("link").String())
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		results = append(results, Result{
			Title:    strings.TrimSpace(item.Get("title").String()),
			Snippet:  strings.TrimSpace(item.Get("snippet").String()),
			URL:      link,
			Position: int(item.Get("position").Int()),
		})
	}
	return results, nil
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= excerptLen {
		return s
	}
	cut := excerptLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
