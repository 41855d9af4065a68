// Package searxng is a client for a SearxNG-compatible metasearch service.
// The research worker uses it as its only tool.
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MVdovychenko/agentic-ai/tools"
)

type Category = string

const (
	EmptyCategory       Category = ""
	GeneralCategory     Category = "general"
	NewsCategory        Category = "news"
	SocialMediaCategory Category = "social_media"
)

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	// URL The URL of the search result
	URL string `json:"url"`
	// Title The title of the search result
	Title string `json:"title"`
	// Content The content snippet of the search result
	Content string `json:"content,omitempty"`
	// Query The query used to obtain this search result
	Query string `json:"query,omitempty"`
}

// SearchResponse represents the entire response from the search engine
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

type Config struct {
	tools.Config
	language   string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// SearxngSearch performs searches on SearxNG for the provided queries.
type SearxngSearch struct {
	Config
}

func New(opts ...Option) *SearxngSearch {
	ret := new(SearxngSearch)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("SearxngSearchTool")
	}
	if ret.maxResults == 0 {
		ret.maxResults = 10
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

// Search runs every query against the search engine, drops results missing a
// title or URL, dedupes by URL, and caps the merged list at maxResults.
func (t *SearxngSearch) Search(ctx context.Context, queries []string, category Category) ([]SearchResultItem, error) {
	seen := make(map[string]struct{})
	results := make([]SearchResultItem, 0, t.maxResults)
	for _, query := range queries {
		items, err := t.fetchSearchResults(ctx, query, category)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.Title == "" || item.URL == "" {
				continue
			}
			if _, found := seen[item.URL]; found {
				continue
			}
			seen[item.URL] = struct{}{}
			results = append(results, item)
		}
	}
	if t.maxResults > 0 && len(results) > t.maxResults {
		results = results[:t.maxResults]
	}
	return results, nil
}

// fetchSearchResults queries the search engine and returns the parsed search response
func (t *SearxngSearch) fetchSearchResults(ctx context.Context, query string, category Category) ([]SearchResultItem, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	values.Set("engines", "bing,duckduckgo,google,startpage,yandex")
	if t.language != "" {
		values.Set("language", t.language)
	}
	if category != "" {
		values.Set("categories", category)
	}
	searchURL := fmt.Sprintf("%s/search?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying search engine: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from search engine: %d", httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	for idx := range searchResponse.Results {
		searchResponse.Results[idx].Query = query
	}

	return searchResponse.Results, nil
}
