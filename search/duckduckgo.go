package search

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/tools/duckduckgo"
)

// DuckDuckGo implements Searcher over the DuckDuckGo HTML endpoint via the
// langchaingo tool. It needs no API key, which keeps the research phase
// usable without extra credentials.
type DuckDuckGo struct {
	tool *duckduckgo.Tool
}

// NewDuckDuckGo constructs a searcher returning up to maxResults per query.
func NewDuckDuckGo(maxResults int) (*DuckDuckGo, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	tool, err := duckduckgo.New(maxResults, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &DuckDuckGo{tool: tool}, nil
}

// Search implements Searcher.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	raw, err := d.tool.Call(ctx, query)
	if err != nil {
		return nil, err
	}
	return parseResults(raw), nil
}

// parseResults converts the tool's formatted text output into structured
// results. Blocks with Title/Description/URL labels are mapped field by
// field; anything else is kept verbatim as a snippet so a format change
// upstream degrades gracefully instead of dropping data.
func parseResults(raw string) []Result {
	var results []Result
	for _, block := range strings.Split(raw, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		var r Result
		var plain []string
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "Title:"):
				r.Title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
			case strings.HasPrefix(line, "Description:"):
				r.Snippet = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
			case strings.HasPrefix(line, "URL:"):
				r.URL = strings.TrimSpace(strings.TrimPrefix(line, "URL:"))
			case line != "":
				plain = append(plain, line)
			}
		}
		if r.Snippet == "" && len(plain) > 0 {
			r.Snippet = strings.Join(plain, " ")
		}
		if r.Title != "" || r.URL != "" || r.Snippet != "" {
			results = append(results, r)
		}
	}
	return results
}
