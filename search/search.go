package search

import "context"

// Result is one ranked snippet returned for a query.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher is the external web-search collaborator. Implementations return
// results in rank order; an error fails only the single query, never the
// whole research phase.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Func adapts a plain function to the Searcher interface.
type Func func(ctx context.Context, query string) ([]Result, error)

// Search implements Searcher.
func (f Func) Search(ctx context.Context, query string) ([]Result, error) {
	return f(ctx, query)
}
