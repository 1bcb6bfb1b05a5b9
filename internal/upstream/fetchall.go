package upstream

import (
	"context"
	"net/url"
	"sync"

	"mrm-console/internal/tableview"
)

// Source names one upstream collection to pull for an aggregate page.
type Source struct {
	Name  string
	Path  string
	Query url.Values
}

// SourceResult is what one source produced: rows on success, an error string
// otherwise. Sources settle independently.
type SourceResult struct {
	Rows []tableview.Row
	Err  error
}

// FetchAll issues every source in parallel and collects per-source results.
// One failing source never suppresses the others; callers render whatever
// succeeded and report the rest. A cancelled context fails the remaining
// sources individually through their requests.
func (c *Client) FetchAll(ctx context.Context, sources []Source) map[string]SourceResult {
	results := make(map[string]SourceResult, len(sources))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, source := range sources {
		wg.Add(1)
		go func(source Source) {
			defer wg.Done()

			rows, err := c.FetchRows(ctx, source.Path, source.Query)

			mu.Lock()
			results[source.Name] = SourceResult{Rows: rows, Err: err}
			mu.Unlock()
		}(source)
	}

	wg.Wait()
	return results
}
