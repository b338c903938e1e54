package harvest

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pevans/newsharvest/record"
)

// LoadSearchResults reads a pre-fetched batch of structured search results
// (a JSON array of result objects) and returns the ones that validate.
// Invalid items are skipped; only a batch that is not a JSON array of
// values is an error.
func LoadSearchResults(r io.Reader) ([]record.SearchResult, error) {
	var items []json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	results := make([]record.SearchResult, 0, len(items))
	for _, raw := range items {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		res, err := record.NewSearchResult(doc)
		if err != nil {
			continue
		}
		results = append(results, res)
	}

	return record.Dedupe(results), nil
}
