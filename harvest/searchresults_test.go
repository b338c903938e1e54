package harvest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResultsBatch = `[
	{
		"cacheUrl": "c1", "clicktrackUrl": "k1", "content": "x", "contentNoFormatting": "x",
		"title": "One", "titleNoFormatting": "One", "formattedUrl": "f1",
		"unescapedUrl": "https://punemirror.com/1", "url": "https://punemirror.com/1", "visibleUrl": "punemirror.com",
		"richSnippet": {"metatags": {"articlePublishedTime": "2024-03-01T08:00:00Z"}}
	},
	{
		"cacheUrl": "c2", "title": "Missing most fields", "url": "https://punemirror.com/2"
	},
	{
		"cacheUrl": "c1", "clicktrackUrl": "k1", "content": "x", "contentNoFormatting": "x",
		"title": "One again", "titleNoFormatting": "One again", "formattedUrl": "f1",
		"unescapedUrl": "https://punemirror.com/1", "url": "https://punemirror.com/1", "visibleUrl": "punemirror.com",
		"richSnippet": {"metatags": {"articlePublishedTime": "2024-03-02T08:00:00Z"}}
	},
	"not an object",
	null
]`

// TestLoadSearchResults verifies invalid items are skipped and duplicates
// collapse
func TestLoadSearchResults(t *testing.T) {
	results, err := LoadSearchResults(strings.NewReader(searchResultsBatch))
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "https://punemirror.com/1", results[0].URL)
	assert.Equal(t, "One", results[0].Title, "should keep the first occurrence")
}

// TestLoadSearchResults_NotAnArray verifies a malformed batch is an error
func TestLoadSearchResults_NotAnArray(t *testing.T) {
	_, err := LoadSearchResults(strings.NewReader(`{"items": []}`))
	assert.Error(t, err)
}
