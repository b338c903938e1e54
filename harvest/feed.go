package harvest

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedLinks reads an RSS or Atom feed and returns the links of the items
// whose title or description mentions any keyword, case-insensitively.
// A non-2xx feed response yields no links and no error.
func FeedLinks(ctx context.Context, fetcher *Fetcher, feedURL string, keywords []string) ([]string, error) {
	body, ok, err := fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return matchFeedItems(feed, keywords), nil
}

func matchFeedItems(feed *gofeed.Feed, keywords []string) []string {
	var links []string
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		text := strings.ToLower(item.Title + " " + item.Description)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				links = append(links, item.Link)
				break
			}
		}
	}
	return links
}
