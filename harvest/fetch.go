package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent identifies the harvester to the sites it visits.
const DefaultUserAgent = "newsharvest/1.0 (news search harvester)"

// FetchError is a transport-level failure for a single URL: timeout,
// refused connection, unresolvable host or a body that could not be read.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher issues GET requests over a shared HTTP client. It is safe for
// concurrent use.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a fetcher whose client gives up after timeout.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return NewFetcherWithClient(&http.Client{Timeout: timeout}, userAgent)
}

// NewFetcherWithClient creates a fetcher around an existing client.
func NewFetcherWithClient(client *http.Client, userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
	}
}

// Fetch returns the body of url. A non-2xx status is not an error: it
// returns ok == false so callers can treat the page as empty. Transport
// failures are returned as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (body string, ok bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", false, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", false, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	return string(data), true, nil
}
