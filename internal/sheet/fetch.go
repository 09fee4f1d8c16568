package sheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxFetchBytes caps how much of a published sheet we are willing to read.
const maxFetchBytes = 10 << 20

// Fetcher downloads a published sheet over HTTP and parses it. The zero
// timeout falls back to 30 seconds; cancelling the context aborts the
// request.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with the given request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the sheet at url and parses it as CSV, TSV, or a
// published HTML page depending on what comes back. Nothing is persisted
// here, so a failed fetch can never leave a partial import behind.
func (f *Fetcher) Fetch(ctx context.Context, url string) (_ ParseResult, err error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return ParseResult{}, fmt.Errorf("unsupported url scheme in %q", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ParseResult{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return ParseResult{}, fmt.Errorf("fetch sheet: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return ParseResult{}, fmt.Errorf("fetch sheet: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return ParseResult{}, fmt.Errorf("read response body: %w", err)
	}

	if isHTML(resp.Header.Get("Content-Type"), body) {
		return ParsePublishedHTML(strings.NewReader(string(body)))
	}
	return ParseCSV(strings.NewReader(string(body)))
}

// isHTML decides between the published-page and CSV parsers, preferring the
// Content-Type header and falling back to sniffing the body.
func isHTML(contentType string, body []byte) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	if strings.Contains(contentType, "text/csv") || strings.Contains(contentType, "text/tab-separated-values") {
		return false
	}
	trimmed := strings.TrimSpace(string(body[:min(len(body), 256)]))
	return strings.HasPrefix(trimmed, "<")
}
