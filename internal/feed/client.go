package feed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Row is one header-keyed record of the raw tabular feed.
type Row map[string]string

// LoadError wraps any whole-feed failure. Per the error contract the feed
// either loads completely or not at all; there is no row-level reporting.
type LoadError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("feed load failed during %s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

// ErrFeedURLMissing signals that the client was constructed without a source URL.
var ErrFeedURLMissing = errors.New("feed: source url is required")

const defaultFetchTimeout = 20 * time.Second

// Client fetches the published CSV export over HTTP and parses it into
// header-keyed rows. The export requires no authentication and is read-only.
type Client struct {
	url        string
	httpClient *http.Client
}

// ClientOption customises Client construction.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for fetching.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the fetch timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a feed client for the given export URL.
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, ErrFeedURLMissing
	}
	client := &Client{
		url:        trimmed,
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Fetch downloads and parses the feed. Any failure surfaces as a single
// LoadError covering the whole feed.
func (c *Client) Fetch(ctx context.Context) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &LoadError{Stage: "request", Err: err}
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LoadError{Stage: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{Stage: "fetch", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	rows, err := ParseRows(resp.Body)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ParseRows reads CSV data whose first record is the header row and keys
// every following record by header name. Short records leave trailing fields
// absent; extra fields are dropped.
func ParseRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &LoadError{Stage: "parse", Err: errors.New("empty feed")}
	}
	if err != nil {
		return nil, &LoadError{Stage: "parse", Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Stage: "parse", Err: err}
		}
		row := make(Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
