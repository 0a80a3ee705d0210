package unifyiq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

// Source is the client for the raw tabular service serving account and
// issue records. The service paginates with limit/offset and wraps rows in
// an "items" envelope.
//
// There is deliberately no response cache: every unification pass refetches
// so that concurrent requests never share state.
type Source struct {
	base   string
	client *http.Client
}

// NewSource returns a Source talking to the service at baseURL. All calls
// are bounded by the given timeout; zero means 10 seconds.
func NewSource(baseURL string, timeout time.Duration) *Source {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Source{
		base:   baseURL,
		client: &http.Client{Timeout: timeout},
	}
}

// ListAccounts fetches raw account records.
func (s *Source) ListAccounts(ctx context.Context, limit, offset int) ([]Record, error) {
	return s.list(ctx, "/salesforce", limit, offset)
}

// ListIssues fetches raw issue records.
func (s *Source) ListIssues(ctx context.Context, limit, offset int) ([]Record, error) {
	return s.list(ctx, "/jira", limit, offset)
}

func (s *Source) list(ctx context.Context, path string, limit, offset int) ([]Record, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	addr := s.base + path + "?" + q.Encode()

	var payload any
	if err := jwget(ctx, s.client, addr, &payload); err != nil {
		return nil, err
	}
	return extractItems(payload, addr)
}

// extractItems pulls the row list out of an upstream payload. The envelope
// is {"items": [...]} but a bare list is tolerated too; the source is not
// ours so its JSON is treated as untrusted.
func extractItems(payload any, addr string) ([]Record, error) {
	rows, ok := payload.([]any)
	if !ok {
		jval, err := jsonpath.Get("$.items", payload)
		if err != nil {
			return nil, fmt.Errorf("no items in response of %s: %w", addr, ErrUpstream)
		}
		rows, ok = jval.([]any)
		if !ok {
			return nil, fmt.Errorf("items is not a list in response of %s: %w", addr, ErrUpstream)
		}
	}
	records := make([]Record, 0, len(rows))
	for _, r := range rows {
		if m, ok := r.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records, nil
}

// jwget performs an HTTP GET request and unmarshals the JSON response body
// into the provided data structure. Transport failures, timeouts and non-200
// statuses all surface as upstream failures.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return fmt.Errorf("cannot build request for %v: %w", addr, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot http GET %v: %v: %w", addr, err, ErrUpstream)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v/%v: %v: %w", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status, ErrUpstream)
	}
	var buf bytes.Buffer
	if _, err = io.Copy(&buf, resp.Body); err != nil {
		return fmt.Errorf("reading response of %v: %v: %w", addr, err, ErrUpstream)
	}
	if err := json.Unmarshal(buf.Bytes(), data); err != nil {
		return fmt.Errorf("non JSON response of %v: %v: %w", addr, err, ErrUpstream)
	}
	return nil
}
