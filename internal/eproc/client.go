// Package eproc defines the contract with the external court registry: the
// typed raw payload schema and the two queries the pipeline consumes. Retry
// and timeout policy belong to the caller; failures surface here as ordinary
// errors.
package eproc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"procsync/pkg/platform/sentinel"
)

// queryTimeFormat is the timestamp format the registry accepts on the
// changed-processes query.
const queryTimeFormat = "2006-01-02 15:04:05"

// ChangedQuery parameterizes the "changed processes in window" listing.
type ChangedQuery struct {
	Tier       string
	Start, End time.Time
	// MaxResults caps the result list; zero means registry default.
	MaxResults int
	// Page is an optional pagination cursor; zero means first page.
	Page int
}

// Client is the external registry. Implementations must return
// sentinel.ErrNotFound when the registry reports an unknown process number
// and wrap sentinel.ErrUnavailable for transport-level failures.
type Client interface {
	// ListChanged returns the numbers of processes that changed inside the
	// query window, in registry order.
	ListChanged(ctx context.Context, q ChangedQuery) ([]string, error)

	// FetchProcess returns the full raw payload for one process number.
	FetchProcess(ctx context.Context, number string) (*RawProcess, error)
}

// HTTPClient is the default JSON transport for the registry.
type HTTPClient struct {
	baseURL string
	key     string
	client  *http.Client
}

func NewHTTPClient(baseURL, key string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		key:     key,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) ListChanged(ctx context.Context, q ChangedQuery) ([]string, error) {
	params := url.Values{}
	params.Set("grau", q.Tier)
	params.Set("dataInicial", q.Start.Format(queryTimeFormat))
	params.Set("dataFinal", q.End.Format(queryTimeFormat))
	if q.MaxResults > 0 {
		params.Set("maxRegistros", strconv.Itoa(q.MaxResults))
	}
	if q.Page > 0 {
		params.Set("pagina", strconv.Itoa(q.Page))
	}

	body, err := c.get(ctx, "/processos/movimentados?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var numbers []string
	if err := json.Unmarshal(body, &numbers); err != nil {
		return nil, fmt.Errorf("decode changed-process list: %w", err)
	}
	return numbers, nil
}

func (c *HTTPClient) FetchProcess(ctx context.Context, number string) (*RawProcess, error) {
	body, err := c.get(ctx, "/processos/"+url.PathEscape(number))
	if err != nil {
		return nil, err
	}
	return DecodeRaw(body)
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, sentinel.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("registry returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read registry response: %w", err)
	}
	return body, nil
}
