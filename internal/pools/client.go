package pools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/unifai-network/unifai-toolkits/internal/record"
)

// DefaultEndpoint is the DefiLlama yields API.
const DefaultEndpoint = "https://yields.llama.fi"

// Client fetches the full pool list from the yields API.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a Client. An empty endpoint uses DefaultEndpoint and a
// non-positive timeout uses 30s.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
	}
}

type poolsResponse struct {
	Status string          `json:"status"`
	Data   []record.Record `json:"data"`
}

// Fetch implements collection.Fetcher.
func (c *Client) Fetch(ctx context.Context) ([]record.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/pools", nil)
	if err != nil {
		return nil, fmt.Errorf("building pools request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching pools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetching pools: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out poolsResponse
	if err := gojson.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding pools: %w", err)
	}
	if out.Data == nil {
		out.Data = []record.Record{}
	}
	return out.Data, nil
}
