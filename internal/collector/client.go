package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"agriprice/internal/model"
)

// APIClient implements Fetcher against the prices HTTP API.
// Each call is a single request with no retry.
type APIClient struct {
	BaseURL string
	Client  *http.Client
}

// NewAPIClient creates a client with optional proxy support.
func NewAPIClient(baseURL, proxyURL string, timeout time.Duration) *APIClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *APIClient) Name() string { return "api:" + c.BaseURL }

func (c *APIClient) Commodities(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, "/api/commodities", nil, nil, &names); err != nil {
		return nil, fmt.Errorf("fetch commodities: %w", err)
	}
	return names, nil
}

func (c *APIClient) Stats(ctx context.Context, commodity string) (*model.Stats, error) {
	var stats model.Stats
	q := url.Values{"commodity": {commodity}}
	if err := c.do(ctx, http.MethodGet, "/api/stats", q, nil, &stats); err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	return &stats, nil
}

func (c *APIClient) History(ctx context.Context, commodity string) (*model.PriceHistory, error) {
	var hist model.PriceHistory
	q := url.Values{"commodity": {commodity}}
	if err := c.do(ctx, http.MethodGet, "/api/data", q, nil, &hist); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	if len(hist.Dates) != len(hist.Prices) {
		return nil, fmt.Errorf("fetch history: %d dates but %d prices", len(hist.Dates), len(hist.Prices))
	}
	return &hist, nil
}

func (c *APIClient) Predict(ctx context.Context, req model.PredictionRequest) (*model.PredictionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal prediction request: %w", err)
	}
	var pred model.PredictionResponse
	if err := c.do(ctx, http.MethodPost, "/api/predict", nil, body, &pred); err != nil {
		return nil, fmt.Errorf("fetch prediction: %w", err)
	}
	if len(pred.Dates) != len(pred.Predictions) {
		return nil, fmt.Errorf("fetch prediction: %d dates but %d predictions", len(pred.Dates), len(pred.Predictions))
	}
	return &pred, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
