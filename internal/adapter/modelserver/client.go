// Package modelserver is a Classifier backed by a served model over HTTP.
package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flight-delay-dashboard/internal/domain"
	"github.com/couchcryptid/flight-delay-dashboard/internal/observability"
)

// Client implements domain.Classifier against a predict endpoint that takes
// {"instances": [...]} and answers {"predictions": [...]}.
type Client struct {
	endpoint   string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a served-model client.
func NewClient(endpoint string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Name identifies the classifier in prediction outcomes.
func (c *Client) Name() string {
	return "modelserver:" + c.endpoint
}

// Predict sends all records in one request and returns one output per record.
func (c *Client) Predict(ctx context.Context, records []domain.FeatureRecord) ([]float64, error) {
	start := time.Now()
	out, err := c.doRequest(ctx, records)
	c.metrics.ModelAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ModelRequests.WithLabelValues("error").Inc()
		c.logger.Debug("model server request failed", "endpoint", c.endpoint, "error", err)
		return nil, err
	}
	c.metrics.ModelRequests.WithLabelValues("success").Inc()
	return out, nil
}

func (c *Client) doRequest(ctx context.Context, records []domain.FeatureRecord) ([]float64, error) {
	body, err := json.Marshal(request{Instances: records})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model server request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("model server error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var modelResp response
	if err := json.NewDecoder(resp.Body).Decode(&modelResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(modelResp.Predictions) != len(records) {
		return nil, fmt.Errorf("model server returned %d predictions for %d instances", len(modelResp.Predictions), len(records))
	}
	return modelResp.Predictions, nil
}

// Model server wire types.

type request struct {
	Instances []domain.FeatureRecord `json:"instances"`
}

type response struct {
	Predictions []float64 `json:"predictions"`
}
