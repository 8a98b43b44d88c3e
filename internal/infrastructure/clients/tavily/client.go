package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/pkg/config"
)

// Client implements the web search provider against the Tavily REST API.
type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// NewClient creates a new Tavily client.
func NewClient(cfg *config.TavilyConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("tavily api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 100
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		maxResults: maxResults,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResult struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type searchEnvelope struct {
	Results []searchResult `json:"results"`
}

// Search returns ranked documents for a query.
func (c *Client) Search(ctx context.Context, query string) ([]entities.EvidenceDocument, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  c.maxResults,
		SearchDepth: "advanced",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordSearchMetric(ctx, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("tavily request failed with status %d", resp.StatusCode)
		recordSearchMetric(ctx, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordSearchMetric(ctx, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	documents := make([]entities.EvidenceDocument, 0, len(envelope.Results))
	for _, result := range envelope.Results {
		documents = append(documents, entities.EvidenceDocument{
			URL:     result.URL,
			Title:   result.Title,
			Content: result.Content,
			Score:   result.Score,
		})
	}

	recordSearchMetric(ctx, resp.StatusCode, time.Since(start), nil)
	return documents, nil
}

type tavilyMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var tavilyMetricsInit = false
var tavilyMetricsState tavilyMetrics

func ensureTavilyMetrics() {
	if tavilyMetricsInit {
		return
	}
	meter := otel.Meter("github.com/veriscope/modelaudit/tavily")

	requestCount, err := meter.Int64Counter(
		"search.tavily.request.count",
		metric.WithDescription("Number of Tavily requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"search.tavily.request.duration",
		metric.WithDescription("Tavily request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"search.tavily.request.errors",
		metric.WithDescription("Number of Tavily request errors"),
	)
	if err != nil {
		return
	}

	tavilyMetricsState = tavilyMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	tavilyMetricsInit = true
}

func recordSearchMetric(ctx context.Context, statusCode int, duration time.Duration, err error) {
	ensureTavilyMetrics()
	if !tavilyMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("search.provider", "tavily"),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	tavilyMetricsState.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	tavilyMetricsState.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		tavilyMetricsState.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
