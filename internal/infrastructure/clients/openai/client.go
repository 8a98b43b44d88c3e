package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/providers"
	"github.com/veriscope/modelaudit/pkg/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the judge and narrative provider against the OpenAI API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type judgementPayload struct {
	Verdict   string              `json:"verdict"`
	Rationale string              `json:"rationale"`
	Evidences []entities.Evidence `json:"evidences"`
}

// JudgeBatch sends one batched request covering every criterion of a search
// group and returns judgements keyed by criterion id. Entries the judge
// omitted or that fail validation are simply absent from the result.
func (c *Client) JudgeBatch(ctx context.Context, batch providers.JudgeBatch) (map[string]entities.Judgement, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: judgeSystemPrompt},
			{Role: "user", Content: buildJudgePrompt(batch)},
		},
		Temperature:    0.3,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var raw map[string]judgementPayload
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse judge response: %w", err)
	}

	judgements := make(map[string]entities.Judgement, len(raw))
	for id, payload := range raw {
		verdict, ok := parseVerdict(payload.Verdict)
		if !ok {
			continue
		}
		judgements[id] = entities.Judgement{
			Verdict:   verdict,
			Rationale: payload.Rationale,
			Evidences: payload.Evidences,
		}
	}
	return judgements, nil
}

// SummarizeCategory produces a short narrative for one category's judgements.
func (c *Client) SummarizeCategory(ctx context.Context, category string, judged []providers.JudgedCriterion, modelName string) (string, error) {
	return c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildCategorySummaryPrompt(category, judged, modelName)},
		},
		Temperature: 0.3,
		MaxTokens:   150,
	})
}

// SummarizeOverall produces the run-level narrative.
func (c *Client) SummarizeOverall(ctx context.Context, categorySummaries map[string]string, stats providers.VerdictStats, modelName string) (string, error) {
	return c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: buildOverallSummaryPrompt(categorySummaries, stats, modelName)},
		},
		Temperature: 0.3,
		MaxTokens:   250,
	})
}

func (c *Client) complete(ctx context.Context, payload chatRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			recordOpenAIMetric(ctx, c.model, 0, 0, err)
			return "", err
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordOpenAIMetric(ctx, c.model, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("openai request failed with status %d", resp.StatusCode)
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	var envelope chatEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		err := errors.New("openai response missing content")
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return envelope.Choices[0].Message.Content, nil
}

func parseVerdict(raw string) (entities.Verdict, bool) {
	switch entities.Verdict(strings.TrimSpace(strings.ToLower(raw))) {
	case entities.VerdictCompliant:
		return entities.VerdictCompliant, true
	case entities.VerdictNonCompliant:
		return entities.VerdictNonCompliant, true
	case entities.VerdictNeedsImprovement:
		return entities.VerdictNeedsImprovement, true
	case entities.VerdictUnknown:
		return entities.VerdictUnknown, true
	default:
		return "", false
	}
}

// stripCodeFences removes Markdown code fences some models wrap JSON in.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}

	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}
	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

type tokenBucket struct {
	tokens chan struct{}
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type openAIMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var openaiMetricsInit = false
var openaiMetrics openAIMetrics

func ensureOpenAIMetrics() {
	if openaiMetricsInit {
		return
	}
	meter := otel.Meter("github.com/veriscope/modelaudit/openai")

	requestCount, err := meter.Int64Counter(
		"ai.openai.request.count",
		metric.WithDescription("Number of OpenAI requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.openai.request.duration",
		metric.WithDescription("OpenAI request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.openai.request.errors",
		metric.WithDescription("Number of OpenAI request errors"),
	)
	if err != nil {
		return
	}

	openaiMetrics = openAIMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
	}
	openaiMetricsInit = true
}

func recordOpenAIMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureOpenAIMetrics()
	if !openaiMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	openaiMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	openaiMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		openaiMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
