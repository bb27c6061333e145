package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/climashield/internal/domain"
	"github.com/couchcryptid/climashield/internal/observability"
)

const (
	systemPrompt = "You are a climate risk analyst providing brief, actionable insights for urban planning."
	maxTokens    = 150
	temperature  = 0.7
)

// Options configures a Client.
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second; <= 0 disables limiting
}

// Client implements domain.Advisor using the OpenAI chat completions API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an advisory client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: newLimiter(opts.RateLimit),
		metrics: metrics,
		logger:  logger,
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Advise asks the model for a short commentary on the area's risk profile.
func (c *Client) Advise(ctx context.Context, in domain.AdvisoryInput) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.AdvisoryRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("rate limit: %w", err)
	}

	text, err := c.complete(ctx, buildPrompt(in))
	switch {
	case err != nil:
		c.metrics.AdvisoryRequests.WithLabelValues("error").Inc()
		return "", err
	case text == "":
		c.metrics.AdvisoryRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.AdvisoryRequests.WithLabelValues("success").Inc()
	}
	c.logger.Debug("advisory generated", "area", in.Area, "chars", len(text))
	return text, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.AdvisoryAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("openai API error: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("openai API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("openai API returned no choices")
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func buildPrompt(in domain.AdvisoryInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the climate risk data for %s and provide a brief, actionable insight (2-3 sentences max):\n\n", in.Area)
	fmt.Fprintf(&b, "Climate Risk Score: %s/10\n", score(in.Risk.ClimateRiskScore))
	fmt.Fprintf(&b, "Air Quality Score: %s/10\n", score(in.Risk.AirQuality))
	fmt.Fprintf(&b, "Construction Stability: %s/10\n", score(in.Risk.ConstructionStability))
	fmt.Fprintf(&b, "Water Management: %s/10\n\n", score(in.Risk.WaterManagement))
	fmt.Fprintf(&b, "Soil Type: %s\n", in.Soil.SoilType)
	fmt.Fprintf(&b, "Waterlogging Risk: %s/10\n", score(in.Soil.WaterloggingRisk))
	fmt.Fprintf(&b, "AQI Trend: %s\n", in.Trend.AQITrend)
	fmt.Fprintf(&b, "Rainfall Trend: %s\n\n", in.Trend.RainfallTrend)
	b.WriteString("Focus on the biggest risks and actionable recommendations.")
	return b.String()
}

func score(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// OpenAI API request and response types.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
