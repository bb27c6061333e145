package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climashield/internal/observability"
)

const (
	testAPIKey        = "sk-test"
	testModel         = "gpt-3.5-turbo"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(Options{
		APIKey:  testAPIKey,
		Model:   testModel,
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func completion(text string) chatResponse {
	var resp chatResponse
	resp.Choices = append(resp.Choices, struct {
		Message chatMessage `json:"message"`
	}{Message: chatMessage{Role: "assistant", Content: text}})
	return resp
}

func TestClient_Advise_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testModel, req.Model)
		assert.Equal(t, maxTokens, req.MaxTokens)
		assert.InDelta(t, temperature, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, systemPrompt, req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Contains(t, req.Messages[1].Content, "Analyze the climate risk data for Koramangala")

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(completion("  Expand green cover.\n")))
	}))
	defer srv.Close()

	text, err := testClient(srv.URL).Advise(context.Background(), testInput("Koramangala", 6.1))
	require.NoError(t, err)
	assert.Equal(t, "Expand green cover.", text)
}

func TestClient_Advise_TrailingSlashBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(completion("ok")))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL + "/v1/").Advise(context.Background(), testInput("Hebbal", 5))
	require.NoError(t, err)
}

func TestClient_Advise_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Advise(context.Background(), testInput("Hebbal", 5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestClient_Advise_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down\n"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Advise(context.Background(), testInput("Hebbal", 5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502: upstream down")
}

func TestClient_Advise_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Advise(context.Background(), testInput("Hebbal", 5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClient_Advise_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Advise(context.Background(), testInput("Hebbal", 5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Advise_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(completion("late")))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).Advise(ctx, testInput("Hebbal", 5))
	require.Error(t, err)
}

func TestClient_RateLimitSpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(completion("ok")))
	}))
	defer srv.Close()

	c := NewClient(Options{
		APIKey:    testAPIKey,
		Model:     testModel,
		BaseURL:   srv.URL,
		Timeout:   5 * time.Second,
		RateLimit: 20,
	}, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	start := time.Now()
	for range 3 {
		_, err := c.Advise(context.Background(), testInput("Hebbal", 5))
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(testInput("Koramangala", 6.14))

	assert.Contains(t, prompt, "Climate Risk Score: 6.1/10")
	assert.Contains(t, prompt, "Air Quality Score: 4.0/10")
	assert.Contains(t, prompt, "Construction Stability: 6.0/10")
	assert.Contains(t, prompt, "Water Management: 5.0/10")
	assert.Contains(t, prompt, "Soil Type: Red Loamy Soil")
	assert.Contains(t, prompt, "Waterlogging Risk: 3.2/10")
	assert.Contains(t, prompt, "AQI Trend: worsening")
	assert.Contains(t, prompt, "Rainfall Trend: decreasing")
	assert.Contains(t, prompt, "Focus on the biggest risks and actionable recommendations.")
}
