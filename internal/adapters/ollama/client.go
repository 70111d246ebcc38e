package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/fr0stylo/relgraph/internal/app/ports"
)

const defaultTemperature = 0.3

// Client implements ports.LanguageModel on top of an Ollama server.
// Concurrent generations are bounded by a weighted semaphore.
type Client struct {
	model   string
	reqLock *semaphore.Weighted
	tokens  metric.Int64Counter

	Client *api.Client
}

// Params configures a Client.
type Params struct {
	BaseURL               string
	Model                 string
	APIKey                string
	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

func NewClient(params Params) (*Client, error) {
	baseURL := strings.TrimSpace(params.BaseURL)
	if baseURL == "" {
		return nil, errors.New("ollama base url is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	if strings.TrimSpace(params.Model) == "" {
		return nil, errors.New("ollama model is required")
	}
	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 1
	}

	headers := map[string]string{}
	if params.APIKey != "" {
		headers["Authorization"] = "Bearer " + params.APIKey
	}
	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: headers,
			rt:      otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	tokens, _ := otel.Meter("github.com/fr0stylo/relgraph/internal/adapters/ollama").Int64Counter("relgraph.llm.tokens")

	return &Client{
		model:   params.Model,
		reqLock: semaphore.NewWeighted(params.MaxConcurrentRequests),
		tokens:  tokens,
		Client:  api.NewClient(u, httpClient),
	}, nil
}

// Generate runs one non-streaming completion capped at maxTokens new tokens.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	stream := false
	options := map[string]any{"temperature": defaultTemperature}
	if maxTokens > 0 {
		options["num_predict"] = maxTokens
	}
	req := &api.GenerateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: options,
	}

	var out strings.Builder
	var final api.GenerateResponse
	if err := c.Client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		if resp.Done {
			final = resp
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	c.tokens.Add(ctx, int64(final.Metrics.PromptEvalCount), metric.WithAttributes(attribute.String("direction", "input")))
	c.tokens.Add(ctx, int64(final.Metrics.EvalCount), metric.WithAttributes(attribute.String("direction", "output")))

	return out.String(), nil
}

var _ ports.LanguageModel = (*Client)(nil)
