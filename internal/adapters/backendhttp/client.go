package backendhttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

// DefaultBaseURL is where the local backend listens unless configured.
const DefaultBaseURL = "http://127.0.0.1:5000"

const maxBodyBytes = 8 << 20

// ErrTransport means no usable response was obtained: the request failed
// or the body was not JSON.
var ErrTransport = errors.New("backend transport failure")

// Client calls the backend's `GET /query?q=` endpoint.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
}

// NewClient builds a client for baseURL. A zero timeout leaves the
// transport defaults in place.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/query"
	parsed.RawQuery = ""

	return &Client{
		endpoint: parsed,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// componentUnescaper undoes the escapes url.QueryEscape applies beyond
// encodeURIComponent's reserved set.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// QueryURL returns the request URL for a question, percent-encoded the
// way encodeURIComponent does it.
func (c *Client) QueryURL(question string) string {
	u := *c.endpoint
	u.RawQuery = "q=" + encodeURIComponent(question)
	return u.String()
}

func encodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// Query issues exactly one GET and decodes the reply. The HTTP status is
// not inspected; the body decides between answer and failure.
func (c *Client) Query(ctx context.Context, question string) (relations.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.QueryURL(question), nil)
	if err != nil {
		return relations.Result{}, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return relations.Result{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return relations.Result{}, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	result, err := relations.DecodeResult(body)
	if errors.Is(err, relations.ErrUndecodableBody) {
		return relations.Result{}, fmt.Errorf("%w: status=%s: %w", ErrTransport, resp.Status, err)
	}
	if err != nil {
		return relations.Result{}, err
	}
	return result, nil
}
