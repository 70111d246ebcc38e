package audit

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fr0stylo/relgraph/internal/app/ports"
	"github.com/fr0stylo/relgraph/pkg/queryevents"
)

// Publisher forwards answered queries to a signed CloudEvents sink.
type Publisher struct {
	client queryevents.Client
}

func NewPublisher(endpoint, token, secret string) *Publisher {
	return &Publisher{client: queryevents.Client{
		Endpoint: endpoint,
		Token:    token,
		Secret:   secret,
		Source:   "relgraph/backend",
		HTTPClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}}
}

func (p *Publisher) PublishAnswered(ctx context.Context, event ports.QueryAnswered) error {
	return p.client.PublishAnswered(ctx, queryevents.Answered{
		Question:  event.Question,
		Keyword:   event.Keyword,
		Relations: event.Relations,
		Summary:   event.Summary,
		At:        event.At,
	})
}

var _ ports.AnswerPublisher = (*Publisher)(nil)
