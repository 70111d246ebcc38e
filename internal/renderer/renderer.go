package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var fragmentMetrics = newFragmentMetrics()

type fragmentCounters struct {
	fragments metric.Int64Counter
	bytes     metric.Int64Counter
}

func newFragmentMetrics() fragmentCounters {
	meter := otel.Meter("github.com/fr0stylo/relgraph/internal/renderer")
	fragments, _ := meter.Int64Counter("relgraph.renderer.fragments")
	size, _ := meter.Int64Counter("relgraph.renderer.fragment_bytes", metric.WithUnit("By"))
	return fragmentCounters{fragments: fragments, bytes: size}
}

// Renderer implements Echo's render interface for templ components.
type Renderer struct{}

// Render writes a templ component to the response writer.
func (t *Renderer) Render(w io.Writer, _ string, data interface{}, c echo.Context) error {
	tc, ok := data.(templ.Component)
	if !ok {
		return fmt.Errorf("invalid type %T", data)
	}

	return tc.Render(c.Request().Context(), w)
}

// RenderComponent renders a component into a byte slice.
func RenderComponent(ctx context.Context, component templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Fragment renders a component as a single line suitable for one SSE data
// field. Newlines become character references so preformatted text keeps
// its line breaks.
func Fragment(ctx context.Context, component templ.Component) (string, error) {
	body, err := RenderComponent(ctx, component)
	if err != nil {
		return "", err
	}
	line := strings.ReplaceAll(string(body), "\r", "")
	line = strings.ReplaceAll(line, "\n", "&#10;")
	fragmentMetrics.fragments.Add(ctx, 1)
	fragmentMetrics.bytes.Add(ctx, int64(len(line)))
	return line, nil
}
