package components

import (
	"bytes"
	"context"
	"html"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

func render(t *testing.T, component templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render error: %v", err)
	}
	return buf.String()
}

func TestSummaryTextEscapesMarkup(t *testing.T) {
	t.Parallel()

	got := render(t, SummaryText(`Error: <script>alert("x")</script>`))
	if strings.Contains(got, "<script>") {
		t.Fatalf("summary text was not escaped: %s", got)
	}
	if !strings.HasPrefix(got, "<pre>") || !strings.HasSuffix(got, "</pre>") {
		t.Fatalf("expected preformatted block, got %s", got)
	}
}

func TestPlaceholdersUsePlaceholderClass(t *testing.T) {
	t.Parallel()

	if got := render(t, SummaryPlaceholder("loading")); got != `<pre class="placeholder-text">loading</pre>` {
		t.Fatalf("unexpected summary placeholder %s", got)
	}
	if got := render(t, GraphPlaceholder("No graph to display.")); got != `<span class="placeholder-text">No graph to display.</span>` {
		t.Fatalf("unexpected graph placeholder %s", got)
	}
}

func TestGraphCanvasEmbedsNetworkPayload(t *testing.T) {
	t.Parallel()

	graph := relations.BuildGraph([]relations.Triple{{Subject: `A "quoted"`, Object: "B", Label: "likes"}})
	got := render(t, GraphCanvas(relations.BuildNetwork(graph, relations.DefaultStyle())))

	if !strings.Contains(got, `data-nodes="2"`) || !strings.Contains(got, `data-edges="1"`) {
		t.Fatalf("expected node/edge counts, got %s", got)
	}
	start := strings.Index(got, `data-network="`) + len(`data-network="`)
	end := strings.LastIndex(got, `"></div>`)
	payload := html.UnescapeString(got[start:end])
	if !strings.Contains(payload, `"shape":"box"`) || !strings.Contains(payload, `A \"quoted\"`) {
		t.Fatalf("unexpected payload %s", payload)
	}
}
