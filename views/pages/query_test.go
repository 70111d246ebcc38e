package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestQueryPageExposesRegions(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := QueryPage(QueryPageData{}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render error: %v", err)
	}
	page := buf.String()
	for _, fragment := range []string{
		`id="entityInput"`,
		`id="queryBtn"`,
		`id="summary-output"`,
		`id="graph-container"`,
		`/public/app.js`,
		`relgraph.init(`,
		VisNetworkScript,
	} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("page missing %q", fragment)
		}
	}
}

func TestQueryPageEscapesInitialText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := QueryPage(QueryPageData{InitialText: `"><script>x</script>`}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render error: %v", err)
	}
	if strings.Contains(buf.String(), `<script>x</script>`) {
		t.Fatal("initial text was not escaped")
	}
}
