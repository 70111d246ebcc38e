package terminal

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/fr0stylo/relgraph/internal/app/ports"
	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

// Format selects how the graph region prints a graph.
type Format string

const (
	FormatText Format = "text"
	FormatDOT  Format = "dot"
)

// ParseFormat accepts "text" and "dot".
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatText, "":
		return FormatText, nil
	case FormatDOT:
		return FormatDOT, nil
	default:
		return "", fmt.Errorf("unknown format %q", value)
	}
}

// Regions prints pipeline updates to a terminal. Placeholders go to the
// status writer so the output writer only carries the answer.
type Regions struct {
	mu      sync.Mutex
	out     io.Writer
	status  io.Writer
	format  Format
	Alerted bool
}

func NewRegions(out, status io.Writer, format Format) *Regions {
	return &Regions{out: out, status: status, format: format}
}

func (r *Regions) Summary() ports.SummaryRegion { return summaryRegion{r} }
func (r *Regions) Graph() ports.GraphRegion     { return graphRegion{r} }
func (r *Regions) Notifier() ports.Notifier     { return notifier{r} }

func (r *Regions) write(w io.Writer, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(w, text)
	return err
}

type summaryRegion struct{ r *Regions }

func (s summaryRegion) ShowPlaceholder(_ context.Context, text string) error {
	return s.r.write(s.r.status, text+"\n")
}

func (s summaryRegion) ShowText(_ context.Context, text string) error {
	return s.r.write(s.r.out, text+"\n")
}

type graphRegion struct{ r *Regions }

func (g graphRegion) ShowPlaceholder(_ context.Context, text string) error {
	return g.r.write(g.r.status, text+"\n")
}

func (g graphRegion) Render(_ context.Context, graph relations.Graph, style relations.Style) error {
	if g.r.format == FormatDOT {
		return g.r.write(g.r.out, DOT(graph, style))
	}
	return g.r.write(g.r.out, Adjacency(graph))
}

type notifier struct{ r *Regions }

func (n notifier) Alert(_ context.Context, message string) error {
	n.r.mu.Lock()
	n.r.Alerted = true
	n.r.mu.Unlock()
	return n.r.write(n.r.status, message+"\n")
}

// Adjacency lists each node followed by its outgoing labelled edges, in
// node order.
func Adjacency(graph relations.Graph) string {
	outgoing := make(map[string][]relations.Edge, len(graph.Nodes))
	for _, edge := range graph.Edges {
		outgoing[edge.From] = append(outgoing[edge.From], edge)
	}

	var b strings.Builder
	b.WriteString("\nRelations:\n")
	for _, node := range graph.Nodes {
		b.WriteString(node + "\n")
		for _, edge := range outgoing[node] {
			b.WriteString("  --[" + edge.Label + "]--> " + edge.To + "\n")
		}
	}
	return b.String()
}

// DOT renders the graph as a Graphviz digraph using the style's colours.
func DOT(graph relations.Graph, style relations.Style) string {
	var b strings.Builder
	b.WriteString("digraph relations {\n")
	fmt.Fprintf(&b, "  node [shape=%s, style=filled, fillcolor=%s, color=%s, fontcolor=%s];\n",
		style.NodeShape, dotColor(style.NodeBackground), dotColor(style.NodeBorder), dotColor(style.NodeFontColor))
	fmt.Fprintf(&b, "  edge [color=%s, fontcolor=%s];\n", dotColor(style.EdgeColor), dotColor(style.EdgeFontColor))
	for _, node := range graph.Nodes {
		fmt.Fprintf(&b, "  %s;\n", strconv.Quote(node))
	}
	for _, edge := range graph.Edges {
		fmt.Fprintf(&b, "  %s -> %s [label=%s];\n", strconv.Quote(edge.From), strconv.Quote(edge.To), strconv.Quote(edge.Label))
	}
	b.WriteString("}\n")
	return b.String()
}

// dotColor quotes a CSS hex colour, widening #rgb to the #rrggbb form
// Graphviz requires.
func dotColor(css string) string {
	if len(css) == 4 && css[0] == '#' {
		css = string([]byte{'#', css[1], css[1], css[2], css[2], css[3], css[3]})
	}
	return strconv.Quote(css)
}
