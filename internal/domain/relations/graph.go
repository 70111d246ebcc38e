package relations

// Edge is a directed, labeled edge between two node names.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Graph is the node/edge model built from a list of triples. Nodes are
// unique; edges are kept one per triple in input order.
type Graph struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// BuildGraph iterates the triples once, adding both endpoints to the node
// set and appending one edge per triple. Nodes keep first-seen order.
func BuildGraph(triples []Triple) Graph {
	graph := Graph{
		Nodes: make([]string, 0, len(triples)*2),
		Edges: make([]Edge, 0, len(triples)),
	}
	seen := make(map[string]struct{}, len(triples)*2)
	addNode := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		graph.Nodes = append(graph.Nodes, name)
	}

	for _, triple := range triples {
		addNode(triple.Subject)
		addNode(triple.Object)
		graph.Edges = append(graph.Edges, Edge{From: triple.Subject, To: triple.Object, Label: triple.Label})
	}
	return graph
}

// HasNode reports whether name is part of the node set.
func (g Graph) HasNode(name string) bool {
	for _, node := range g.Nodes {
		if node == name {
			return true
		}
	}
	return false
}

func (g Graph) Empty() bool {
	return len(g.Edges) == 0
}
