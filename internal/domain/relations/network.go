package relations

// Style is the fixed visual configuration handed to the graph
// visualization component.
type Style struct {
	NodeShape          string
	NodeBackground     string
	NodeBorder         string
	NodeFontColor      string
	EdgeColor          string
	EdgeFontColor      string
	EdgeSmoothing      string
	Arrows             string
	StabilizationSteps int
	ImprovedLayout     bool
}

func DefaultStyle() Style {
	return Style{
		NodeShape:          "box",
		NodeBackground:     "#D2E5FF",
		NodeBorder:         "#2B7CE9",
		NodeFontColor:      "#343434",
		EdgeColor:          "#848484",
		EdgeFontColor:      "#555",
		EdgeSmoothing:      "dynamic",
		Arrows:             "to",
		StabilizationSteps: 150,
		ImprovedLayout:     true,
	}
}

type NetworkNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type NetworkFont struct {
	Align       string `json:"align,omitempty"`
	Color       string `json:"color,omitempty"`
	StrokeWidth *int   `json:"strokeWidth,omitempty"`
}

type NetworkEdge struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Label  string      `json:"label"`
	Arrows string      `json:"arrows"`
	Font   NetworkFont `json:"font"`
}

type NetworkData struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
}

type NetworkColor struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

type NetworkNodeOptions struct {
	Shape string       `json:"shape"`
	Color NetworkColor `json:"color"`
	Font  NetworkFont  `json:"font"`
}

type NetworkSmooth struct {
	Type string `json:"type"`
}

type NetworkEdgeOptions struct {
	Color  string        `json:"color"`
	Smooth NetworkSmooth `json:"smooth"`
}

type NetworkStabilization struct {
	Iterations int `json:"iterations"`
}

type NetworkPhysics struct {
	Stabilization NetworkStabilization `json:"stabilization"`
}

type NetworkLayout struct {
	ImprovedLayout bool `json:"improvedLayout"`
}

type NetworkOptions struct {
	Nodes   NetworkNodeOptions `json:"nodes"`
	Edges   NetworkEdgeOptions `json:"edges"`
	Physics NetworkPhysics     `json:"physics"`
	Layout  NetworkLayout      `json:"layout"`
}

// Network is everything the browser needs to call
// `new vis.Network(container, data, options)`.
type Network struct {
	Data    NetworkData    `json:"data"`
	Options NetworkOptions `json:"options"`
}

func BuildNetwork(graph Graph, style Style) Network {
	noStroke := 0
	network := Network{
		Data: NetworkData{
			Nodes: make([]NetworkNode, 0, len(graph.Nodes)),
			Edges: make([]NetworkEdge, 0, len(graph.Edges)),
		},
		Options: NetworkOptions{
			Nodes: NetworkNodeOptions{
				Shape: style.NodeShape,
				Color: NetworkColor{Background: style.NodeBackground, Border: style.NodeBorder},
				Font:  NetworkFont{Color: style.NodeFontColor},
			},
			Edges: NetworkEdgeOptions{
				Color:  style.EdgeColor,
				Smooth: NetworkSmooth{Type: style.EdgeSmoothing},
			},
			Physics: NetworkPhysics{Stabilization: NetworkStabilization{Iterations: style.StabilizationSteps}},
			Layout:  NetworkLayout{ImprovedLayout: style.ImprovedLayout},
		},
	}
	for _, node := range graph.Nodes {
		network.Data.Nodes = append(network.Data.Nodes, NetworkNode{ID: node, Label: node})
	}
	for _, edge := range graph.Edges {
		network.Data.Edges = append(network.Data.Edges, NetworkEdge{
			From:   edge.From,
			To:     edge.To,
			Label:  edge.Label,
			Arrows: style.Arrows,
			Font:   NetworkFont{Align: "middle", Color: style.EdgeFontColor, StrokeWidth: &noStroke},
		})
	}
	return network
}
