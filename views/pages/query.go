package pages

// VisNetworkScript is the graph-visualization component the page loads.
const VisNetworkScript = "https://unpkg.com/vis-network/standalone/umd/vis-network.min.js"

// QueryPageData configures the query page.
type QueryPageData struct {
	Title       string
	StreamPath  string
	InitialText string
}

func (d QueryPageData) title() string {
	if d.Title == "" {
		return "Relation Explorer"
	}
	return d.Title
}

func (d QueryPageData) streamPath() string {
	if d.StreamPath == "" {
		return "/query/stream"
	}
	return d.StreamPath
}
