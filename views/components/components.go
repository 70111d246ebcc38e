package components

import (
	"encoding/json"
	"fmt"

	"github.com/fr0stylo/relgraph/internal/domain/relations"
)

// Region element ids the page and the streaming script agree on.
const (
	InputID         = "entityInput"
	ButtonID        = "queryBtn"
	SummaryRegionID = "summary-output"
	GraphRegionID   = "graph-container"
)

func networkJSON(network relations.Network) (string, error) {
	payload, err := json.Marshal(network)
	if err != nil {
		return "", fmt.Errorf("encode graph payload: %w", err)
	}
	return string(payload), nil
}
