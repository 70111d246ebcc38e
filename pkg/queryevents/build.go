package queryevents

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	ceevent "github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"
)

const defaultSource = "relgraph/backend"

// BuildEventBody renders answered as a structured-mode CloudEvent.
func BuildEventBody(source string, answered Answered) ([]byte, error) {
	keyword := strings.TrimSpace(answered.Keyword)
	if keyword == "" {
		return nil, fmt.Errorf("keyword is required")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = defaultSource
	}
	at := answered.At
	if at.IsZero() {
		at = time.Now()
	}

	e := ceevent.New()
	e.SetID(uuid.NewString())
	e.SetType(AnsweredType)
	e.SetSource(source)
	e.SetSubject("keyword/" + keyword)
	e.SetTime(at.UTC())
	if err := e.SetData(ceevent.ApplicationJSON, answered); err != nil {
		return nil, fmt.Errorf("set event data: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cloud event: %w", err)
	}
	return json.Marshal(e)
}
