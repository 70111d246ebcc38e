package relations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUndecodableBody means the response body is not JSON at all.
	ErrUndecodableBody = errors.New("response body is not valid json")
	// ErrMalformedResponse means the body is JSON but matches neither the
	// answer nor the failure shape.
	ErrMalformedResponse = errors.New("malformed backend response")
)

type ResultKind int

const (
	ResultAnswer ResultKind = iota + 1
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultAnswer:
		return "answer"
	case ResultFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is the decoded backend reply: either an answer carrying a summary
// and its relations, or a failure carrying the backend's message.
type Result struct {
	Kind      ResultKind
	Summary   string
	Relations []Triple
	Message   string
}

func Answer(summary string, relations []Triple) Result {
	if relations == nil {
		relations = []Triple{}
	}
	return Result{Kind: ResultAnswer, Summary: summary, Relations: relations}
}

func Failure(message string) Result {
	return Result{Kind: ResultFailure, Message: message}
}

func (r Result) Failed() bool {
	return r.Kind == ResultFailure
}

// MarshalJSON writes the backend wire shape.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Kind == ResultFailure {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: r.Message})
	}
	relations := r.Relations
	if relations == nil {
		relations = []Triple{}
	}
	return json.Marshal(struct {
		Edges   []Triple `json:"edges"`
		Summary string   `json:"summary"`
	}{Edges: relations, Summary: r.Summary})
}

// DecodeResult parses a backend body. A non-empty "error" string wins over
// everything else; otherwise "summary" must be a string and "edges", when
// present and not null, must be a list of three-string lists.
func DecodeResult(body []byte) (Result, error) {
	if !json.Valid(body) {
		return Result{}, ErrUndecodableBody
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Result{}, fmt.Errorf("%w: top level is not an object", ErrMalformedResponse)
	}

	if raw, ok := fields["error"]; ok && !isNull(raw) {
		var message string
		if err := json.Unmarshal(raw, &message); err != nil {
			return Result{}, fmt.Errorf("%w: error field is not a string", ErrMalformedResponse)
		}
		if message != "" {
			return Failure(message), nil
		}
	}

	raw, ok := fields["summary"]
	if !ok || isNull(raw) {
		return Result{}, fmt.Errorf("%w: summary field is missing", ErrMalformedResponse)
	}
	var summary string
	if err := json.Unmarshal(raw, &summary); err != nil {
		return Result{}, fmt.Errorf("%w: summary field is not a string", ErrMalformedResponse)
	}

	var relations []Triple
	if raw, ok := fields["edges"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &relations); err != nil {
			return Result{}, fmt.Errorf("%w: edges: %v", ErrMalformedResponse, err)
		}
	}
	return Answer(summary, relations), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
