package relations

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Triple is one (subject, object, label) fact. On the wire it is a
// three-element array of strings.
type Triple struct {
	Subject string
	Object  string
	Label   string
}

func (t Triple) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{t.Subject, t.Object, t.Label})
}

func (t *Triple) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("relation triple: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("relation triple: expected 3 elements, got %d", len(parts))
	}
	t.Subject, t.Object, t.Label = parts[0], parts[1], parts[2]
	return nil
}

func (t Triple) String() string {
	return fmt.Sprintf("%s -[%s]-> %s", t.Subject, t.Label, t.Object)
}

// NormalizeTriple trims every field and rejects triples with an empty part.
func NormalizeTriple(subject, object, label string) (Triple, bool) {
	subject = strings.TrimSpace(subject)
	object = strings.TrimSpace(object)
	label = strings.TrimSpace(label)
	if subject == "" || object == "" || label == "" {
		return Triple{}, false
	}
	return Triple{Subject: subject, Object: object, Label: label}, true
}

// Dedupe returns the unique triples in first-seen order.
func Dedupe(triples []Triple) []Triple {
	seen := make(map[Triple]struct{}, len(triples))
	out := make([]Triple, 0, len(triples))
	for _, triple := range triples {
		if _, ok := seen[triple]; ok {
			continue
		}
		seen[triple] = struct{}{}
		out = append(out, triple)
	}
	return out
}
