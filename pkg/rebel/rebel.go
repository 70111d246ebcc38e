// Package rebel prepares raw transcripts for relation extraction and parses
// the linearized triplets REBEL-style seq2seq models emit.
package rebel

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// MinSentenceLength is the shortest sentence, in characters, worth sending
// to the extractor.
const MinSentenceLength = 20

const (
	tagTriplet = "<triplet>"
	tagSubj    = "<subj>"
	tagObj     = "<obj>"
)

var specialTokens = strings.NewReplacer("<s>", " ", "</s>", " ", "<pad>", " ")

var tagSpacer = strings.NewReplacer(tagTriplet, " "+tagTriplet+" ", tagSubj, " "+tagSubj+" ", tagObj, " "+tagObj+" ")

// Triplet is one extracted (subject, object, relation) fact.
type Triplet struct {
	Subject  string
	Object   string
	Relation string
}

// CleanLines copies every non-empty line of r to w, keeping only the text
// before the first '|' (annotated corpora carry labels after it).
func CleanLines(r io.Reader, w io.Writer) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	bw := bufio.NewWriter(w)

	written := 0
	for scanner.Scan() {
		sentence, _, _ := strings.Cut(scanner.Text(), "|")
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if _, err := bw.WriteString(sentence + "\n"); err != nil {
			return written, err
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("read lines: %w", err)
	}
	return written, bw.Flush()
}

// SplitSentences splits text on '.', folds newlines into spaces and drops
// fragments shorter than MinSentenceLength.
func SplitSentences(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ".") {
		sentence := strings.TrimSpace(strings.ReplaceAll(part, "\n", " "))
		if utf8.RuneCountInString(sentence) < MinSentenceLength {
			continue
		}
		out = append(out, sentence)
	}
	return out
}

// ParseTriplets decodes "<triplet> head <subj> tail <obj> relation" output.
// One head may carry several "<subj> tail <obj> relation" pairs. Triplets
// with an empty part are skipped.
func ParseTriplets(text string) []Triplet {
	text = tagSpacer.Replace(specialTokens.Replace(text))

	var (
		out                       []Triplet
		subject, object, relation []string
		current                   string
	)
	flush := func() {
		t := Triplet{
			Subject:  strings.Join(subject, " "),
			Object:   strings.Join(object, " "),
			Relation: strings.Join(relation, " "),
		}
		if t.Subject != "" && t.Object != "" && t.Relation != "" {
			out = append(out, t)
		}
	}

	for _, token := range strings.Fields(text) {
		switch token {
		case tagTriplet:
			if len(relation) > 0 {
				flush()
			}
			current = tagTriplet
			subject, object, relation = nil, nil, nil
		case tagSubj:
			if len(relation) > 0 {
				flush()
			}
			current = tagSubj
			object, relation = nil, nil
		case tagObj:
			current = tagObj
			relation = nil
		default:
			switch current {
			case tagTriplet:
				subject = append(subject, token)
			case tagSubj:
				object = append(object, token)
			case tagObj:
				relation = append(relation, token)
			}
		}
	}
	flush()
	return out
}

// Dedupe returns the unique triplets in first-seen order.
func Dedupe(triplets []Triplet) []Triplet {
	seen := make(map[Triplet]struct{}, len(triplets))
	out := make([]Triplet, 0, len(triplets))
	for _, t := range triplets {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
