package classify

import "github.com/cognicore/docsense/pkg/docsense/corpus"

// LabelEncoder maps label strings to dense integer keys and back. Keys are
// assigned in first-seen order.
type LabelEncoder struct {
	labels []string
	keys   map[string]int
}

// NewLabelEncoder builds an encoder over labels, skipping duplicates.
func NewLabelEncoder(labels []string) *LabelEncoder {
	e := &LabelEncoder{keys: make(map[string]int, len(labels))}
	for _, l := range labels {
		if _, ok := e.keys[l]; ok {
			continue
		}
		e.keys[l] = len(e.labels)
		e.labels = append(e.labels, l)
	}
	return e
}

// FitLabelEncoder derives the encoder from the labels present in c.
func FitLabelEncoder(c corpus.Corpus) *LabelEncoder {
	labels := make([]string, len(c))
	for i, r := range c {
		labels[i] = r.Label
	}
	return NewLabelEncoder(labels)
}

// Encode returns the key for label.
func (e *LabelEncoder) Encode(label string) (int, bool) {
	k, ok := e.keys[label]
	return k, ok
}

// Decode returns the label for key.
func (e *LabelEncoder) Decode(key int) (string, bool) {
	if key < 0 || key >= len(e.labels) {
		return "", false
	}
	return e.labels[key], true
}

// Len returns the number of distinct labels.
func (e *LabelEncoder) Len() int { return len(e.labels) }

// Labels returns the labels in key order.
func (e *LabelEncoder) Labels() []string {
	out := make([]string, len(e.labels))
	copy(out, e.labels)
	return out
}
