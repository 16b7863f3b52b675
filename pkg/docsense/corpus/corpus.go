// Package corpus holds the labeled training records and their persisted
// two-column table form (header "Text,Label").
package corpus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

// Record is a single labeled text.
type Record struct {
	Text  string
	Label string
}

// Validate checks the record invariants: non-blank text and label.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return errors.New("record text is required")
	}
	if strings.TrimSpace(r.Label) == "" {
		return errors.New("record label is required")
	}
	return nil
}

// Corpus is an ordered set of records. Order is traversal order.
type Corpus []Record

// LabelCount is the number of records carrying a label.
type LabelCount struct {
	Label string
	Count int
}

// Labels returns the label distribution in first-seen order.
func (c Corpus) Labels() []LabelCount {
	index := make(map[string]int)
	var out []LabelCount
	for _, r := range c {
		i, ok := index[r.Label]
		if !ok {
			i = len(out)
			index[r.Label] = i
			out = append(out, LabelCount{Label: r.Label})
		}
		out[i].Count++
	}
	return out
}

// Texts returns the record texts in order.
func (c Corpus) Texts() []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.Text
	}
	return out
}

// Validate reports the first record violating the record invariants,
// wrapped in internalerr.ErrInvalidRecord.
func (c Corpus) Validate() error {
	for i, r := range c {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: record %d: %v", internalerr.ErrInvalidRecord, i, err)
		}
	}
	return nil
}
