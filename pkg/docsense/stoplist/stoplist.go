// Package stoplist suggests stopwords for the featurizer from a labeled
// corpus: tokens that appear in many records and are spread evenly across
// labels carry no signal for classification.
package stoplist

import (
	"math"
	"sort"

	"github.com/cognicore/docsense/pkg/docsense/corpus"
	"github.com/cognicore/docsense/pkg/docsense/ingest"
)

// Manager tracks the current stoplist and why each entry is on it.
type Manager struct {
	stops map[string]Reason
}

// Reason explains why a token is a stopword
type Reason struct {
	HighDF       bool    // high document frequency
	HighEntropy  bool    // uniform distribution across labels
	DFPercent    float64 // share of records containing the token
	IDF          float64 // inverse document frequency
	LabelEntropy float64 // normalized label entropy in [0,1]
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]Reason, len(initialStops))
	for _, s := range initialStops {
		stops[s] = Reason{}
	}
	return &Manager{stops: stops}
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// Add adds a token to the stoplist with a reason
func (m *Manager) Add(token string, reason Reason) {
	m.stops[token] = reason
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, token)
}

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Stats holds per-token corpus statistics for candidate evaluation
type Stats struct {
	Token        string
	DF           int
	DFPercent    float64
	IDF          float64
	LabelEntropy float64
}

// ComputeStats tokenizes every record once and measures, per token, how many
// records contain it and how evenly those records spread over the corpus
// labels. Entropy is normalized by the log of the label count, so 1 means a
// perfectly even spread. Results are sorted by token.
func ComputeStats(c corpus.Corpus, tok *ingest.Tokenizer) []Stats {
	if len(c) == 0 {
		return nil
	}
	if tok == nil {
		tok = ingest.NewTokenizer(nil)
	}

	labels := c.Labels()
	labelIdx := make(map[string]int, len(labels))
	for i, lc := range labels {
		labelIdx[lc.Label] = i
	}

	perLabel := make(map[string][]int)
	for _, r := range c {
		seen := make(map[string]struct{})
		for _, t := range tok.Tokenize(ingest.StripMarkup(r.Text)) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			counts := perLabel[t]
			if counts == nil {
				counts = make([]int, len(labels))
				perLabel[t] = counts
			}
			counts[labelIdx[r.Label]]++
		}
	}

	total := float64(len(c))
	norm := 0.0
	if len(labels) > 1 {
		norm = math.Log(float64(len(labels)))
	}

	stats := make([]Stats, 0, len(perLabel))
	for token, counts := range perLabel {
		df := 0
		for _, n := range counts {
			df += n
		}
		var h float64
		if norm > 0 {
			for _, n := range counts {
				if n == 0 {
					continue
				}
				p := float64(n) / float64(df)
				h -= p * math.Log(p)
			}
			h /= norm
		}
		stats = append(stats, Stats{
			Token:        token,
			DF:           df,
			DFPercent:    100 * float64(df) / total,
			IDF:          math.Log(total / float64(df)),
			LabelEntropy: h,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Token < stats[j].Token })
	return stats
}

// Candidate represents a candidate stopword
type Candidate struct {
	Token  string
	Reason Reason
	Score  float64 // confidence score
}

// SuggestCandidates suggests tokens that should be stopwords, highest score
// first. Tokens already on the stoplist are skipped.
func (m *Manager) SuggestCandidates(stats []Stats, thresholds Thresholds) []Candidate {
	var candidates []Candidate

	for _, s := range stats {
		if m.IsStop(s.Token) {
			continue // already a stopword
		}
		if s.DF < thresholds.MinDF {
			continue
		}

		reason := Reason{
			HighDF:       s.DFPercent >= thresholds.DFPercent,
			HighEntropy:  s.LabelEntropy >= thresholds.LabelEntropy,
			DFPercent:    s.DFPercent,
			IDF:          s.IDF,
			LabelEntropy: s.LabelEntropy,
		}
		if !reason.HighDF || !reason.HighEntropy {
			continue
		}

		candidates = append(candidates, Candidate{
			Token:  s.Token,
			Reason: reason,
			Score:  (s.DFPercent/100.0 + s.LabelEntropy) / 2.0,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Token < candidates[j].Token
	})
	return candidates
}

// Apply adds every candidate to the stoplist.
func (m *Manager) Apply(candidates []Candidate) {
	for _, c := range candidates {
		m.Add(c.Token, c.Reason)
	}
}

// Thresholds defines criteria for stopword identification
type Thresholds struct {
	DFPercent    float64 // e.g. 30: appears in 30% of records
	LabelEntropy float64 // e.g. 0.8: nearly uniform across labels
	MinDF        int     // ignore tokens seen in fewer records
}

// DefaultThresholds returns the thresholds used by the CLI.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DFPercent:    30.0,
		LabelEntropy: 0.8,
		MinDF:        2,
	}
}
