package featurize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cognicore/docsense/pkg/docsense/ingest"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

// Kind identifies the bag-of-tokens featurizer in persisted models.
const Kind = "bag-of-tokens"

// Weighting selects how term counts are scaled.
type Weighting string

const (
	// TF uses raw term counts.
	TF Weighting = "tf"
	// TFIDF scales counts by smoothed inverse document frequency.
	TFIDF Weighting = "tfidf"
)

// Options configures a Builder.
type Options struct {
	WordNgrams  int       `json:"word_ngrams"` // longest word n-gram, >= 1
	CharNgrams  int       `json:"char_ngrams"` // character n-gram length, 0 disables
	MinDF       int       `json:"min_df"`      // minimum document frequency to keep a term
	Weighting   Weighting `json:"weighting"`
	Stopwords   []string  `json:"stopwords,omitempty"`
	StripMarkup bool      `json:"strip_markup"`
	DropNumbers bool      `json:"drop_numbers,omitempty"` // drop purely numeric tokens such as "404"
}

// DefaultOptions mirrors a conventional text featurizer: word unigrams and
// bigrams plus character trigrams, TF-IDF weighted.
func DefaultOptions() Options {
	return Options{
		WordNgrams:  2,
		CharNgrams:  3,
		MinDF:       1,
		Weighting:   TFIDF,
		StripMarkup: true,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.WordNgrams < 1 {
		return fmt.Errorf("%w: word_ngrams must be >= 1, got %d", internalerr.ErrInvalidConfig, o.WordNgrams)
	}
	if o.CharNgrams < 0 {
		return fmt.Errorf("%w: char_ngrams must be >= 0, got %d", internalerr.ErrInvalidConfig, o.CharNgrams)
	}
	if o.MinDF < 1 {
		return fmt.Errorf("%w: min_df must be >= 1, got %d", internalerr.ErrInvalidConfig, o.MinDF)
	}
	switch o.Weighting {
	case TF, TFIDF:
	default:
		return fmt.Errorf("%w: unknown weighting %q", internalerr.ErrInvalidConfig, o.Weighting)
	}
	return nil
}

// Builder fits a BagOfTokens vocabulary on training texts.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Build learns the vocabulary and document frequencies of texts. Terms are
// indexed in lexical order so the same corpus always yields the same layout.
func (b *Builder) Build(texts []string) (*BagOfTokens, error) {
	if err := b.opts.Validate(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no texts to featurize", internalerr.ErrInsufficientData)
	}

	f := &BagOfTokens{opts: b.opts}
	f.init()

	df := make(map[string]int)
	for _, text := range texts {
		for term := range f.terms(text) {
			df[term]++
		}
	}

	vocab := make([]string, 0, len(df))
	for term, n := range df {
		if n >= b.opts.MinDF {
			vocab = append(vocab, term)
		}
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("%w: corpus yields no features", internalerr.ErrInsufficientData)
	}
	sort.Strings(vocab)

	idf := make([]float64, len(vocab))
	docs := float64(len(texts))
	for i, term := range vocab {
		idf[i] = 1
		if b.opts.Weighting == TFIDF {
			idf[i] = math.Log((1+docs)/(1+float64(df[term]))) + 1
		}
	}

	f.setVocabulary(vocab, idf)
	return f, nil
}

// BagOfTokens maps text onto a fixed vocabulary of n-gram terms. It is
// read-only after Build and safe for concurrent use.
type BagOfTokens struct {
	opts      Options
	tokenizer *ingest.Tokenizer
	vocab     []string
	index     map[string]int
	idf       []float64
}

func (f *BagOfTokens) init() {
	f.tokenizer = ingest.NewTokenizer(f.opts.Stopwords)
	f.tokenizer.SetKeepNumbers(!f.opts.DropNumbers)
}

func (f *BagOfTokens) setVocabulary(vocab []string, idf []float64) {
	f.vocab = vocab
	f.idf = idf
	f.index = make(map[string]int, len(vocab))
	for i, term := range vocab {
		f.index[term] = i
	}
}

// Kind implements the persisted-component contract.
func (f *BagOfTokens) Kind() string { return Kind }

// Dim returns the vocabulary size.
func (f *BagOfTokens) Dim() int { return len(f.vocab) }

// Options returns the options the featurizer was built with.
func (f *BagOfTokens) Options() Options { return f.opts }

// Featurize returns the L2-normalized weighted term vector of text. Terms
// outside the vocabulary are ignored, so unseen text may yield an empty
// vector.
func (f *BagOfTokens) Featurize(text string) Vector {
	counts := f.terms(text)
	v := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for term := range counts {
		if idx, ok := f.index[term]; ok {
			v.Indices = append(v.Indices, idx)
		}
	}
	sort.Ints(v.Indices)
	for _, idx := range v.Indices {
		v.Values = append(v.Values, float64(counts[f.vocab[idx]])*f.idf[idx])
	}
	v.normalize()
	return v
}

// terms counts the word and character n-grams of text.
func (f *BagOfTokens) terms(text string) map[string]int {
	if f.opts.StripMarkup {
		text = ingest.StripMarkup(text)
	}
	tokens := f.tokenizer.Tokenize(text)

	counts := make(map[string]int)
	for n := 1; n <= f.opts.WordNgrams; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			counts["w:"+strings.Join(tokens[i:i+n], " ")]++
		}
	}

	if n := f.opts.CharNgrams; n > 0 {
		for _, tok := range tokens {
			runes := []rune("^" + tok + "$")
			for i := 0; i+n <= len(runes); i++ {
				counts["c:"+string(runes[i:i+n])]++
			}
		}
	}
	return counts
}

type bagState struct {
	Options Options   `json:"options"`
	Terms   []string  `json:"terms"`
	IDF     []float64 `json:"idf"`
}

// MarshalJSON encodes the fitted vocabulary.
func (f *BagOfTokens) MarshalJSON() ([]byte, error) {
	return json.Marshal(bagState{Options: f.opts, Terms: f.vocab, IDF: f.idf})
}

// UnmarshalJSON restores a vocabulary written by MarshalJSON.
func (f *BagOfTokens) UnmarshalJSON(data []byte) error {
	var st bagState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if err := st.Options.Validate(); err != nil {
		return err
	}
	if len(st.Terms) != len(st.IDF) {
		return fmt.Errorf("%w: %d terms but %d idf weights", internalerr.ErrInvalidInput, len(st.Terms), len(st.IDF))
	}
	f.opts = st.Options
	f.init()
	f.setVocabulary(st.Terms, st.IDF)
	return nil
}
