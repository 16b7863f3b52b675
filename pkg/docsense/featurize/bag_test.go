package featurize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

var texts = []string{
	"Pass your API key in the header",
	"Use limit and offset to page through results",
	"Returns 429 when the rate limit is exceeded",
}

func TestBuildVocabularyIsSortedAndDeterministic(t *testing.T) {
	a, err := NewBuilder(DefaultOptions()).Build(texts)
	require.NoError(t, err)
	b, err := NewBuilder(DefaultOptions()).Build(texts)
	require.NoError(t, err)

	assert.Equal(t, a.vocab, b.vocab)
	assert.True(t, a.Dim() > 0)
	for i := 1; i < len(a.vocab); i++ {
		assert.Less(t, a.vocab[i-1], a.vocab[i])
	}
	assert.Contains(t, a.vocab, "w:api key")
	assert.Contains(t, a.vocab, "w:429")
	assert.Contains(t, a.vocab, "c:^ap")
	assert.Equal(t, a.Featurize(texts[0]), b.Featurize(texts[0]))
}

func TestFeaturizeIsUnitLengthAndSorted(t *testing.T) {
	f, err := NewBuilder(DefaultOptions()).Build(texts)
	require.NoError(t, err)

	v := f.Featurize("Include your API key in the header")
	require.True(t, v.Len() > 0)
	assert.InDelta(t, 1.0, v.Norm(), 1e-9)
	for i := 1; i < len(v.Indices); i++ {
		assert.Less(t, v.Indices[i-1], v.Indices[i])
	}
}

func TestFeaturizeUnknownText(t *testing.T) {
	opts := DefaultOptions()
	opts.CharNgrams = 0
	f, err := NewBuilder(opts).Build(texts)
	require.NoError(t, err)

	v := f.Featurize("zzz qqq")
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 0.0, v.Norm())
}

func TestTFIDFDownweightsCommonTerms(t *testing.T) {
	opts := DefaultOptions()
	opts.WordNgrams = 1
	opts.CharNgrams = 0
	f, err := NewBuilder(opts).Build([]string{"the header", "the page", "the limit"})
	require.NoError(t, err)

	v := f.Featurize("the header")
	require.Equal(t, 2, v.Len())
	the := f.index["w:the"]
	header := f.index["w:header"]
	values := map[int]float64{v.Indices[0]: v.Values[0], v.Indices[1]: v.Values[1]}
	assert.Less(t, values[the], values[header])
}

func TestTFWeighting(t *testing.T) {
	opts := DefaultOptions()
	opts.WordNgrams = 1
	opts.CharNgrams = 0
	opts.Weighting = TF
	f, err := NewBuilder(opts).Build([]string{"page page limit"})
	require.NoError(t, err)

	v := f.Featurize("page page limit")
	require.Equal(t, 2, v.Len())
	// limit sorts before page
	assert.InDelta(t, 1/math.Sqrt(5), v.Values[0], 1e-9)
	assert.InDelta(t, 2/math.Sqrt(5), v.Values[1], 1e-9)
}

func TestMinDFPrunes(t *testing.T) {
	opts := DefaultOptions()
	opts.WordNgrams = 1
	opts.CharNgrams = 0
	opts.MinDF = 2
	f, err := NewBuilder(opts).Build([]string{"token header", "token body", "page"})
	require.NoError(t, err)
	assert.Equal(t, []string{"w:token"}, f.vocab)
}

func TestStopwordsAndMarkup(t *testing.T) {
	opts := DefaultOptions()
	opts.WordNgrams = 1
	opts.CharNgrams = 0
	opts.Stopwords = []string{"the"}
	f, err := NewBuilder(opts).Build([]string{"<p>the <b>token</b></p>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"w:token"}, f.vocab)
}

func TestDropNumbers(t *testing.T) {
	opts := DefaultOptions()
	opts.WordNgrams = 1
	opts.CharNgrams = 0
	f, err := NewBuilder(opts).Build([]string{"returns 429 when throttled"})
	require.NoError(t, err)
	assert.Contains(t, f.vocab, "w:429")

	opts.DropNumbers = true
	f, err = NewBuilder(opts).Build([]string{"returns 429 when throttled"})
	require.NoError(t, err)
	assert.Equal(t, []string{"w:returns", "w:throttled", "w:when"}, f.vocab)
}

func TestBuildErrors(t *testing.T) {
	_, err := NewBuilder(DefaultOptions()).Build(nil)
	assert.ErrorIs(t, err, internalerr.ErrInsufficientData)

	_, err = NewBuilder(DefaultOptions()).Build([]string{"!!!", "???"})
	assert.ErrorIs(t, err, internalerr.ErrInsufficientData)

	bad := DefaultOptions()
	bad.Weighting = "bm25"
	_, err = NewBuilder(bad).Build(texts)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	bad = DefaultOptions()
	bad.WordNgrams = 0
	_, err = NewBuilder(bad).Build(texts)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestJSONRoundTrip(t *testing.T) {
	f, err := NewBuilder(DefaultOptions()).Build(texts)
	require.NoError(t, err)

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var restored BagOfTokens
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, f.Dim(), restored.Dim())
	assert.Equal(t, f.Options(), restored.Options())
	assert.Equal(t, f.Featurize("API key header"), restored.Featurize("API key header"))
}

func TestUnmarshalRejectsMismatchedState(t *testing.T) {
	var f BagOfTokens
	err := json.Unmarshal([]byte(`{"options":{"word_ngrams":1,"char_ngrams":0,"min_df":1,"weighting":"tf"},"terms":["w:a"],"idf":[]}`), &f)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestVectorDot(t *testing.T) {
	v := Vector{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}}
	assert.Equal(t, 1.0*4+2*6, v.Dot([]float64{4, 0, 6}))
}
