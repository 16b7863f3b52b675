package stoplist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/docsense/pkg/docsense/corpus"
	"github.com/cognicore/docsense/pkg/docsense/ingest"
)

func TestManagerBasic(t *testing.T) {
	mgr := NewManager([]string{"the", "a", "and"})

	assert.True(t, mgr.IsStop("the"))
	assert.False(t, mgr.IsStop("hello"))

	mgr.Add("test", Reason{HighDF: true})
	assert.True(t, mgr.IsStop("test"))
	mgr.Remove("test")
	assert.False(t, mgr.IsStop("test"))

	assert.Equal(t, []string{"a", "and", "the"}, mgr.All())
}

func sampleCorpus() corpus.Corpus {
	return corpus.Corpus{
		{Text: "Returns the list of pets", Label: "Endpoints"},
		{Text: "Returns the token for the user", Label: "Authentication"},
		{Text: "Returns the next page", Label: "Pagination"},
		{Text: "Returns the error payload", Label: "Errors"},
		{Text: "Send the token in the header", Label: "Authentication"},
	}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats(sampleCorpus(), nil)
	byToken := make(map[string]Stats, len(stats))
	for _, s := range stats {
		byToken[s.Token] = s
	}

	the := byToken["the"]
	assert.Equal(t, 5, the.DF)
	assert.InDelta(t, 100.0, the.DFPercent, 1e-9)
	assert.InDelta(t, 0.0, the.IDF, 1e-9)

	// "returns" appears once under each of the four labels.
	returns := byToken["returns"]
	assert.Equal(t, 4, returns.DF)
	assert.InDelta(t, 1.0, returns.LabelEntropy, 1e-9)

	// "token" only ever appears under Authentication.
	token := byToken["token"]
	assert.Equal(t, 2, token.DF)
	assert.InDelta(t, 0.0, token.LabelEntropy, 1e-9)
	assert.InDelta(t, math.Log(5.0/2.0), token.IDF, 1e-9)

	for i := 1; i < len(stats); i++ {
		assert.Less(t, stats[i-1].Token, stats[i].Token)
	}
}

func TestComputeStatsSingleLabel(t *testing.T) {
	stats := ComputeStats(corpus.Corpus{
		{Text: "alpha beta", Label: "Endpoints"},
		{Text: "alpha gamma", Label: "Endpoints"},
	}, ingest.NewTokenizer(nil))
	require.NotEmpty(t, stats)
	for _, s := range stats {
		assert.Zero(t, s.LabelEntropy, s.Token)
	}
	assert.Nil(t, ComputeStats(nil, nil))
}

func TestSuggestCandidates(t *testing.T) {
	stats := ComputeStats(sampleCorpus(), nil)

	cands := NewManager(nil).SuggestCandidates(stats, DefaultThresholds())
	require.Len(t, cands, 2)
	assert.Equal(t, "the", cands[0].Token)
	assert.Equal(t, "returns", cands[1].Token)
	assert.True(t, cands[0].Reason.HighDF)
	assert.True(t, cands[0].Reason.HighEntropy)
	assert.Greater(t, cands[0].Score, cands[1].Score)

	mgr := NewManager([]string{"the"})
	cands = mgr.SuggestCandidates(stats, DefaultThresholds())
	require.Len(t, cands, 1)
	assert.Equal(t, "returns", cands[0].Token)

	mgr.Apply(cands)
	assert.Equal(t, []string{"returns", "the"}, mgr.All())
	assert.Empty(t, mgr.SuggestCandidates(stats, DefaultThresholds()))
}

func TestSuggestCandidatesMinDF(t *testing.T) {
	stats := []Stats{{Token: "rare", DF: 1, DFPercent: 100, LabelEntropy: 1}}
	assert.Empty(t, NewManager(nil).SuggestCandidates(stats, DefaultThresholds()))

	th := DefaultThresholds()
	th.MinDF = 1
	assert.Len(t, NewManager(nil).SuggestCandidates(stats, th), 1)
}
