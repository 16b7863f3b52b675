package docsense

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/docsense/pkg/docsense/corpus"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/label"
	"github.com/cognicore/docsense/pkg/docsense/store/memstore"
)

const petstore = "openapi/testdata/petstore.yaml"

func authCorpus() corpus.Corpus {
	return corpus.Corpus{
		{Text: "Authenticate with an API key sent in the Authorization header", Label: label.Authentication},
		{Text: "Include the API key in every request header", Label: label.Authentication},
		{Text: "Obtain an access token using your API key", Label: label.Authentication},
		{Text: "Use limit and offset to page through results", Label: label.Pagination},
		{Text: "The page parameter selects which page of results to return", Label: label.Pagination},
		{Text: "An error object is returned when the request fails", Label: label.Errors},
		{Text: "Returns an error with a message and code on failure", Label: label.Errors},
		{Text: "Lists all pets in the store", Label: label.Endpoints},
		{Text: "Creates a new pet in the store", Label: label.Endpoints},
	}
}

func TestExtractTrainPredict(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)
	ds := New(Options{Store: memstore.New(), Logger: zap.New(core)})
	defer ds.Close()

	out := filepath.Join(t.TempDir(), "ApiDocsData.csv")
	n, err := ds.Extract(ctx, petstore, out)
	require.NoError(t, err)

	c, err := corpus.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, n, len(c))
	assert.Equal(t, 1, logs.FilterMessage("extracted corpus").Len())

	m, ev, err := ds.Train(ctx, out)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, n, m.Records)
	assert.Equal(t, out, m.Source)
	assert.Equal(t, n, ev.Total)
	assert.InDelta(t, ev.Accuracy, m.Accuracy, 1e-12)

	entries := logs.FilterMessage("trained model").All()
	require.Len(t, entries, 1)
	assert.Equal(t, m.ID, entries[0].ContextMap()["model_id"])

	p, err := ds.Predict(ctx, "", "Returns a page of results")
	require.NoError(t, err)
	assert.Contains(t, label.All, p.Label)

	p2, err := ds.Predict(ctx, m.ID, "Returns a page of results")
	require.NoError(t, err)
	assert.Equal(t, p, p2)
}

func TestPredictAuthenticationFromStoredModel(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	data := filepath.Join(t.TempDir(), "ApiDocsData.csv")
	_, err := corpus.WriteFile(data, authCorpus())
	require.NoError(t, err)

	m, _, err := New(Options{Store: st}).Train(ctx, data)
	require.NoError(t, err)

	// A fresh instance has an empty cache and must restore the snapshot.
	ds := New(Options{Store: st})
	p, err := ds.Predict(ctx, m.ID, "Include your API key in the header")
	require.NoError(t, err)
	assert.Equal(t, label.Authentication, p.Label)

	models, err := ds.Models(ctx)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, label.Authentication, models[0].Labels[0].Label)
	assert.Equal(t, 3, models[0].Labels[0].Count)
}

func TestPredictWithoutModels(t *testing.T) {
	ds := New(Options{Store: memstore.New()})
	_, err := ds.Predict(context.Background(), "", "anything")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	_, err = ds.Predict(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV", "anything")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestTrainSingleLabelCorpus(t *testing.T) {
	data := filepath.Join(t.TempDir(), "ApiDocsData.csv")
	_, err := corpus.WriteFile(data, corpus.Corpus{
		{Text: "first", Label: label.Endpoints},
		{Text: "second", Label: label.Endpoints},
	})
	require.NoError(t, err)

	st := memstore.New()
	_, _, err = New(Options{Store: st}).Train(context.Background(), data)
	assert.ErrorIs(t, err, internalerr.ErrInsufficientData)

	models, err := st.ListModels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestDeleteModelEvictsCache(t *testing.T) {
	ctx := context.Background()
	data := filepath.Join(t.TempDir(), "ApiDocsData.csv")
	_, err := corpus.WriteFile(data, authCorpus())
	require.NoError(t, err)

	ds := New(Options{Store: memstore.New()})
	m, _, err := ds.Train(ctx, data)
	require.NoError(t, err)

	require.NoError(t, ds.DeleteModel(ctx, m.ID))
	_, err = ds.Predict(ctx, m.ID, "Include your API key")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
	assert.ErrorIs(t, ds.DeleteModel(ctx, m.ID), internalerr.ErrNotFound)
}

func TestExtractWithoutOperationsWritesHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "idle.yaml")
	out := filepath.Join(dir, "ApiDocsData.csv")
	require.NoError(t, os.WriteFile(in, []byte(`openapi: 3.0.3
info:
  title: Idle
  version: 1.0.0
paths:
  /health:
    summary: Health checks
    parameters: []
  /status:
`), 0o644))

	n, err := New(Options{}).Extract(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Text,Label\n", string(data))

	c, err := corpus.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, c)
}

func TestExtractErrors(t *testing.T) {
	ds := New(Options{})
	dir := t.TempDir()

	_, err := ds.Extract(context.Background(), filepath.Join(dir, "absent.yaml"), filepath.Join(dir, "out.csv"))
	assert.ErrorIs(t, err, internalerr.ErrMalformedDocument)

	_, err = ds.Extract(context.Background(), petstore, filepath.Join(dir, "missing", "out.csv"))
	assert.ErrorIs(t, err, internalerr.ErrWriteFailure)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ds.Extract(ctx, petstore, filepath.Join(dir, "out.csv"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoStore(t *testing.T) {
	ds := New(Options{})
	ctx := context.Background()

	_, _, err := ds.Train(ctx, "ApiDocsData.csv")
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	_, err = ds.Predict(ctx, "", "text")
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	_, err = ds.Models(ctx)
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	assert.ErrorIs(t, ds.DeleteModel(ctx, "x"), internalerr.ErrStoreUnavailable)
	assert.NoError(t, ds.Close())
}
