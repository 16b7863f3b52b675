// Package storetest holds the behavior every store.Store must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/store"
)

// Run exercises st. It expects an empty store.
func Run(t *testing.T, st store.Store) {
	ctx := context.Background()

	_, err := st.LatestModel(ctx)
	require.ErrorIs(t, err, internalerr.ErrNotFound)

	list, err := st.ListModels(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = st.SaveModel(ctx, store.Model{Source: "empty.csv"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	first, err := st.SaveModel(ctx, store.Model{
		Source:   "ApiDocsData.csv",
		Records:  3,
		Accuracy: 0.5,
		Labels: []store.LabelCount{
			{Label: "Parameters", Count: 2},
			{Label: "Errors", Count: 1},
		},
		Snapshot: []byte(`{"version":1}`),
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := st.SaveModel(ctx, store.Model{
		Source:   "other.csv",
		Records:  1,
		Labels:   []store.LabelCount{{Label: "Endpoints", Count: 1}},
		Snapshot: []byte(`{"version":1,"n":2}`),
	})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	t.Run("get", func(t *testing.T) {
		got, err := st.GetModel(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.Equal(t, "ApiDocsData.csv", got.Source)
		assert.Equal(t, 3, got.Records)
		assert.InDelta(t, 0.5, got.Accuracy, 1e-12)
		assert.Equal(t, first.Labels, got.Labels)
		assert.Equal(t, first.Snapshot, got.Snapshot)
		assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Millisecond)

		_, err = st.GetModel(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		assert.ErrorIs(t, err, internalerr.ErrNotFound)
	})

	t.Run("latest", func(t *testing.T) {
		got, err := st.LatestModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, second.Snapshot, got.Snapshot)
	})

	t.Run("list", func(t *testing.T) {
		list, err := st.ListModels(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
		assert.Equal(t, first.Labels, list[1].Labels)
		assert.Nil(t, list[0].Snapshot)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, st.DeleteModel(ctx, second.ID))
		assert.ErrorIs(t, st.DeleteModel(ctx, second.ID), internalerr.ErrNotFound)

		_, err := st.GetModel(ctx, second.ID)
		assert.ErrorIs(t, err, internalerr.ErrNotFound)

		got, err := st.LatestModel(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
	})
}
