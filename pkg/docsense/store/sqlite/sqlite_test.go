package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/store"
	"github.com/cognicore/docsense/pkg/docsense/store/storetest"
)

func TestSQLiteContract(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, err)
	defer st.Close()

	storetest.Run(t, st)
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "models.db")

	st, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	saved, err := st.SaveModel(ctx, store.Model{
		Source:   "ApiDocsData.csv",
		Labels:   []store.LabelCount{{Label: "Errors", Count: 4}},
		Snapshot: []byte("{}"),
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.LatestModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, saved.Labels, got.Labels)
}

func TestSQLiteDeleteCascadesLabels(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "models.db"))
	require.NoError(t, err)
	defer st.Close()

	m, err := st.SaveModel(ctx, store.Model{
		Labels:   []store.LabelCount{{Label: "Errors", Count: 1}, {Label: "Endpoints", Count: 2}},
		Snapshot: []byte("{}"),
	})
	require.NoError(t, err)
	require.NoError(t, st.DeleteModel(ctx, m.ID))

	var n int
	db := st.(*sqliteStore).db
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM model_labels`).Scan(&n))
	assert.Zero(t, n)
}

func TestOpenSQLiteUnavailable(t *testing.T) {
	_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "models.db"))
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
}
