package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS models (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	source TEXT,
	records INTEGER NOT NULL DEFAULT 0,
	accuracy REAL NOT NULL DEFAULT 0,
	snapshot BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS model_labels (
	model_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	label TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(model_id, position),
	FOREIGN KEY(model_id) REFERENCES models(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveModel inserts a model and its label counts in one transaction
func (s *sqliteStore) SaveModel(ctx context.Context, m store.Model) (store.Model, error) {
	if len(m.Snapshot) == 0 {
		return store.Model{}, fmt.Errorf("%w: model has no snapshot", internalerr.ErrInvalidInput)
	}
	m = store.Prepare(m)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Model{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO models (id, created_at, source, records, accuracy, snapshot)
VALUES (?, ?, ?, ?, ?, ?);
`, m.ID, m.CreatedAt.UTC().Format(time.RFC3339Nano), m.Source, m.Records, m.Accuracy, m.Snapshot)
	if err != nil {
		return store.Model{}, err
	}

	if len(m.Labels) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO model_labels (model_id, position, label, count) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return store.Model{}, err
		}
		defer stmt.Close()
		for i, lc := range m.Labels {
			if _, err := stmt.ExecContext(ctx, m.ID, i, lc.Label, lc.Count); err != nil {
				return store.Model{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return store.Model{}, err
	}
	return m, nil
}

// GetModel retrieves a model by ID
func (s *sqliteStore) GetModel(ctx context.Context, id string) (store.Model, error) {
	return s.loadModel(ctx, `
SELECT id, created_at, source, records, accuracy, snapshot
FROM models
WHERE id = ?;
`, id)
}

// LatestModel retrieves the model with the greatest ID
func (s *sqliteStore) LatestModel(ctx context.Context) (store.Model, error) {
	return s.loadModel(ctx, `
SELECT id, created_at, source, records, accuracy, snapshot
FROM models
ORDER BY id DESC
LIMIT 1;
`)
}

// ListModels returns model metadata, newest first
func (s *sqliteStore) ListModels(ctx context.Context) ([]store.Model, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, source, records, accuracy
FROM models
ORDER BY id DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []store.Model
	for rows.Next() {
		var (
			m       store.Model
			created string
		)
		if err := rows.Scan(&m.ID, &created, &m.Source, &m.Records, &m.Accuracy); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(created)
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range models {
		models[i].Labels, err = s.loadLabels(ctx, models[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return models, nil
}

// DeleteModel removes a model and its label counts
func (s *sqliteStore) DeleteModel(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM models WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: model %q", internalerr.ErrNotFound, id)
	}
	return nil
}

func (s *sqliteStore) loadModel(ctx context.Context, query string, args ...interface{}) (store.Model, error) {
	var (
		m       store.Model
		created string
	)
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&m.ID, &created, &m.Source, &m.Records, &m.Accuracy, &m.Snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		if len(args) > 0 {
			return store.Model{}, fmt.Errorf("%w: model %q", internalerr.ErrNotFound, args[0])
		}
		return store.Model{}, fmt.Errorf("%w: no models saved", internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Model{}, err
	}
	m.CreatedAt = parseTime(created)

	m.Labels, err = s.loadLabels(ctx, m.ID)
	if err != nil {
		return store.Model{}, err
	}
	return m, nil
}

func (s *sqliteStore) loadLabels(ctx context.Context, id string) ([]store.LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, count FROM model_labels WHERE model_id=? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []store.LabelCount
	for rows.Next() {
		var lc store.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		labels = append(labels, lc)
	}
	return labels, rows.Err()
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
