package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store persists trained model snapshots and their metadata.
type Store interface {
	Close() error

	// SaveModel stores m, assigning an ID and creation time when unset,
	// and returns the stored record.
	SaveModel(ctx context.Context, m Model) (Model, error)
	GetModel(ctx context.Context, id string) (Model, error)
	// LatestModel returns the most recently saved model.
	LatestModel(ctx context.Context) (Model, error)
	// ListModels returns metadata for every model, newest first. Snapshots
	// are not loaded.
	ListModels(ctx context.Context) ([]Model, error)
	DeleteModel(ctx context.Context, id string) error
}

// Model is a stored training run.
type Model struct {
	ID        string
	CreatedAt time.Time
	Source    string // corpus the model was trained on
	Records   int
	Accuracy  float64 // training-set accuracy
	Labels    []LabelCount
	Snapshot  []byte
}

// LabelCount is the number of training records carrying a label.
type LabelCount struct {
	Label string
	Count int
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a ULID for t. IDs from one process sort in creation order.
func NewID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}

// Prepare fills in the ID and creation time of m when they are unset.
func Prepare(m Model) Model {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.ID == "" {
		m.ID = NewID(m.CreatedAt)
	}
	return m
}
