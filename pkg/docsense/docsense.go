// Package docsense ties the document walker, labeler, classifier and model
// store into the extract, train and predict workflow.
package docsense

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/cognicore/docsense/internal/logging"
	"github.com/cognicore/docsense/pkg/docsense/classify"
	"github.com/cognicore/docsense/pkg/docsense/corpus"
	"github.com/cognicore/docsense/pkg/docsense/extract"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/label"
	"github.com/cognicore/docsense/pkg/docsense/openapi"
	"github.com/cognicore/docsense/pkg/docsense/store"
)

// DefaultCacheSize is the number of restored models kept in memory.
const DefaultCacheSize = 8

// DocSense is the main facade
type DocSense struct {
	store    store.Store
	labeler  extract.Labeler
	pipeline *classify.Pipeline
	log      *zap.Logger
	models   *lru.Cache[string, *classify.TrainedModel]
}

// Options configures a DocSense instance. Nil fields get defaults, except
// Store, which only Extract can do without.
type Options struct {
	Store     store.Store
	Labeler   extract.Labeler
	Pipeline  *classify.Pipeline
	Logger    *zap.Logger
	CacheSize int
}

// New creates a DocSense instance with the given dependencies
func New(opts Options) *DocSense {
	if opts.Labeler == nil {
		opts.Labeler = label.Default()
	}
	if opts.Pipeline == nil {
		opts.Pipeline = classify.DefaultPipeline()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *classify.TrainedModel](opts.CacheSize)
	if err != nil {
		panic(err)
	}
	return &DocSense{
		store:    opts.Store,
		labeler:  opts.Labeler,
		pipeline: opts.Pipeline,
		log:      logging.OrNop(opts.Logger),
		models:   cache,
	}
}

// Close closes the underlying store
func (d *DocSense) Close() error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}

// Extract parses the document at inputPath, labels every non-blank
// description and writes the corpus table to outputPath. It returns the
// number of records written.
func (d *DocSense) Extract(ctx context.Context, inputPath, outputPath string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	doc, err := openapi.ParseFile(inputPath)
	if err != nil {
		return 0, err
	}
	d.log.Debug("parsed document",
		zap.String("input", inputPath),
		zap.String("title", doc.Title),
		zap.Int("paths", len(doc.Paths)),
		zap.Int("operations", doc.OperationCount()))

	records := extract.Records(doc, d.labeler)
	n, err := corpus.WriteFile(outputPath, records)
	if err != nil {
		return 0, err
	}

	d.log.Info("extracted corpus",
		zap.String("output", outputPath),
		zap.Int("records", n),
		zap.Int("labels", len(records.Labels())))
	return n, nil
}

// Train fits a model on the corpus table at corpusPath, evaluates it on
// the same records and saves it to the store.
func (d *DocSense) Train(ctx context.Context, corpusPath string) (store.Model, classify.Evaluation, error) {
	if d.store == nil {
		return store.Model{}, classify.Evaluation{}, fmt.Errorf("%w: no model store configured", internalerr.ErrStoreUnavailable)
	}

	c, err := corpus.ReadFile(corpusPath)
	if err != nil {
		return store.Model{}, classify.Evaluation{}, err
	}
	d.log.Debug("read corpus", zap.String("data", corpusPath), zap.Int("records", len(c)))

	m, err := d.pipeline.Fit(c)
	if err != nil {
		return store.Model{}, classify.Evaluation{}, err
	}

	ev, err := m.Evaluate(c)
	if err != nil {
		return store.Model{}, classify.Evaluation{}, err
	}

	snap, err := m.MarshalBinary()
	if err != nil {
		return store.Model{}, classify.Evaluation{}, fmt.Errorf("snapshot model: %w", err)
	}

	counts := c.Labels()
	labels := make([]store.LabelCount, len(counts))
	for i, lc := range counts {
		labels[i] = store.LabelCount{Label: lc.Label, Count: lc.Count}
	}

	saved, err := d.store.SaveModel(ctx, store.Model{
		Source:   corpusPath,
		Records:  len(c),
		Accuracy: ev.Accuracy,
		Labels:   labels,
		Snapshot: snap,
	})
	if err != nil {
		return store.Model{}, classify.Evaluation{}, fmt.Errorf("save model: %w", err)
	}
	d.models.Add(saved.ID, m)

	d.log.Info("trained model",
		zap.String("model_id", saved.ID),
		zap.Int("records", len(c)),
		zap.Int("labels", len(labels)),
		zap.Int("features", m.Dim()),
		zap.Float64("accuracy", ev.Accuracy))
	return saved, ev, nil
}

// Predict classifies text with the stored model modelID, or with the most
// recent model when modelID is empty.
func (d *DocSense) Predict(ctx context.Context, modelID, text string) (classify.Prediction, error) {
	m, err := d.Model(ctx, modelID)
	if err != nil {
		return classify.Prediction{}, err
	}
	return classify.Predict(m, text)
}

// Model loads a trained model from the store, using the in-memory cache
// when possible. An empty modelID selects the most recent model.
func (d *DocSense) Model(ctx context.Context, modelID string) (*classify.TrainedModel, error) {
	if modelID != "" {
		if m, ok := d.models.Get(modelID); ok {
			return m, nil
		}
	}
	if d.store == nil {
		return nil, fmt.Errorf("%w: no model store configured", internalerr.ErrStoreUnavailable)
	}

	var (
		rec store.Model
		err error
	)
	if modelID == "" {
		rec, err = d.store.LatestModel(ctx)
	} else {
		rec, err = d.store.GetModel(ctx, modelID)
	}
	if err != nil {
		return nil, err
	}
	if m, ok := d.models.Get(rec.ID); ok {
		return m, nil
	}

	m, err := classify.Restore(rec.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("restore model %s: %w", rec.ID, err)
	}
	d.models.Add(rec.ID, m)
	d.log.Debug("restored model", zap.String("model_id", rec.ID), zap.Int("features", m.Dim()))
	return m, nil
}

// Models lists stored models, newest first.
func (d *DocSense) Models(ctx context.Context) ([]store.Model, error) {
	if d.store == nil {
		return nil, fmt.Errorf("%w: no model store configured", internalerr.ErrStoreUnavailable)
	}
	return d.store.ListModels(ctx)
}

// DeleteModel removes a stored model.
func (d *DocSense) DeleteModel(ctx context.Context, modelID string) error {
	if d.store == nil {
		return fmt.Errorf("%w: no model store configured", internalerr.ErrStoreUnavailable)
	}
	if err := d.store.DeleteModel(ctx, modelID); err != nil {
		return err
	}
	d.models.Remove(modelID)
	d.log.Info("deleted model", zap.String("model_id", modelID))
	return nil
}
