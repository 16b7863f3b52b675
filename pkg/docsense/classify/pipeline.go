package classify

import (
	"fmt"

	"github.com/cognicore/docsense/pkg/docsense/corpus"
	"github.com/cognicore/docsense/pkg/docsense/featurize"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/maxent"
)

// Pipeline fits TrainedModels: label encoding, featurization and training,
// with the encoder retained for decoding.
type Pipeline struct {
	featurizer FeaturizerBuilder
	trainer    Trainer
}

// NewPipeline creates a pipeline from the given capabilities.
func NewPipeline(featurizer FeaturizerBuilder, trainer Trainer) *Pipeline {
	return &Pipeline{featurizer: featurizer, trainer: trainer}
}

// DefaultPipeline uses the bag-of-tokens featurizer and the maxent trainer
// with their default settings.
func DefaultPipeline() *Pipeline {
	return NewPipeline(BagOfTokens(featurize.DefaultOptions()), MaxEnt(maxent.DefaultTrainer()))
}

// Fit trains a model on c. Blank texts or labels fail with
// internalerr.ErrInvalidRecord; fewer than two distinct labels (an empty
// corpus included) fail with internalerr.ErrInsufficientData. A pipeline
// missing either capability fails with internalerr.ErrInvalidConfig.
func (p *Pipeline) Fit(c corpus.Corpus) (*TrainedModel, error) {
	if p == nil || p.featurizer == nil || p.trainer == nil {
		return nil, fmt.Errorf("%w: pipeline needs a featurizer builder and a trainer", internalerr.ErrInvalidConfig)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	enc := FitLabelEncoder(c)
	if enc.Len() < 2 {
		return nil, fmt.Errorf("%w: corpus has %d records and %d distinct labels, need at least 2 labels",
			internalerr.ErrInsufficientData, len(c), enc.Len())
	}

	feat, err := p.featurizer.Build(c.Texts())
	if err != nil {
		return nil, fmt.Errorf("build featurizer: %w", err)
	}

	samples := make([]Sample, len(c))
	for i, r := range c {
		key, _ := enc.Encode(r.Label)
		samples[i] = Sample{Features: feat.Featurize(r.Text), Label: key}
	}

	cls, err := p.trainer.Train(samples, enc.Len(), feat.Dim())
	if err != nil {
		return nil, fmt.Errorf("train classifier: %w", err)
	}

	return &TrainedModel{encoder: enc, featurizer: feat, classifier: cls}, nil
}
