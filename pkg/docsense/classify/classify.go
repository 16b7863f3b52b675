// Package classify builds and applies the text classifier: label encoding,
// featurization, multiclass training and label decoding behind narrow
// capability interfaces.
package classify

import (
	"github.com/cognicore/docsense/pkg/docsense/featurize"
	"github.com/cognicore/docsense/pkg/docsense/maxent"
)

// Featurizer maps text to a fixed-dimension sparse vector.
type Featurizer interface {
	Featurize(text string) featurize.Vector
	Dim() int
}

// FeaturizerBuilder fits a Featurizer on training texts.
type FeaturizerBuilder interface {
	Build(texts []string) (Featurizer, error)
}

// Sample is a featurized training record with its encoded label.
type Sample struct {
	Features featurize.Vector
	Label    int
}

// Classifier scores a vector against every label key. Scores has one entry
// per key; the highest wins.
type Classifier interface {
	Scores(v featurize.Vector) []float64
}

// Trainer fits a Classifier over samples with the given number of label
// keys and feature dimension.
type Trainer interface {
	Train(samples []Sample, classes, dim int) (Classifier, error)
}

// BagOfTokens adapts featurize.Builder to FeaturizerBuilder.
func BagOfTokens(opts featurize.Options) FeaturizerBuilder {
	return bagBuilder{b: featurize.NewBuilder(opts)}
}

type bagBuilder struct {
	b *featurize.Builder
}

func (bb bagBuilder) Build(texts []string) (Featurizer, error) {
	f, err := bb.b.Build(texts)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// MaxEnt adapts maxent.Trainer to Trainer.
func MaxEnt(t maxent.Trainer) Trainer {
	return maxentTrainer{t: t}
}

type maxentTrainer struct {
	t maxent.Trainer
}

func (mt maxentTrainer) Train(samples []Sample, classes, dim int) (Classifier, error) {
	converted := make([]maxent.Sample, len(samples))
	for i, s := range samples {
		converted[i] = maxent.Sample{X: s.Features, Y: s.Label}
	}
	m, err := mt.t.Train(converted, classes, dim)
	if err != nil {
		return nil, err
	}
	return m, nil
}
