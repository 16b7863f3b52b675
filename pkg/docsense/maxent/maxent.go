// Package maxent trains multinomial logistic regression (maximum entropy)
// classifiers over sparse feature vectors with seeded stochastic gradient
// descent.
package maxent

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cognicore/docsense/pkg/docsense/featurize"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

// Kind identifies maxent models in persisted snapshots.
const Kind = "maxent"

// lrDecay shrinks the step size per epoch: lr / (1 + lrDecay*epoch).
const lrDecay = 0.1

// Sample is one training example.
type Sample struct {
	X featurize.Vector
	Y int
}

// Trainer holds the SGD hyperparameters.
type Trainer struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         uint64
}

// DefaultTrainer returns hyperparameters that converge on small
// documentation corpora.
func DefaultTrainer() Trainer {
	return Trainer{
		Epochs:       40,
		LearningRate: 0.5,
		L2:           1e-4,
		Seed:         42,
	}
}

// Train fits a model with the given number of classes over dim features.
// The sample order is shuffled each epoch from Seed, so identical inputs
// and Seed give identical weights.
func (t Trainer) Train(samples []Sample, classes, dim int) (*Model, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no training samples", internalerr.ErrInsufficientData)
	}
	if classes < 2 {
		return nil, fmt.Errorf("%w: need at least 2 classes, got %d", internalerr.ErrInsufficientData, classes)
	}
	if t.Epochs < 1 || t.LearningRate <= 0 || t.L2 < 0 {
		return nil, fmt.Errorf("%w: epochs=%d learning_rate=%g l2=%g", internalerr.ErrInvalidConfig, t.Epochs, t.LearningRate, t.L2)
	}
	for i, s := range samples {
		if s.Y < 0 || s.Y >= classes {
			return nil, fmt.Errorf("%w: sample %d has class %d outside [0,%d)", internalerr.ErrInvalidInput, i, s.Y, classes)
		}
		for _, idx := range s.X.Indices {
			if idx < 0 || idx >= dim {
				return nil, fmt.Errorf("%w: sample %d has feature %d outside [0,%d)", internalerr.ErrInvalidInput, i, idx, dim)
			}
		}
	}

	m := newModel(classes, dim)
	rng := rand.New(rand.NewPCG(t.Seed, t.Seed^0x9e3779b97f4a7c15))
	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}

	probs := make([]float64, classes)
	for epoch := 0; epoch < t.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		lr := t.LearningRate / (1 + lrDecay*float64(epoch))

		var loss float64
		for _, i := range order {
			s := samples[i]
			m.probabilities(s.X, probs)
			loss -= math.Log(math.Max(probs[s.Y], 1e-12))

			for k := 0; k < classes; k++ {
				g := probs[k]
				if k == s.Y {
					g -= 1
				}
				w := m.Weights[k]
				for j, idx := range s.X.Indices {
					w[idx] -= lr * (g*s.X.Values[j] + t.L2*w[idx])
				}
				m.Bias[k] -= lr * g
			}
		}
		m.Loss = loss / float64(len(samples))
	}
	return m, nil
}

// Model is a fitted softmax classifier. It is read-only after Train and
// safe for concurrent use.
type Model struct {
	Classes int         `json:"classes"`
	Dim     int         `json:"dim"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
	Loss    float64     `json:"loss"` // mean log loss of the final epoch
}

func newModel(classes, dim int) *Model {
	m := &Model{
		Classes: classes,
		Dim:     dim,
		Weights: make([][]float64, classes),
		Bias:    make([]float64, classes),
	}
	for k := range m.Weights {
		m.Weights[k] = make([]float64, dim)
	}
	return m
}

// Kind implements the persisted-component contract.
func (m *Model) Kind() string { return Kind }

// Scores returns class probabilities for x.
func (m *Model) Scores(x featurize.Vector) []float64 {
	out := make([]float64, m.Classes)
	m.probabilities(x, out)
	return out
}

// Predict returns the most probable class; ties go to the lowest class.
func (m *Model) Predict(x featurize.Vector) int {
	return argmax(m.Scores(x))
}

func (m *Model) probabilities(x featurize.Vector, out []float64) {
	maxLogit := math.Inf(-1)
	for k := 0; k < m.Classes; k++ {
		out[k] = x.Dot(m.Weights[k]) + m.Bias[k]
		if out[k] > maxLogit {
			maxLogit = out[k]
		}
	}
	var sum float64
	for k := range out {
		out[k] = math.Exp(out[k] - maxLogit)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

// MarshalJSON encodes the model weights.
func (m *Model) MarshalJSON() ([]byte, error) {
	type plain Model
	return json.Marshal((*plain)(m))
}

// UnmarshalJSON restores a model and checks its shape.
func (m *Model) UnmarshalJSON(data []byte) error {
	type plain Model
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Classes < 2 || len(p.Weights) != p.Classes || len(p.Bias) != p.Classes {
		return fmt.Errorf("%w: maxent model has %d classes, %d weight rows, %d biases", internalerr.ErrInvalidInput, p.Classes, len(p.Weights), len(p.Bias))
	}
	for k, row := range p.Weights {
		if len(row) != p.Dim {
			return fmt.Errorf("%w: maxent weight row %d has %d entries, want %d", internalerr.ErrInvalidInput, k, len(row), p.Dim)
		}
	}
	*m = Model(p)
	return nil
}
