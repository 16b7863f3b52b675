package classify

import (
	"fmt"

	"github.com/cognicore/docsense/pkg/docsense/corpus"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

// TrainedModel is a fitted encoder, featurizer and classifier. It is never
// mutated after Fit, so any number of goroutines may predict with it.
type TrainedModel struct {
	encoder    *LabelEncoder
	featurizer Featurizer
	classifier Classifier
}

// Prediction is the outcome of classifying one text.
type Prediction struct {
	Label  string
	Scores map[string]float64
}

func (m *TrainedModel) fitted() bool {
	return m != nil && m.encoder != nil && m.featurizer != nil && m.classifier != nil
}

// Labels returns the label vocabulary in key order.
func (m *TrainedModel) Labels() []string {
	if !m.fitted() {
		return nil
	}
	return m.encoder.Labels()
}

// Dim returns the feature dimension.
func (m *TrainedModel) Dim() int {
	if !m.fitted() {
		return 0
	}
	return m.featurizer.Dim()
}

// Predict classifies text with m.
func (m *TrainedModel) Predict(text string) (Prediction, error) {
	return Predict(m, text)
}

// Predict runs the fit-time featurization on text, applies the classifier
// and decodes the best label key. It always returns one of the labels seen
// at fit time. A nil or unfitted model fails with
// internalerr.ErrUninitializedModel.
func Predict(m *TrainedModel, text string) (Prediction, error) {
	if !m.fitted() {
		return Prediction{}, internalerr.ErrUninitializedModel
	}

	scores := m.classifier.Scores(m.featurizer.Featurize(text))
	if len(scores) != m.encoder.Len() {
		return Prediction{}, fmt.Errorf("%w: classifier returned %d scores for %d labels",
			internalerr.ErrUninitializedModel, len(scores), m.encoder.Len())
	}

	best := 0
	out := Prediction{Scores: make(map[string]float64, len(scores))}
	for key, s := range scores {
		lbl, _ := m.encoder.Decode(key)
		out.Scores[lbl] = s
		if s > scores[best] {
			best = key
		}
	}
	out.Label, _ = m.encoder.Decode(best)
	return out, nil
}

// Evaluation summarizes predictions over a labeled corpus.
type Evaluation struct {
	Total    int
	Correct  int
	Accuracy float64
	PerLabel []LabelScore
}

// LabelScore counts records and correct predictions for one label.
type LabelScore struct {
	Label   string
	Support int
	Correct int
}

// Evaluate predicts every record of c and compares against its label.
// Labels unknown to the model count as misses and are listed after the
// model's own labels.
func (m *TrainedModel) Evaluate(c corpus.Corpus) (Evaluation, error) {
	if !m.fitted() {
		return Evaluation{}, internalerr.ErrUninitializedModel
	}

	var ev Evaluation
	index := make(map[string]int)
	for _, lbl := range m.encoder.Labels() {
		index[lbl] = len(ev.PerLabel)
		ev.PerLabel = append(ev.PerLabel, LabelScore{Label: lbl})
	}

	for _, r := range c {
		p, err := Predict(m, r.Text)
		if err != nil {
			return Evaluation{}, err
		}
		i, ok := index[r.Label]
		if !ok {
			i = len(ev.PerLabel)
			index[r.Label] = i
			ev.PerLabel = append(ev.PerLabel, LabelScore{Label: r.Label})
		}
		ev.PerLabel[i].Support++
		ev.Total++
		if p.Label == r.Label {
			ev.PerLabel[i].Correct++
			ev.Correct++
		}
	}
	if ev.Total > 0 {
		ev.Accuracy = float64(ev.Correct) / float64(ev.Total)
	}
	return ev, nil
}
