package maxent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/docsense/pkg/docsense/featurize"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
)

func vec(pairs ...float64) featurize.Vector {
	var v featurize.Vector
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Indices = append(v.Indices, int(pairs[i]))
		v.Values = append(v.Values, pairs[i+1])
	}
	return v
}

// Three separable classes over four features.
func toySamples() []Sample {
	return []Sample{
		{X: vec(0, 1), Y: 0},
		{X: vec(0, 0.8, 3, 0.2), Y: 0},
		{X: vec(1, 1), Y: 1},
		{X: vec(1, 0.7, 3, 0.3), Y: 1},
		{X: vec(2, 1), Y: 2},
		{X: vec(2, 0.9, 3, 0.1), Y: 2},
	}
}

func TestTrainSeparatesClasses(t *testing.T) {
	m, err := DefaultTrainer().Train(toySamples(), 3, 4)
	require.NoError(t, err)

	assert.Equal(t, 0, m.Predict(vec(0, 1)))
	assert.Equal(t, 1, m.Predict(vec(1, 1)))
	assert.Equal(t, 2, m.Predict(vec(2, 1)))
	assert.Less(t, m.Loss, 0.8)

	scores := m.Scores(vec(0, 1))
	require.Len(t, scores, 3)
	var sum float64
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestTrainIsDeterministicForSeed(t *testing.T) {
	a, err := DefaultTrainer().Train(toySamples(), 3, 4)
	require.NoError(t, err)
	b, err := DefaultTrainer().Train(toySamples(), 3, 4)
	require.NoError(t, err)
	assert.Equal(t, a.Weights, b.Weights)
	assert.Equal(t, a.Bias, b.Bias)

	other := DefaultTrainer()
	other.Seed = 7
	c, err := other.Train(toySamples(), 3, 4)
	require.NoError(t, err)
	assert.NotEqual(t, a.Weights, c.Weights)
}

func TestEmptyVectorStillPredicts(t *testing.T) {
	m, err := DefaultTrainer().Train(toySamples(), 3, 4)
	require.NoError(t, err)
	got := m.Predict(featurize.Vector{})
	assert.GreaterOrEqual(t, got, 0)
	assert.Less(t, got, 3)
}

func TestTrainErrors(t *testing.T) {
	_, err := DefaultTrainer().Train(nil, 3, 4)
	assert.ErrorIs(t, err, internalerr.ErrInsufficientData)

	_, err = DefaultTrainer().Train(toySamples(), 1, 4)
	assert.ErrorIs(t, err, internalerr.ErrInsufficientData)

	_, err = DefaultTrainer().Train([]Sample{{X: vec(9, 1), Y: 0}}, 2, 4)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = DefaultTrainer().Train([]Sample{{X: vec(0, 1), Y: 5}}, 2, 4)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	bad := DefaultTrainer()
	bad.Epochs = 0
	_, err = bad.Train(toySamples(), 3, 4)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestArgmaxTiesGoLow(t *testing.T) {
	assert.Equal(t, 0, argmax([]float64{0.5, 0.5}))
	assert.Equal(t, 1, argmax([]float64{0.2, 0.4, 0.4}))
}

func TestJSONRoundTrip(t *testing.T) {
	m, err := DefaultTrainer().Train(toySamples(), 3, 4)
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var restored Model
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, m.Scores(vec(1, 1)), restored.Scores(vec(1, 1)))
	assert.Equal(t, Kind, restored.Kind())

	err = json.Unmarshal([]byte(`{"classes":2,"dim":1,"weights":[[0]],"bias":[0,0]}`), &restored)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}
