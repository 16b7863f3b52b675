package classify

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cognicore/docsense/pkg/docsense/featurize"
	"github.com/cognicore/docsense/pkg/docsense/internalerr"
	"github.com/cognicore/docsense/pkg/docsense/maxent"
)

// snapshotVersion is bumped whenever the snapshot layout changes.
const snapshotVersion = 1

// Persistable is implemented by components that can be saved inside a
// model snapshot. Kind selects the decoder registered for loading.
type Persistable interface {
	Kind() string
	json.Marshaler
}

// FeaturizerDecoder restores a featurizer from its JSON state.
type FeaturizerDecoder func(data []byte) (Featurizer, error)

// ClassifierDecoder restores a classifier from its JSON state.
type ClassifierDecoder func(data []byte) (Classifier, error)

var (
	registryMu  sync.RWMutex
	featurizers = map[string]FeaturizerDecoder{
		featurize.Kind: func(data []byte) (Featurizer, error) {
			f := &featurize.BagOfTokens{}
			if err := json.Unmarshal(data, f); err != nil {
				return nil, err
			}
			return f, nil
		},
	}
	classifiers = map[string]ClassifierDecoder{
		maxent.Kind: func(data []byte) (Classifier, error) {
			m := &maxent.Model{}
			if err := json.Unmarshal(data, m); err != nil {
				return nil, err
			}
			return m, nil
		},
	}
)

// RegisterFeaturizer makes a featurizer kind loadable by Restore.
func RegisterFeaturizer(kind string, decode FeaturizerDecoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	featurizers[kind] = decode
}

// RegisterClassifier makes a classifier kind loadable by Restore.
func RegisterClassifier(kind string, decode ClassifierDecoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	classifiers[kind] = decode
}

type snapshot struct {
	Version        int             `json:"version"`
	Labels         []string        `json:"labels"`
	FeaturizerKind string          `json:"featurizer_kind"`
	Featurizer     json.RawMessage `json:"featurizer"`
	ClassifierKind string          `json:"classifier_kind"`
	Classifier     json.RawMessage `json:"classifier"`
}

// MarshalBinary encodes the model as an opaque snapshot. Both components
// must implement Persistable.
func (m *TrainedModel) MarshalBinary() ([]byte, error) {
	if !m.fitted() {
		return nil, internalerr.ErrUninitializedModel
	}
	fp, ok := m.featurizer.(Persistable)
	if !ok {
		return nil, fmt.Errorf("%w: featurizer %T cannot be persisted", internalerr.ErrInvalidInput, m.featurizer)
	}
	cp, ok := m.classifier.(Persistable)
	if !ok {
		return nil, fmt.Errorf("%w: classifier %T cannot be persisted", internalerr.ErrInvalidInput, m.classifier)
	}

	fdata, err := fp.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode featurizer: %w", err)
	}
	cdata, err := cp.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode classifier: %w", err)
	}

	return json.Marshal(snapshot{
		Version:        snapshotVersion,
		Labels:         m.encoder.Labels(),
		FeaturizerKind: fp.Kind(),
		Featurizer:     fdata,
		ClassifierKind: cp.Kind(),
		Classifier:     cdata,
	})
}

// UnmarshalBinary restores a snapshot written by MarshalBinary.
func (m *TrainedModel) UnmarshalBinary(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: decode snapshot: %v", internalerr.ErrInvalidInput, err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: snapshot version %d, want %d", internalerr.ErrInvalidInput, snap.Version, snapshotVersion)
	}
	if len(snap.Labels) < 2 {
		return fmt.Errorf("%w: snapshot has %d labels", internalerr.ErrInvalidInput, len(snap.Labels))
	}

	registryMu.RLock()
	decodeF, okF := featurizers[snap.FeaturizerKind]
	decodeC, okC := classifiers[snap.ClassifierKind]
	registryMu.RUnlock()
	if !okF {
		return fmt.Errorf("%w: unknown featurizer kind %q", internalerr.ErrInvalidInput, snap.FeaturizerKind)
	}
	if !okC {
		return fmt.Errorf("%w: unknown classifier kind %q", internalerr.ErrInvalidInput, snap.ClassifierKind)
	}

	feat, err := decodeF(snap.Featurizer)
	if err != nil {
		return fmt.Errorf("decode featurizer: %w", err)
	}
	cls, err := decodeC(snap.Classifier)
	if err != nil {
		return fmt.Errorf("decode classifier: %w", err)
	}

	*m = TrainedModel{encoder: NewLabelEncoder(snap.Labels), featurizer: feat, classifier: cls}
	return nil
}

// Restore decodes a snapshot into a new TrainedModel.
func Restore(data []byte) (*TrainedModel, error) {
	m := &TrainedModel{}
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return m, nil
}
