package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"

	"dupscore/internal/features"
)

const defaultThreshold = 0.5

// Artifact is the on-disk form of a logistic model.
type Artifact struct {
	Kind      string    `json:"kind"`
	Features  []string  `json:"features"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Threshold *float64  `json:"threshold,omitempty"`
}

// LogisticModel scores sigmoid(bias + w·x) and predicts Valid at or above the
// threshold.
type LogisticModel struct {
	weights   []float64
	bias      float64
	threshold float64
}

// LoadLogistic reads and validates an artifact file.
func LoadLogistic(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("decode artifact: %w", err)}
	}
	model, err := NewLogisticModel(art)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return model, nil
}

// NewLogisticModel validates art against the feature layout.
func NewLogisticModel(art Artifact) (*LogisticModel, error) {
	if art.Kind != "" && art.Kind != "logistic" {
		return nil, fmt.Errorf("artifact kind %q is not logistic", art.Kind)
	}
	if !slices.Equal(art.Features, features.Names()) {
		return nil, fmt.Errorf("artifact features %v do not match %v", art.Features, features.Names())
	}
	if len(art.Weights) != len(art.Features) {
		return nil, fmt.Errorf("artifact has %d weights for %d features", len(art.Weights), len(art.Features))
	}
	threshold := defaultThreshold
	if art.Threshold != nil {
		threshold = *art.Threshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("threshold %v must be within (0, 1)", threshold)
	}
	return &LogisticModel{
		weights:   slices.Clone(art.Weights),
		bias:      art.Bias,
		threshold: threshold,
	}, nil
}

// Name implements Model.
func (m *LogisticModel) Name() string { return "logistic" }

// Probability returns the model's confidence that vec is a valid pair.
func (m *LogisticModel) Probability(vec features.Vector) (float64, error) {
	if err := checkLayout(vec); err != nil {
		return 0, err
	}
	z := m.bias
	for i, f := range vec {
		z += m.weights[i] * f.Value
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// Predict implements Model.
func (m *LogisticModel) Predict(_ context.Context, vec features.Vector) (Label, error) {
	p, err := m.Probability(vec)
	if err != nil {
		return Invalid, err
	}
	if p >= m.threshold {
		return Valid, nil
	}
	return Invalid, nil
}
