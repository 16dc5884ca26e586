package classifier

import (
	"context"
	"fmt"
	"slices"
	"time"

	"dupscore/internal/config"
	"dupscore/internal/features"
)

// Label is the binary classification outcome.
type Label int

const (
	Invalid Label = 0
	Valid   Label = 1
)

func (l Label) String() string {
	if l == Valid {
		return "valid"
	}
	return "invalid"
}

// LabelFromInt maps a raw model output to a Label.
func LabelFromInt(v int) (Label, error) {
	switch v {
	case 0:
		return Invalid, nil
	case 1:
		return Valid, nil
	default:
		return Invalid, fmt.Errorf("model returned label %d, want 0 or 1", v)
	}
}

// Model predicts whether a feature vector describes a duplicate pair.
// Implementations are read-only after construction and safe for concurrent use.
type Model interface {
	Name() string
	Predict(ctx context.Context, vec features.Vector) (Label, error)
}

// LoadError reports a model that could not be prepared for serving.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrorKind classifies the error for response mapping.
func (e *LoadError) ErrorKind() string { return "model_load" }

// Load builds the model selected by cfg.Classifier.Kind.
func Load(cfg *config.Config) (Model, error) {
	if cfg == nil {
		return nil, &LoadError{Source: "config", Err: fmt.Errorf("config is nil")}
	}
	switch cfg.Classifier.Kind {
	case config.KindLogistic, "":
		return LoadLogistic(cfg.Paths.Model)
	case config.KindRemote:
		model, err := loadRemote(cfg.Classifier.Endpoint, cfg.ClassifierTimeout())
		if err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, &LoadError{Source: cfg.Classifier.Kind, Err: fmt.Errorf("unknown classifier kind")}
	}
}

// loadRemote builds a RemoteModel and refuses to return it until the endpoint
// has answered one prediction, so a dead service fails startup like a bad
// artifact would.
func loadRemote(endpoint string, timeout time.Duration) (*RemoteModel, error) {
	model, err := NewRemoteModel(endpoint, timeout)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := model.Ready(ctx); err != nil {
		return nil, &LoadError{Source: endpoint, Err: err}
	}
	return model, nil
}

func checkLayout(vec features.Vector) error {
	if len(vec) != features.Size {
		return fmt.Errorf("feature vector has %d entries, want %d", len(vec), features.Size)
	}
	if !slices.Equal(vec.Names(), features.Names()) {
		return fmt.Errorf("feature vector order does not match model layout")
	}
	return nil
}
