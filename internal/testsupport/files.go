package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dupscore/internal/classifier"
	"dupscore/internal/features"
)

// Artifact returns a logistic model that accepts pairs whose titles and
// artists agree and rejects pairs whose titles and artists are unrelated.
// Contributors carry no weight; a shared ISRC adds confidence.
func Artifact() classifier.Artifact {
	names := features.Names()
	weights := make([]float64, len(names))
	for i, name := range names {
		switch {
		case strings.HasPrefix(name, "title_"), strings.HasPrefix(name, "artists_"):
			weights[i] = 0.02
		case name == features.IsrcsCoincidence:
			weights[i] = 2
		}
	}
	threshold := 0.5
	return classifier.Artifact{
		Kind:      "logistic",
		Features:  names,
		Weights:   weights,
		Bias:      -14,
		Threshold: &threshold,
	}
}

// WriteModel stores Artifact as JSON at path.
func WriteModel(t testing.TB, path string) {
	t.Helper()
	WriteJSON(t, path, Artifact())
}

// WriteJSON marshals v into path, creating parent directories.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MustModel loads the standard test artifact.
func MustModel(t testing.TB) *classifier.LogisticModel {
	t.Helper()
	model, err := classifier.NewLogisticModel(Artifact())
	if err != nil {
		t.Fatalf("build test model: %v", err)
	}
	return model
}
