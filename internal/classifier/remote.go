package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"dupscore/internal/features"
)

const defaultRemoteTimeout = 5 * time.Second

// RemoteModel calls an HTTP prediction service.
//
// Request body:
//
//	{"instances": [[...]], "feature_names": [...]}
//
// Response body:
//
//	{"predictions": [0 or 1]}
type RemoteModel struct {
	Endpoint string
	Client   *http.Client
}

// NewRemoteModel validates the endpoint. The timeout bounds every call in
// addition to the caller's context.
func NewRemoteModel(endpoint string, timeout time.Duration) (*RemoteModel, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &LoadError{Source: endpoint, Err: fmt.Errorf("endpoint must be an absolute URL")}
	}
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &RemoteModel{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}, nil
}

// Name implements Model.
func (m *RemoteModel) Name() string { return "remote" }

type remoteRequest struct {
	Instances    [][]float64 `json:"instances"`
	FeatureNames []string    `json:"feature_names"`
}

type remoteResponse struct {
	Predictions []int `json:"predictions"`
}

// Predict implements Model.
func (m *RemoteModel) Predict(ctx context.Context, vec features.Vector) (Label, error) {
	if err := checkLayout(vec); err != nil {
		return Invalid, err
	}
	payload, err := json.Marshal(remoteRequest{
		Instances:    [][]float64{vec.Values()},
		FeatureNames: vec.Names(),
	})
	if err != nil {
		return Invalid, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Invalid, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return Invalid, fmt.Errorf("predict call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Invalid, fmt.Errorf("predict call: status=%d body=%s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Invalid, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Predictions) != 1 {
		return Invalid, fmt.Errorf("expected 1 prediction, got %d", len(result.Predictions))
	}
	return LabelFromInt(result.Predictions[0])
}

// Ready sends an all-zero vector and checks that the service answers with a
// valid label.
func (m *RemoteModel) Ready(ctx context.Context) error {
	names := features.Names()
	vec := make(features.Vector, len(names))
	for i, name := range names {
		vec[i] = features.Feature{Name: name}
	}
	if _, err := m.Predict(ctx, vec); err != nil {
		return fmt.Errorf("readiness check: %w", err)
	}
	return nil
}
