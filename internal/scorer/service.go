package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dupscore/internal/classifier"
	"dupscore/internal/features"
	"dupscore/internal/logging"
	"dupscore/internal/records"
)

// Stage names a step of the request pipeline.
type Stage string

const (
	StageReceived   Stage = "received"
	StageParsed     Stage = "parsed"
	StageFetched    Stage = "fetched"
	StageFeaturized Stage = "featurized"
	StageClassified Stage = "classified"
	StageResponded  Stage = "responded"
)

// Response is the body returned to the caller.
type Response struct {
	Class string `json:"class,omitempty"`
	Error string `json:"error,omitempty"`
}

// JSON renders the response body. '&' and other HTML characters are kept
// literal so the format message reads as written.
func (r Response) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Result carries everything computed for one pair.
type Result struct {
	Pair   Pair
	Vector features.Vector
	Label  classifier.Label
}

// Response renders the result for the caller.
func (r Result) Response() Response {
	return Response{Class: r.Label.String()}
}

// StageError records the stage at which the pipeline stopped.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Service scores query/match pairs against a record store and a model.
type Service struct {
	store  records.Fetcher
	model  classifier.Model
	logger *slog.Logger
}

// NewService wires the pipeline collaborators.
func NewService(store records.Fetcher, model classifier.Model, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("scorer: record store is required")
	}
	if model == nil {
		return nil, errors.New("scorer: model is required")
	}
	return &Service{
		store:  store,
		model:  model,
		logger: logging.NewComponentLogger(logger, "scorer"),
	}, nil
}

// Store returns the record backend.
func (s *Service) Store() records.Fetcher { return s.store }

// Model returns the classifier.
func (s *Service) Model() classifier.Model { return s.model }

// Handle runs the full pipeline on a raw request body. It never returns an
// error; every failure resolves to an error Response.
func (s *Service) Handle(ctx context.Context, body string) Response {
	result, err := s.Evaluate(ctx, body)
	if err != nil {
		_, msg := Classify(err)
		return Response{Error: msg}
	}
	return result.Response()
}

// Evaluate parses body and scores the pair. Errors are *StageError values
// wrapping the typed pipeline error; use Classify to render them. A panic in
// any stage is recovered and reported as an internal error.
func (s *Service) Evaluate(ctx context.Context, body string) (Result, error) {
	ctx, logger := s.requestLogger(ctx)
	stage := StageReceived
	return s.guard(&logger, &stage, func() (Result, error) {
		logger.Debug("request received", logging.String(logging.FieldStage, string(stage)))

		pair, err := ParseQuery(DecodeBody(body))
		if err != nil {
			return Result{}, &StageError{Stage: StageParsed, Err: err}
		}
		stage = StageParsed
		logger = withPair(logger, pair)
		logger.Debug("request parsed", logging.String(logging.FieldStage, string(stage)))

		return s.score(ctx, logger, pair, &stage)
	})
}

// Score runs fetch, featurize, and classify for an already parsed pair. It
// recovers and logs the same way Evaluate does.
func (s *Service) Score(ctx context.Context, pair Pair) (Result, error) {
	ctx, logger := s.requestLogger(ctx)
	logger = withPair(logger, pair)
	stage := StageParsed
	return s.guard(&logger, &stage, func() (Result, error) {
		return s.score(ctx, logger, pair, &stage)
	})
}

func (s *Service) requestLogger(ctx context.Context) (context.Context, *slog.Logger) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := logging.RequestIDFromContext(ctx); !ok {
		ctx = logging.WithRequestID(ctx, "")
	}
	return ctx, logging.WithContext(ctx, s.logger)
}

func withPair(logger *slog.Logger, pair Pair) *slog.Logger {
	return logger.With(
		logging.String(logging.FieldQueryID, pair.QueryID),
		logging.String(logging.FieldMatchID, pair.MatchID),
	)
}

// guard runs fn, converting a panic into an internal StageError at the last
// reached stage, and logs the outcome once. logger and stage are read after
// fn returns so updates made inside fn are reported.
func (s *Service) guard(logger **slog.Logger, stage *Stage, fn func() (Result, error)) (result Result, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = Result{}
			err = &StageError{Stage: *stage, Err: fmt.Errorf("panic: %v", r)}
		}
		s.logOutcome(*logger, *stage, result, err, time.Since(start))
	}()
	return fn()
}

func (s *Service) score(ctx context.Context, logger *slog.Logger, pair Pair, stage *Stage) (Result, error) {
	recs, err := s.store.FetchPair(ctx, pair.QueryID, pair.MatchID)
	if err != nil {
		return Result{}, &StageError{Stage: StageFetched, Err: fmt.Errorf("fetch records from %s: %w", s.store.Name(), err)}
	}
	row, err := features.Join(pair.QueryID, pair.MatchID, recs)
	if err != nil {
		return Result{}, &StageError{Stage: StageFetched, Err: err}
	}
	*stage = StageFetched
	logger.Debug("records fetched",
		logging.String(logging.FieldStage, string(*stage)),
		logging.Int("records", len(recs)),
	)

	vec, err := features.Build(row)
	if err != nil {
		return Result{}, &StageError{Stage: StageFeaturized, Err: err}
	}
	*stage = StageFeaturized
	logger.Debug("features built", logging.String(logging.FieldStage, string(*stage)))

	label, err := s.model.Predict(ctx, vec)
	if err != nil {
		return Result{}, &StageError{Stage: StageClassified, Err: fmt.Errorf("predict with %s: %w", s.model.Name(), err)}
	}
	*stage = StageClassified

	return Result{Pair: pair, Vector: vec, Label: label}, nil
}

func (s *Service) logOutcome(logger *slog.Logger, reached Stage, result Result, err error, elapsed time.Duration) {
	if err == nil {
		logger.Info("pair classified",
			logging.String(logging.FieldStage, string(StageResponded)),
			logging.String("class", result.Label.String()),
			logging.Duration("elapsed", elapsed),
		)
		return
	}

	failed := reached
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		failed = stageErr.Stage
	}
	attrs := logging.Args(
		logging.String(logging.FieldStage, string(StageResponded)),
		logging.String("failed_stage", string(failed)),
		logging.String("error_kind", Kind(err)),
		logging.Duration("elapsed", elapsed),
		logging.Error(err),
	)
	if Kind(err) == KindInternal {
		logger.Error("request failed", attrs...)
		return
	}
	logger.Warn("request rejected", attrs...)
}
