package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"dupscore/internal/logging"
	"dupscore/internal/metrics"
	"dupscore/internal/scorer"
)

const requestIDHeader = "X-Request-ID"

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Store  string `json:"store"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.Observe(metrics.OutcomeFormat, time.Since(start))
			s.writeError(w, http.StatusRequestEntityTooLarge, scorer.FormatMessage)
			return
		}
		s.metrics.Observe(metrics.OutcomeFormat, time.Since(start))
		s.writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	result, err := s.service.Evaluate(ctx, string(body))
	if err != nil {
		status, msg := scorer.Classify(err)
		s.metrics.Observe(outcomeFor(err), time.Since(start))
		s.writeJSON(w, status, scorer.Response{Error: msg})
		return
	}
	s.metrics.Observe(result.Label.String(), time.Since(start))
	s.writeJSON(w, http.StatusOK, result.Response())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Model:  s.service.Model().Name(),
		Store:  s.service.Store().Name(),
	})
}

func outcomeFor(err error) string {
	switch scorer.Kind(err) {
	case scorer.KindFormat:
		return metrics.OutcomeFormat
	case scorer.KindNotFound:
		return metrics.OutcomeNotFound
	case scorer.KindSchema:
		return metrics.OutcomeSchema
	default:
		return metrics.OutcomeInternal
	}
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.metrics.Observe(metrics.OutcomeRateLimited, 0)
			w.Header().Set("Retry-After", "1")
			s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestID carries the caller's X-Request-ID, or a fresh one, through the
// request context and echoes it in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), r.Header.Get(requestIDHeader))
		id, _ := logging.RequestIDFromContext(ctx)
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, scorer.Response{Error: message})
}
