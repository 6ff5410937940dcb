// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/respite/internal/config"
	"github.com/tomtom215/respite/internal/logging"
	"github.com/tomtom215/respite/internal/metrics"
)

// Call outcomes recorded in metrics.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRejected    = "rejected"
	OutcomeRateLimited = "rate_limited"
)

// breakerName labels the classifier breaker in metrics and logs.
const breakerName = "classifier"

// maxResponseBytes bounds the classifier response body.
const maxResponseBytes = 64 << 10

var (
	// ErrRateLimited is returned when the local token bucket is empty.
	ErrRateLimited = errors.New("classifier rate limited")

	// ErrUnavailable is returned while the circuit is open.
	ErrUnavailable = errors.New("classifier unavailable")
)

// StatusError is a non-2xx classifier response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("classifier returned status %d: %s", e.StatusCode, e.Body)
}

type predictRequest struct {
	Features map[string]string `json:"features"`
}

// Prediction is a classifier response.
type Prediction struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence,omitempty"`
}

// HTTPClassifier predicts tags with a remote model.
type HTTPClassifier struct {
	url     string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[Prediction]
}

// New creates an HTTP classifier. A nil client uses a client with no
// timeout of its own; the per-call timeout comes from cfg.Timeout.
func New(cfg config.ClassifierConfig, client *http.Client) *HTTPClassifier {
	if client == nil {
		client = &http.Client{}
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[Prediction](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= failures
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("opening classifier circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation does not count as a failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}

	return &HTTPClassifier{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		cb:      cb,
	}
}

// PredictTag returns the predicted tag for features.
func (c *HTTPClassifier) PredictTag(ctx context.Context, features map[string]string) (string, error) {
	p, err := c.Predict(ctx, features)
	if err != nil {
		return "", err
	}
	return p.Tag, nil
}

// Predict calls the classifier and returns the full prediction.
func (c *HTTPClassifier) Predict(ctx context.Context, features map[string]string) (Prediction, error) {
	if !c.limiter.Allow() {
		metrics.RecordClassifierCall(OutcomeRateLimited)
		return Prediction{}, ErrRateLimited
	}

	p, err := c.cb.Execute(func() (Prediction, error) {
		return c.call(ctx, features)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordClassifierCall(OutcomeRejected)
			return Prediction{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		metrics.RecordClassifierCall(OutcomeError)
		return Prediction{}, err
	}

	metrics.RecordClassifierCall(OutcomeOK)
	return p, nil
}

// State returns the breaker state name.
func (c *HTTPClassifier) State() string {
	return c.cb.State().String()
}

func (c *HTTPClassifier) call(ctx context.Context, features map[string]string) (Prediction, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return Prediction{}, fmt.Errorf("encode classifier request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("build classifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Prediction{}, fmt.Errorf("read classifier response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Prediction{}, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var p Prediction
	if err := json.Unmarshal(data, &p); err != nil {
		return Prediction{}, fmt.Errorf("decode classifier response: %w", err)
	}
	p.Tag = strings.TrimSpace(p.Tag)
	return p, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Static always predicts the same tag.
type Static string

// PredictTag returns the static tag.
func (s Static) PredictTag(context.Context, map[string]string) (string, error) {
	return string(s), nil
}

// Func adapts a function to a tag predictor.
type Func func(ctx context.Context, features map[string]string) (string, error)

// PredictTag calls f.
func (f Func) PredictTag(ctx context.Context, features map[string]string) (string, error) {
	return f(ctx, features)
}
