// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package judge

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/postpulse/internal/metrics"
)

// Config configures the judgment orchestrator.
type Config struct {
	// CallTimeout bounds a single provider call.
	// Default: 20s.
	CallTimeout time.Duration

	// RequestsPerMinute rate-limits outbound provider calls.
	// Zero disables rate limiting.
	RequestsPerMinute int
}

// Result carries a judgment plus its provenance.
type Result struct {
	// Judgment is the validated judgment. Always schema-complete.
	Judgment Judgment

	// Provider is the provider that produced it, or "default" when both
	// providers were exhausted and the neutral vector was applied.
	Provider string

	// Defaulted reports whether the neutral default vector was used.
	Defaulted bool
}

// Judge obtains judgments from a primary provider with one fallback retry.
//
// The call sequence per content item is fixed: primary (bounded timeout) →
// fallback (bounded timeout) → neutral default vector. There are no retry
// loops; a circuit breaker per provider sheds calls to providers that are
// persistently failing so precomputation throughput degrades gracefully.
type Judge struct {
	primary  Provider
	fallback Provider
	cfg      Config
	limiter  *rate.Limiter
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
	logger   zerolog.Logger
}

// New creates a Judge. The fallback provider may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(primary, fallback Provider, cfg Config, logger zerolog.Logger) *Judge {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 20 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}

	j := &Judge{
		primary:  primary,
		fallback: fallback,
		cfg:      cfg,
		limiter:  limiter,
		breakers: make(map[string]*gobreaker.CircuitBreaker[[]byte]),
		logger:   logger.With().Str("component", "judge").Logger(),
	}

	j.breakers[primary.Name()] = j.newBreaker(primary.Name())
	if fallback != nil {
		j.breakers[fallback.Name()] = j.newBreaker(fallback.Name())
	}

	return j
}

// newBreaker builds the per-provider circuit breaker.
// Opens after 60% failures over at least 10 requests; recovers after 2 minutes.
func (j *Judge) newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			j.logger.Info().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("provider circuit state change")
		},
	})
}

// Score evaluates content. It never returns an error: after the fallback
// provider is exhausted the neutral default vector is applied, so callers
// always receive a schema-complete judgment.
func (j *Judge) Score(ctx context.Context, req Request) Result {
	if res, ok := j.tryProvider(ctx, j.primary, req); ok {
		return res
	}

	if j.fallback != nil {
		if res, ok := j.tryProvider(ctx, j.fallback, req); ok {
			metrics.JudgeFallbacks.Inc()
			return res
		}
	}

	metrics.JudgeDefaults.Inc()
	j.logger.Warn().Msg("all providers exhausted, applying default judgment vector")
	return Result{Judgment: Default(), Provider: "default", Defaulted: true}
}

// tryProvider runs one provider call through its breaker and parses the output.
func (j *Judge) tryProvider(ctx context.Context, p Provider, req Request) (Result, bool) {
	if j.limiter != nil {
		if err := j.limiter.Wait(ctx); err != nil {
			return Result{}, false
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, j.cfg.CallTimeout)
	defer cancel()

	cb := j.breakers[p.Name()]
	raw, err := cb.Execute(func() ([]byte, error) {
		return p.Evaluate(callCtx, req)
	})
	if err != nil {
		outcome := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.JudgeCalls.WithLabelValues(p.Name(), outcome).Inc()
		j.logger.Warn().Err(err).Str("provider", p.Name()).Msg("provider call failed")
		return Result{}, false
	}

	judgment, err := Parse(raw)
	if err != nil {
		metrics.JudgeCalls.WithLabelValues(p.Name(), "malformed").Inc()
		j.logger.Warn().Err(err).Str("provider", p.Name()).Msg("provider returned malformed judgment")
		return Result{}, false
	}

	metrics.JudgeCalls.WithLabelValues(p.Name(), "success").Inc()
	return Result{Judgment: judgment, Provider: p.Name()}, true
}
