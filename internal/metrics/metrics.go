// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package metrics provides Prometheus instrumentation for the prediction
// pipeline: feature extraction, LLM provider calls, ETL throughput, training
// runs and real-time prediction latency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Feature extraction metrics
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_extractions_total",
			Help: "Total number of feature extraction runs",
		},
		[]string{"platform", "outcome"}, // outcome: "success", "defaulted"
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feature_extraction_duration_seconds",
			Help:    "Duration of feature extraction including any LLM call",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// LLM judge metrics
	JudgeCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judge_provider_calls_total",
			Help: "Total number of LLM provider calls by outcome",
		},
		[]string{"provider", "outcome"}, // outcome: "success", "failure", "rejected", "malformed"
	)

	JudgeFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "judge_fallback_total",
			Help: "Total number of judgments served by the fallback provider",
		},
	)

	JudgeDefaults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "judge_default_vector_total",
			Help: "Total number of judgments resolved to the neutral default vector",
		},
	)

	// Ingest pipeline metrics
	IngestMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_messages_total",
			Help: "Content observation messages handled by the ingest pipeline",
		},
		[]string{"platform", "outcome"}, // outcome: "processed", "invalid", "failed"
	)

	// ETL metrics
	ETLRowsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_found_total",
			Help: "Raw analysis rows considered by ETL runs",
		},
		[]string{"platform"},
	)

	ETLRowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_processed_total",
			Help: "Raw analysis rows successfully converted to training rows",
		},
		[]string{"platform"},
	)

	ETLRowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rows_skipped_total",
			Help: "Raw analysis rows skipped by ETL, by reason",
		},
		[]string{"platform", "reason"}, // reason: "parse_error", "empty_text", "duplicate"
	)

	// Training metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Training runs by platform, target family and outcome",
		},
		[]string{"platform", "family", "outcome"}, // outcome: "success", "insufficient_data", "error"
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of ensemble training runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"platform", "family"},
	)

	TrainingSamples = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "training_samples",
			Help: "Sample count used by the most recent training run",
		},
		[]string{"platform", "family"},
	)

	// Registry metrics
	RegistryLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_registry_loads_total",
			Help: "Model bundle load attempts by outcome",
		},
		[]string{"platform", "family", "outcome"}, // outcome: "loaded", "cached", "failed"
	)

	// Prediction metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Prediction requests by platform, target family and outcome",
		},
		[]string{"platform", "family", "outcome"}, // outcome: "success", "not_found", "model_unavailable", "error"
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "End-to-end single prediction latency",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"platform", "family"},
	)

	BatchPredictionSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_prediction_size",
			Help:    "Number of entities per batch prediction request",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)
)
