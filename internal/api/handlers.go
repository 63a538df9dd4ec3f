// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/tomtom215/postpulse/internal/bundle"
	"github.com/tomtom215/postpulse/internal/database"
	"github.com/tomtom215/postpulse/internal/etl"
	"github.com/tomtom215/postpulse/internal/ingest"
	"github.com/tomtom215/postpulse/internal/predictor"
	"github.com/tomtom215/postpulse/internal/registry"
	"github.com/tomtom215/postpulse/internal/training"
)

// ContentPublisher queues observed content for asynchronous feature
// extraction. Implemented by the ingest pipeline.
type ContentPublisher interface {
	PublishContentObserved(ev *ingest.ContentObserved) error
}

// Handler holds the dependencies for all API endpoints.
type Handler struct {
	db        *database.DB
	predictor *predictor.Predictor
	trainer   *training.Trainer
	etl       *etl.ETL
	registry  *registry.Registry
	publisher ContentPublisher
	platforms []string
	validate  *validator.Validate
	logger    zerolog.Logger
	startTime time.Time
}

// NewHandler creates a handler wired to the prediction pipeline. The
// publisher may be nil when ingest is disabled; the observe endpoint
// then answers 503.
func NewHandler(
	db *database.DB,
	pred *predictor.Predictor,
	trainer *training.Trainer,
	pipeline *etl.ETL,
	reg *registry.Registry,
	publisher ContentPublisher,
	platforms []string,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		db:        db,
		predictor: pred,
		trainer:   trainer,
		etl:       pipeline,
		registry:  reg,
		publisher: publisher,
		platforms: platforms,
		validate:  newValidator(),
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
}

// newValidator builds a validator that reports json field names in
// validation errors instead of Go struct field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// knownPlatform reports whether the platform is configured for serving.
func (h *Handler) knownPlatform(platform string) bool {
	for _, p := range h.platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// HandlePredict serves POST /api/v1/predict.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req PredictRequest
	if !decodeAndValidate(rw, r, h.validate, &req) {
		return
	}
	if !h.knownPlatform(req.Platform) {
		rw.BadRequest("unknown platform: " + req.Platform)
		return
	}

	pred, err := h.predictor.Predict(r.Context(), req.Platform, req.EntityID, req.Family)
	switch {
	case err == nil:
		rw.Success(pred)
	case errors.Is(err, predictor.ErrNotFound):
		rw.NotFound("no feature record for entity " + req.EntityID + " on " + req.Platform)
	case errors.Is(err, predictor.ErrModelUnavailable):
		rw.ServiceUnavailable("no trained model for " + req.Platform + "/" + req.Family)
	default:
		h.logger.Error().Err(err).
			Str("platform", req.Platform).
			Str("entity_id", req.EntityID).
			Str("family", req.Family).
			Msg("Prediction failed")
		rw.InternalError("prediction failed")
	}
}

// HandlePredictBatch serves POST /api/v1/predict/batch.
func (h *Handler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req PredictBatchRequest
	if !decodeAndValidate(rw, r, h.validate, &req) {
		return
	}
	if !h.knownPlatform(req.Platform) {
		rw.BadRequest("unknown platform: " + req.Platform)
		return
	}

	result := h.predictor.PredictBatch(r.Context(), req.Platform, req.EntityIDs, req.Family)
	rw.Success(result)
}

// TrainResponse summarizes a completed training run.
type TrainResponse struct {
	Platform     string             `json:"platform"`
	Family       string             `json:"family"`
	SampleCount  int                `json:"sample_count"`
	TrainedAt    time.Time          `json:"trained_at"`
	Ensemble     bundle.EvalMetrics `json:"ensemble"`
	ModelsLoaded int                `json:"models_loaded"`
}

// HandleTrain serves POST /api/v1/train. Training runs synchronously;
// on success the model registry is reloaded so the new bundle serves
// immediately.
func (h *Handler) HandleTrain(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req TrainRequest
	if !decodeAndValidate(rw, r, h.validate, &req) {
		return
	}
	if !h.knownPlatform(req.Platform) {
		rw.BadRequest("unknown platform: " + req.Platform)
		return
	}

	b, err := h.trainer.Train(r.Context(), req.Platform, req.Family)
	switch {
	case err == nil:
		loaded := h.registry.Reload(req.Platform)
		rw.Success(TrainResponse{
			Platform:     b.Platform,
			Family:       b.Family,
			SampleCount:  b.SampleCount,
			TrainedAt:    b.TrainedAt,
			Ensemble:     b.Metrics["ensemble"],
			ModelsLoaded: loaded,
		})
	case errors.Is(err, training.ErrInsufficientData):
		rw.BadRequest(err.Error())
	default:
		h.logger.Error().Err(err).
			Str("platform", req.Platform).
			Str("family", req.Family).
			Msg("Training run failed")
		rw.InternalError("training failed")
	}
}

// HandlePopulate serves POST /api/v1/etl/populate. It backfills the
// feature store and training tables from persisted raw analysis rows.
func (h *Handler) HandlePopulate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req PopulateRequest
	if !decodeAndValidate(rw, r, h.validate, &req) {
		return
	}
	if !h.knownPlatform(req.Platform) {
		rw.BadRequest("unknown platform: " + req.Platform)
		return
	}

	result, err := h.etl.PopulateFromExistingAnalysis(r.Context(), req.Platform)
	if err != nil {
		h.logger.Error().Err(err).Str("platform", req.Platform).Msg("ETL populate failed")
		rw.DatabaseError(err)
		return
	}
	rw.Success(result)
}

// HandleObserve serves POST /api/v1/content/observe. It validates the
// payload and hands it to the ingest pipeline; extraction happens
// asynchronously, so the response is 202 Accepted.
func (h *Handler) HandleObserve(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.publisher == nil {
		rw.ServiceUnavailable("content ingestion is not enabled")
		return
	}

	var req ObserveRequest
	if !decodeAndValidate(rw, r, h.validate, &req) {
		return
	}
	if !h.knownPlatform(req.Platform) {
		rw.BadRequest("unknown platform: " + req.Platform)
		return
	}

	observedAt := req.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	ev := &ingest.ContentObserved{
		Platform:       req.Platform,
		ContentID:      req.ContentID,
		EntityID:       req.EntityID,
		Text:           req.Text,
		Campaign:       req.Campaign,
		ObservedAt:     observedAt,
		Likes:          req.Likes,
		Retweets:       req.Retweets,
		Replies:        req.Replies,
		RewardDelta:    req.RewardDelta,
		PositionChange: req.PositionChange,
		FollowerCount:  req.FollowerCount,
	}
	if err := h.publisher.PublishContentObserved(ev); err != nil {
		h.logger.Error().Err(err).
			Str("platform", req.Platform).
			Str("content_id", req.ContentID).
			Msg("failed to queue observed content")
		rw.InternalError("failed to queue content for processing")
		return
	}

	rw.Accepted(map[string]string{
		"platform":   req.Platform,
		"content_id": req.ContentID,
		"status":     "queued",
	})
}

// HandleModelStatus serves GET /api/v1/models/status. It reports every
// configured (platform, family) slot, including ones never trained.
func (h *Handler) HandleModelStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]interface{}{
		"models": h.registry.Status(h.platforms),
	})
}

// HandleHealth serves GET /healthz. Liveness only: the process is up.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// HandleReady serves GET /readyz. Readiness requires a working
// database connection; models may still be absent (predictions return
// 503 per family until trained).
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Readiness check failed: database unreachable")
		rw.ServiceUnavailable("database unreachable")
		return
	}
	rw.Success(map[string]interface{}{
		"status": "ready",
	})
}
