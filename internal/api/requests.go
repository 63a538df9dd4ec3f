// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// maxRequestBody caps request bodies at 1 MiB. Prediction and training
// requests are small; anything larger is malformed or hostile.
const maxRequestBody = 1 << 20

// maxBatchEntities bounds a single batch prediction request.
const maxBatchEntities = 100

// PredictRequest asks for a single prediction.
type PredictRequest struct {
	Platform string `json:"platform" validate:"required"`
	EntityID string `json:"entity_id" validate:"required"`
	Family   string `json:"family" validate:"required,oneof=reward position engagement"`
}

// PredictBatchRequest asks for predictions over multiple entities on
// one platform and family.
type PredictBatchRequest struct {
	Platform  string   `json:"platform" validate:"required"`
	EntityIDs []string `json:"entity_ids" validate:"required,min=1,max=100,dive,required"`
	Family    string   `json:"family" validate:"required,oneof=reward position engagement"`
}

// TrainRequest triggers a training run for one platform and family.
type TrainRequest struct {
	Platform string `json:"platform" validate:"required"`
	Family   string `json:"family" validate:"required,oneof=reward position engagement"`
}

// PopulateRequest triggers a backfill of the feature store from
// previously persisted raw analysis rows.
type PopulateRequest struct {
	Platform string `json:"platform" validate:"required"`
}

// ObserveRequest submits one observed post for asynchronous feature
// extraction. Outcome labels are optional; fresh posts have none yet.
type ObserveRequest struct {
	Platform   string    `json:"platform" validate:"required"`
	ContentID  string    `json:"content_id" validate:"required"`
	EntityID   string    `json:"entity_id" validate:"required"`
	Text       string    `json:"text" validate:"required"`
	Campaign   string    `json:"campaign,omitempty"`
	ObservedAt time.Time `json:"observed_at,omitempty"`

	Likes          int     `json:"likes,omitempty"`
	Retweets       int     `json:"retweets,omitempty"`
	Replies        int     `json:"replies,omitempty"`
	RewardDelta    float64 `json:"reward_delta,omitempty"`
	PositionChange int     `json:"position_change,omitempty"`
	FollowerCount  int     `json:"follower_count,omitempty"`
}

// decodeAndValidate reads a JSON request body into dst and runs
// struct validation. On failure it writes the error response and
// returns false; handlers should return immediately.
func decodeAndValidate(rw *ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			rw.BadRequest("request body is required")
		default:
			rw.BadRequest("invalid JSON request body: " + err.Error())
		}
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			rw.ValidationError("request validation failed", formatValidationErrors(verrs))
			return false
		}
		rw.BadRequest("request validation failed: " + err.Error())
		return false
	}

	return true
}

// formatValidationErrors converts validator errors into a
// field-to-message map suitable for the error details payload.
func formatValidationErrors(verrs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "oneof":
			details[field] = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
		case "min":
			details[field] = fmt.Sprintf("must contain at least %s items", fe.Param())
		case "max":
			details[field] = fmt.Sprintf("must contain at most %s items", fe.Param())
		default:
			details[field] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}
	return details
}
