// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package ingest implements the asynchronous content observation
// pipeline. Observed posts are published to an in-process watermill
// channel; a pool of workers runs feature extraction (including the
// LLM judge call) off the serving path and persists the raw analysis
// row and the serving-side feature record.
package ingest

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// TopicContentObserved is the watermill topic for observed content.
const TopicContentObserved = "content.observed"

// ContentObserved is one observed post together with whatever outcome
// labels were known at observation time. Outcome fields may be zero
// for fresh posts; ETL picks up later label updates from the raw
// analysis store.
type ContentObserved struct {
	Platform   string    `json:"platform"`
	ContentID  string    `json:"content_id"`
	EntityID   string    `json:"entity_id"`
	Text       string    `json:"text"`
	Campaign   string    `json:"campaign,omitempty"`
	ObservedAt time.Time `json:"observed_at"`

	Likes          int     `json:"likes"`
	Retweets       int     `json:"retweets"`
	Replies        int     `json:"replies"`
	RewardDelta    float64 `json:"reward_delta"`
	PositionChange int     `json:"position_change"`
	FollowerCount  int     `json:"follower_count"`
}

// Validate checks the fields required to process the event at all.
func (e *ContentObserved) Validate() error {
	if e.Platform == "" {
		return fmt.Errorf("content observed event: platform is required")
	}
	if e.ContentID == "" {
		return fmt.Errorf("content observed event: content_id is required")
	}
	if e.EntityID == "" {
		return fmt.Errorf("content observed event: entity_id is required")
	}
	if e.Text == "" {
		return fmt.Errorf("content observed event: text is required")
	}
	return nil
}

// NewMessage serializes the event into a watermill message.
func (e *ContentObserved) NewMessage() (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal content observed event: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), payload), nil
}

// parseContentObserved deserializes and validates a message payload.
func parseContentObserved(msg *message.Message) (*ContentObserved, error) {
	var ev ContentObserved
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal content observed event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
