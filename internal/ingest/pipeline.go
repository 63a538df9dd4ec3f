// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/postpulse/internal/config"
	"github.com/tomtom215/postpulse/internal/database"
	"github.com/tomtom215/postpulse/internal/features"
	"github.com/tomtom215/postpulse/internal/metrics"
)

// Pipeline connects an in-process watermill pub/sub to the feature
// extraction workers. Publish never blocks on extraction: messages
// buffer in the channel and a worker pool drains them.
//
// Messages are always acked. The channel is in-process with no DLQ,
// so a nack would redeliver the same poison message forever; failures
// are surfaced through logs and the ingest_messages_total metric
// instead.
type Pipeline struct {
	db        *database.DB
	extractor *features.Extractor
	pubsub    *gochannel.GoChannel
	cfg       config.IngestConfig
	logger    zerolog.Logger

	// ready closes once the subscription is established. Publishes
	// before that point are dropped by the channel.
	ready     chan struct{}
	readyOnce sync.Once

	wg sync.WaitGroup
}

// New creates an ingest pipeline. Zero or negative config values fall
// back to the documented defaults.
func New(db *database.DB, extractor *features.Extractor, cfg config.IngestConfig, logger zerolog.Logger) *Pipeline {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 30 * time.Second
	}

	componentLogger := logger.With().Str("component", "ingest").Logger()
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.BufferSize),
	}, newWatermillLogger(componentLogger))

	return &Pipeline{
		db:        db,
		extractor: extractor,
		pubsub:    pubsub,
		cfg:       cfg,
		logger:    componentLogger,
		ready:     make(chan struct{}),
	}
}

// Ready returns a channel that closes once the pipeline is consuming.
// Callers that must not lose messages should wait on it before
// publishing.
func (p *Pipeline) Ready() <-chan struct{} {
	return p.ready
}

// PublishContentObserved queues one observed post for asynchronous
// extraction. Returns an error if the event is invalid or the channel
// is closed.
func (p *Pipeline) PublishContentObserved(ev *ContentObserved) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	msg, err := ev.NewMessage()
	if err != nil {
		return err
	}
	if err := p.pubsub.Publish(TopicContentObserved, msg); err != nil {
		return fmt.Errorf("publish content observed: %w", err)
	}
	return nil
}

// Run subscribes to the content topic and processes messages with the
// configured worker pool until the context is canceled. The workers
// share one subscription, so each message is handled exactly once.
func (p *Pipeline) Run(ctx context.Context) error {
	messages, err := p.pubsub.Subscribe(ctx, TopicContentObserved)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicContentObserved, err)
	}
	p.readyOnce.Do(func() { close(p.ready) })

	p.logger.Info().
		Int("workers", p.cfg.Workers).
		Int("buffer_size", p.cfg.BufferSize).
		Msg("Ingest pipeline started")

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, messages)
	}

	<-ctx.Done()

	// Bound the drain: workers finish their in-flight message, then
	// see the closed subscription channel and exit.
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(p.cfg.CloseTimeout):
		p.logger.Warn().Msg("Ingest workers did not drain before close timeout")
	}

	return ctx.Err()
}

// Close shuts down the pub/sub channel. Pending unconsumed messages
// are dropped.
func (p *Pipeline) Close() error {
	return p.pubsub.Close()
}

func (p *Pipeline) worker(ctx context.Context, messages <-chan *message.Message) {
	defer p.wg.Done()
	for msg := range messages {
		p.handleMessage(ctx, msg)
		msg.Ack()
	}
}

func (p *Pipeline) handleMessage(ctx context.Context, msg *message.Message) {
	ev, err := parseContentObserved(msg)
	if err != nil {
		metrics.IngestMessages.WithLabelValues("unknown", "invalid").Inc()
		p.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping invalid ingest message")
		return
	}

	if err := p.processEvent(ctx, ev); err != nil {
		metrics.IngestMessages.WithLabelValues(ev.Platform, "failed").Inc()
		p.logger.Error().Err(err).
			Str("platform", ev.Platform).
			Str("content_id", ev.ContentID).
			Msg("Ingest processing failed")
		return
	}

	metrics.IngestMessages.WithLabelValues(ev.Platform, "processed").Inc()
	p.logger.Debug().
		Str("platform", ev.Platform).
		Str("content_id", ev.ContentID).
		Str("entity_id", ev.EntityID).
		Msg("Content ingested")
}

// processEvent runs extraction and persists both destinations: the
// raw analysis row (with the judgment blob for later ETL replays) and
// the serving-side feature record.
func (p *Pipeline) processEvent(ctx context.Context, ev *ContentObserved) error {
	rec, judgment, provider, err := p.extractor.ExtractJudged(ctx, features.Input{
		ContentID:  ev.ContentID,
		Platform:   ev.Platform,
		Text:       ev.Text,
		Context:    ev.Campaign,
		ObservedAt: ev.ObservedAt,
	})
	if err != nil {
		return fmt.Errorf("extract %s/%s: %w", ev.Platform, ev.ContentID, err)
	}

	// A defaulted judgment is a placeholder, not ground truth. The raw
	// row keeps its outcome labels for a later re-judge, but the blob
	// stays empty so ETL's replay query never trains on it.
	rawJudgment := ""
	if provider != features.ProviderDefault {
		blob, err := json.Marshal(judgment)
		if err != nil {
			return fmt.Errorf("marshal judgment: %w", err)
		}
		rawJudgment = string(blob)
	}

	row := &database.RawAnalysis{
		Platform:       ev.Platform,
		ContentID:      ev.ContentID,
		EntityID:       ev.EntityID,
		ContentText:    ev.Text,
		RawJudgment:    string(rawJudgment),
		LLMProvider:    provider,
		ObservedAt:     rec.ExtractedAt,
		Likes:          ev.Likes,
		Retweets:       ev.Retweets,
		Replies:        ev.Replies,
		RewardDelta:    ev.RewardDelta,
		PositionChange: ev.PositionChange,
		FollowerCount:  ev.FollowerCount,
		Campaign:       ev.Campaign,
	}
	if err := p.db.InsertRawAnalysis(ctx, row); err != nil {
		return err
	}

	return p.db.InsertFeatureRecord(ctx, ev.EntityID, rec)
}
