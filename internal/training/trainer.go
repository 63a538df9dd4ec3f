// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

// Package training fits the per-platform, per-family model ensembles
// and persists them as atomic bundles.
//
// A training run loads every row for its (platform, family), splits
// train/test with a fixed seed, fits the scaler on the training split
// only, fits each ensemble member on the same scaled matrix, evaluates
// on the held-out split plus k-fold cross-validation, and writes one
// bundle. Runs below the minimum sample threshold fail fast and write
// nothing.
package training

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/postpulse/internal/bundle"
	"github.com/tomtom215/postpulse/internal/database"
	"github.com/tomtom215/postpulse/internal/features"
	"github.com/tomtom215/postpulse/internal/metrics"
	"github.com/tomtom215/postpulse/internal/training/estimators"
)

// ErrInsufficientData is returned when a (platform, family) has too
// few training rows. No partial bundle is written.
var ErrInsufficientData = errors.New("training: insufficient training data")

// Config contains trainer configuration.
type Config struct {
	// MinSamples is the smallest row count a run will accept.
	MinSamples int
	// TestFraction is the held-out share of the split.
	TestFraction float64
	// Seed fixes the split, fold, and estimator randomness.
	Seed int64
	// KFolds is the cross-validation fold count.
	KFolds int
	// KeepVersions bounds how many bundle versions survive pruning.
	KeepVersions int
}

// DefaultConfig returns the default trainer configuration.
func DefaultConfig() Config {
	return Config{
		MinSamples:   25,
		TestFraction: 0.2,
		Seed:         42,
		KFolds:       5,
		KeepVersions: 3,
	}
}

// Trainer runs training for one database and bundle store.
type Trainer struct {
	db     *database.DB
	store  *bundle.Store
	cfg    Config
	logger zerolog.Logger
}

// New creates a trainer.
func New(db *database.DB, store *bundle.Store, cfg Config, logger zerolog.Logger) *Trainer {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 25
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	if cfg.KFolds < 2 {
		cfg.KFolds = 5
	}
	if cfg.KeepVersions < 1 {
		cfg.KeepVersions = 3
	}
	return &Trainer{
		db:     db,
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "trainer").Logger(),
	}
}

// memberSpec names one ensemble member and how to build a fresh,
// unfitted instance. Cross-validation and the final fit each build
// their own instances so no state leaks between folds.
type memberSpec struct {
	name  string
	build func() estimators.Estimator
}

func (t *Trainer) ensembleSpecs() []memberSpec {
	seed := t.cfg.Seed
	return []memberSpec{
		{"ridge", func() estimators.Estimator {
			return estimators.NewRidge(estimators.DefaultRidgeConfig())
		}},
		{"decision_tree", func() estimators.Estimator {
			return estimators.NewDecisionTree(estimators.DefaultTreeConfig())
		}},
		{"random_forest", func() estimators.Estimator {
			cfg := estimators.DefaultForestConfig()
			cfg.Seed = seed
			return estimators.NewRandomForest(cfg)
		}},
		{"gradient_boosting", func() estimators.Estimator {
			return estimators.NewGradientBoosting(estimators.DefaultGBMConfig())
		}},
		{"knn", func() estimators.Estimator {
			return estimators.NewKNN(estimators.DefaultKNNConfig())
		}},
	}
}

// Train fits the ensemble for one (platform, family) and persists the
// resulting bundle. Returns ErrInsufficientData below the sample
// threshold.
func (t *Trainer) Train(ctx context.Context, platform, family string) (*bundle.Bundle, error) {
	start := time.Now()
	log := t.logger.With().Str("platform", platform).Str("family", family).Logger()

	b, err := t.train(ctx, platform, family, log)
	outcome := "success"
	switch {
	case errors.Is(err, ErrInsufficientData):
		outcome = "insufficient_data"
	case err != nil:
		outcome = "error"
	}
	metrics.TrainingRuns.WithLabelValues(platform, family, outcome).Inc()
	if err == nil {
		metrics.TrainingDuration.WithLabelValues(platform, family).Observe(time.Since(start).Seconds())
		metrics.TrainingSamples.WithLabelValues(platform, family).Set(float64(b.SampleCount))
		log.Info().
			Int("samples", b.SampleCount).
			Dur("elapsed", time.Since(start)).
			Msg("Training run complete")
	}
	return b, err
}

//nolint:gocyclo // training orchestration is inherently sequential and long
func (t *Trainer) train(ctx context.Context, platform, family string, log zerolog.Logger) (*bundle.Bundle, error) {
	samples, err := t.loadSamples(ctx, platform, family)
	if err != nil {
		return nil, err
	}
	if len(samples) < t.cfg.MinSamples {
		log.Warn().
			Int("samples", len(samples)).
			Int("min_samples", t.cfg.MinSamples).
			Msg("Not enough training data")
		return nil, fmt.Errorf("%w: %d rows for %s/%s, need %d",
			ErrInsufficientData, len(samples), platform, family, t.cfg.MinSamples)
	}

	b := &bundle.Bundle{
		Platform:      platform,
		Family:        family,
		SchemaVersion: features.SchemaVersion,
		FeatureOrder:  append(append([]string{}, features.FeatureOrder...), features.CategoricalOrder...),
		Encoders:      fitEncoders(samples),
		TrainedAt:     time.Now().UTC(),
		SampleCount:   len(samples),
		Metrics:       make(map[string]bundle.EvalMetrics),
	}

	x := make([][]float64, len(samples))
	for i, s := range samples {
		x[i] = b.Assemble(s.Vector, s.Categoricals)
	}
	y, classes := targets(samples, family)
	b.TargetClasses = classes

	trainIdx, testIdx := trainTestSplit(len(samples), t.cfg.TestFraction, t.cfg.Seed)
	trainX, trainY := matrixAt(x, y, trainIdx)
	testX, testY := matrixAt(x, y, testIdx)

	// Scaler is fit on the training split only; the test split and all
	// future inference vectors pass through the same transform.
	b.Scaler = bundle.FitScaler(trainX)
	scaledTrain := b.Scaler.TransformMatrix(trainX)
	scaledTest := b.Scaler.TransformMatrix(testX)

	classification := len(classes) > 0
	specs := t.ensembleSpecs()

	// Fit the final members concurrently; each one trains on the same
	// scaled matrix.
	fitted := make([]estimators.Estimator, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			est := spec.build()
			if err := est.Fit(scaledTrain, trainY); err != nil {
				return fmt.Errorf("fit %s: %w", spec.name, err)
			}
			fitted[i] = est
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b.Estimators = make(map[string]estimators.Estimator, len(specs))
	memberPreds := make([][]float64, len(specs))
	for i, spec := range specs {
		est := fitted[i]
		b.Estimators[spec.name] = est

		preds, err := predictAll(est, scaledTest)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", spec.name, err)
		}
		memberPreds[i] = preds

		em := evaluate(preds, testY, classification)
		em.CVMean, em.CVStd = t.crossValidate(spec, scaledTrain, trainY, classification)
		b.Metrics[spec.name] = em
	}

	// Ensemble metrics are computed on the mean prediction, not by
	// averaging member metrics.
	ensemblePreds := make([]float64, len(testY))
	for i := range ensemblePreds {
		var sum float64
		for _, preds := range memberPreds {
			sum += preds[i]
		}
		ensemblePreds[i] = sum / float64(len(memberPreds))
	}
	b.Metrics["ensemble"] = evaluate(ensemblePreds, testY, classification)

	if _, err := t.store.Save(b); err != nil {
		return nil, fmt.Errorf("persist bundle: %w", err)
	}
	if err := t.store.Prune(platform, family, t.cfg.KeepVersions); err != nil {
		log.Warn().Err(err).Msg("Bundle prune failed")
	}
	return b, nil
}

func (t *Trainer) loadSamples(ctx context.Context, platform, family string) ([]database.TrainingSample, error) {
	switch family {
	case bundle.FamilyReward, bundle.FamilyPosition:
		return t.db.GetRewardTrainingSamples(ctx, platform)
	case bundle.FamilyEngagement:
		return t.db.GetEngagementTrainingSamples(ctx, platform)
	default:
		return nil, fmt.Errorf("training: unknown target family %q", family)
	}
}

// targets extracts the y vector for a family. Classification families
// return the sorted distinct class labels; targets are encoded as
// class indices.
func targets(samples []database.TrainingSample, family string) ([]float64, []int) {
	y := make([]float64, len(samples))
	switch family {
	case bundle.FamilyPosition:
		classSet := make(map[int]struct{})
		for _, s := range samples {
			classSet[s.PositionChange] = struct{}{}
		}
		classes := make([]int, 0, len(classSet))
		for c := range classSet {
			classes = append(classes, c)
		}
		sort.Ints(classes)

		index := make(map[int]int, len(classes))
		for i, c := range classes {
			index[c] = i
		}
		for i, s := range samples {
			y[i] = float64(index[s.PositionChange])
		}
		return y, classes

	case bundle.FamilyEngagement:
		for i, s := range samples {
			y[i] = s.TotalEngagement
		}
		return y, nil

	default:
		for i, s := range samples {
			y[i] = s.RewardDelta
		}
		return y, nil
	}
}

// fitEncoders fits one label encoder per categorical field over every
// sample's values.
func fitEncoders(samples []database.TrainingSample) map[string]*bundle.LabelEncoder {
	encoders := make(map[string]*bundle.LabelEncoder, len(features.CategoricalOrder))
	vals := make([]string, len(samples))
	for _, name := range features.CategoricalOrder {
		for i, s := range samples {
			vals[i] = s.Categoricals[name]
		}
		encoders[name] = bundle.FitEncoder(vals)
	}
	return encoders
}

// crossValidate runs k-fold CV for one member spec on the scaled
// training split, returning mean and std of the fold scores (RMSE for
// regression, accuracy for classification). Fold failures score zero.
func (t *Trainer) crossValidate(spec memberSpec, x [][]float64, y []float64, classification bool) (float64, float64) {
	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}
	folds := kFolds(indices, t.cfg.KFolds, t.cfg.Seed)

	scores := make([]float64, 0, len(folds))
	for f, holdout := range folds {
		holdoutSet := make(map[int]struct{}, len(holdout))
		for _, idx := range holdout {
			holdoutSet[idx] = struct{}{}
		}
		var fitIdx []int
		for _, idx := range indices {
			if _, held := holdoutSet[idx]; !held {
				fitIdx = append(fitIdx, idx)
			}
		}
		if len(fitIdx) == 0 || len(holdout) == 0 {
			continue
		}

		foldX, foldY := matrixAt(x, y, fitIdx)
		holdX, holdY := matrixAt(x, y, holdout)

		est := spec.build()
		if err := est.Fit(foldX, foldY); err != nil {
			t.logger.Warn().Err(err).Str("estimator", spec.name).Int("fold", f).Msg("CV fold fit failed")
			scores = append(scores, 0)
			continue
		}
		preds, err := predictAll(est, holdX)
		if err != nil {
			t.logger.Warn().Err(err).Str("estimator", spec.name).Int("fold", f).Msg("CV fold predict failed")
			scores = append(scores, 0)
			continue
		}
		if classification {
			scores = append(scores, accuracy(preds, holdY))
		} else {
			scores = append(scores, rootMSE(preds, holdY))
		}
	}
	return meanStd(scores)
}

func rootMSE(preds, y []float64) float64 {
	return math.Sqrt(meanSquaredError(preds, y))
}

// evaluate computes held-out metrics for one prediction set.
func evaluate(preds, y []float64, classification bool) bundle.EvalMetrics {
	if classification {
		return bundle.EvalMetrics{Accuracy: accuracy(preds, y)}
	}
	mse := meanSquaredError(preds, y)
	return bundle.EvalMetrics{
		MSE:  mse,
		RMSE: rootMSE(preds, y),
		MAE:  meanAbsoluteError(preds, y),
		R2:   rSquared(preds, y),
	}
}

func predictAll(est estimators.Estimator, x [][]float64) ([]float64, error) {
	preds := make([]float64, len(x))
	for i, row := range x {
		p, err := est.Predict(row)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}

func matrixAt(x [][]float64, y []float64, indices []int) ([][]float64, []float64) {
	outX := make([][]float64, len(indices))
	outY := make([]float64, len(indices))
	for i, idx := range indices {
		outX[i] = x[idx]
		outY[i] = y[idx]
	}
	return outX, outY
}
