// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

/*
registry.go - In-memory model registry

Holds the latest loaded bundle per (platform, family) and serves them
to the prediction path without touching disk. Loads are explicit: the
serving process loads at startup and reloads after training runs, so a
prediction request never pays bundle deserialization latency.

Families load independently. A platform with a reward bundle but no
engagement bundle serves reward predictions and reports the engagement
family as failed.
*/

package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/postpulse/internal/bundle"
	"github.com/tomtom215/postpulse/internal/metrics"
)

// ErrModelUnavailable is returned when no loaded bundle exists for a
// (platform, family).
var ErrModelUnavailable = errors.New("registry: no model loaded")

// Load states for one (platform, family) slot.
const (
	StatusNeverAttempted = "never_attempted"
	StatusLoaded         = "loaded"
	StatusFailed         = "failed"
)

// ModelStatus describes one (platform, family) slot for operators.
type ModelStatus struct {
	Platform      string    `json:"platform"`
	Family        string    `json:"family"`
	Status        string    `json:"status"`
	Version       int       `json:"version,omitempty"`
	TrainedAt     time.Time `json:"trained_at"`
	LoadedAt      time.Time `json:"loaded_at"`
	SampleCount   int       `json:"sample_count,omitempty"`
	SchemaVersion int       `json:"schema_version,omitempty"`
	Error         string    `json:"error,omitempty"`
}

type entry struct {
	bundle   *bundle.Bundle
	meta     *bundle.Metadata
	status   string
	loadedAt time.Time
	err      string
}

// Registry caches loaded bundles behind an RWMutex. Reads on the
// prediction path take the read lock only.
type Registry struct {
	store  *bundle.Store
	logger zerolog.Logger

	mu      sync.RWMutex
	entries map[string]*entry

	// loadLocks serializes disk loads per platform. Without it two
	// concurrent Reload calls can interleave: a slow loader that read
	// version N overwrites another's freshly cached N+1, and the stale
	// bundle stays served until the next reload.
	loadLocksMu sync.Mutex
	loadLocks   map[string]*sync.Mutex
}

// New creates a registry backed by a bundle store. Nothing is loaded
// until Load or Reload is called.
func New(store *bundle.Store, logger zerolog.Logger) *Registry {
	return &Registry{
		store:     store,
		logger:    logger.With().Str("component", "registry").Logger(),
		entries:   make(map[string]*entry),
		loadLocks: make(map[string]*sync.Mutex),
	}
}

func slotKey(platform, family string) string {
	return platform + "_" + family
}

// loadLock returns the load mutex for a platform, creating it on first
// use.
func (r *Registry) loadLock(platform string) *sync.Mutex {
	r.loadLocksMu.Lock()
	defer r.loadLocksMu.Unlock()
	m, ok := r.loadLocks[platform]
	if !ok {
		m = &sync.Mutex{}
		r.loadLocks[platform] = m
	}
	return m
}

// Load loads every family for a platform that is not already cached.
// Families load independently; one family failing does not block the
// others. Returns the number of families now loaded. Loads for one
// platform are serialized; concurrent callers queue.
func (r *Registry) Load(platform string) int {
	lock := r.loadLock(platform)
	lock.Lock()
	defer lock.Unlock()

	loaded := 0
	for _, family := range bundle.Families {
		if r.loadFamily(platform, family, false) {
			loaded++
		}
	}
	return loaded
}

// Reload forces a fresh disk read for every family of a platform,
// replacing cached bundles. Called after training runs. Serialized per
// platform like Load, so whichever reload runs last cached whatever
// was newest on disk when it ran.
func (r *Registry) Reload(platform string) int {
	lock := r.loadLock(platform)
	lock.Lock()
	defer lock.Unlock()

	loaded := 0
	for _, family := range bundle.Families {
		if r.loadFamily(platform, family, true) {
			loaded++
		}
	}
	return loaded
}

// loadFamily loads one slot. With force false a cached bundle is kept
// as-is. Returns whether the slot holds a usable bundle afterwards.
func (r *Registry) loadFamily(platform, family string, force bool) bool {
	key := slotKey(platform, family)

	if !force {
		r.mu.RLock()
		e, ok := r.entries[key]
		r.mu.RUnlock()
		if ok && e.status == StatusLoaded {
			metrics.RegistryLoads.WithLabelValues(platform, family, "cached").Inc()
			return true
		}
	}

	b, meta, err := r.store.Load(platform, family)
	if err != nil {
		metrics.RegistryLoads.WithLabelValues(platform, family, "failed").Inc()
		r.logger.Warn().
			Err(err).
			Str("platform", platform).
			Str("family", family).
			Msg("Bundle load failed")
		r.setEntry(key, &entry{status: StatusFailed, err: err.Error()})
		return false
	}

	metrics.RegistryLoads.WithLabelValues(platform, family, "loaded").Inc()
	r.logger.Info().
		Str("platform", platform).
		Str("family", family).
		Int("version", meta.Version).
		Int("samples", meta.SampleCount).
		Msg("Bundle loaded")
	r.setEntry(key, &entry{
		bundle:   b,
		meta:     meta,
		status:   StatusLoaded,
		loadedAt: time.Now().UTC(),
	})
	return true
}

func (r *Registry) setEntry(key string, e *entry) {
	r.mu.Lock()
	r.entries[key] = e
	r.mu.Unlock()
}

// Bundle returns the cached bundle for a (platform, family). Returns
// ErrModelUnavailable when the slot was never loaded or failed to load.
func (r *Registry) Bundle(platform, family string) (*bundle.Bundle, error) {
	r.mu.RLock()
	e, ok := r.entries[slotKey(platform, family)]
	r.mu.RUnlock()

	if !ok || e.status != StatusLoaded {
		return nil, fmt.Errorf("%w for %s/%s", ErrModelUnavailable, platform, family)
	}
	return e.bundle, nil
}

// Status reports every family slot for the given platforms, including
// slots that were never attempted.
func (r *Registry) Status(platforms []string) []ModelStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ModelStatus, 0, len(platforms)*len(bundle.Families))
	for _, platform := range platforms {
		for _, family := range bundle.Families {
			ms := ModelStatus{
				Platform: platform,
				Family:   family,
				Status:   StatusNeverAttempted,
			}
			if e, ok := r.entries[slotKey(platform, family)]; ok {
				ms.Status = e.status
				ms.Error = e.err
				if e.status == StatusLoaded {
					ms.Version = e.meta.Version
					ms.TrainedAt = e.meta.TrainedAt
					ms.LoadedAt = e.loadedAt
					ms.SampleCount = e.meta.SampleCount
					ms.SchemaVersion = e.bundle.SchemaVersion
				}
			}
			out = append(out, ms)
		}
	}
	return out
}
