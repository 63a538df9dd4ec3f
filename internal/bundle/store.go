// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package bundle

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/postpulse/internal/training/estimators"
)

// Metadata describes one stored bundle file.
type Metadata struct {
	Platform    string    `json:"platform"`
	Family      string    `json:"family"`
	Version     int       `json:"version"`
	TrainedAt   time.Time `json:"trained_at"`
	SavedAt     time.Time `json:"saved_at"`
	SampleCount int       `json:"sample_count"`
	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
}

// storedFile is the on-disk format for bundle files.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store manages bundle persistence under one directory. Files are
// named {platform}_{family}_v{version}.gob.gz; a new version is
// written to a temp file and renamed into place so a partially-written
// bundle is never loadable.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per storage key (platform_family)
	versions map[string]int
}

// NewStore creates a bundle store at the given directory.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create bundle directory: %w", err)
	}
	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing bundles: %w", err)
	}
	return s, nil
}

func storageKey(platform, family string) string {
	return platform + "_" + family
}

// scan indexes existing bundle files by latest version.
func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		key, version, ok := parseBundleFilename(entry.Name())
		if !ok {
			continue
		}
		if current, exists := s.versions[key]; !exists || version > current {
			s.versions[key] = version
		}
	}
	return nil
}

// parseBundleFilename splits "{key}_v{version}.gob.gz" into its parts.
func parseBundleFilename(name string) (key string, version int, ok bool) {
	if !strings.HasSuffix(name, ".gob.gz") {
		return "", 0, false
	}
	name = strings.TrimSuffix(name, ".gob.gz")

	idx := strings.LastIndex(name, "_v")
	if idx < 1 {
		return "", 0, false
	}
	if _, err := fmt.Sscanf(name[idx+2:], "%d", &version); err != nil {
		return "", 0, false
	}
	return name[:idx], version, true
}

// Save persists a bundle as the next version for its platform/family.
// The write is atomic: encode to a temp file, then rename into place.
func (s *Store) Save(b *Bundle) (*Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(b); err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	raw := payload.Bytes()

	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress bundle: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	key := storageKey(b.Platform, b.Family)
	version := s.versions[key] + 1

	meta := Metadata{
		Platform:    b.Platform,
		Family:      b.Family,
		Version:     version,
		TrainedAt:   b.TrainedAt,
		SavedAt:     time.Now().UTC(),
		SampleCount: b.SampleCount,
		Checksum:    hex.EncodeToString(hash[:]),
		SizeBytes:   int64(compressed.Len()),
	}

	final := s.bundlePath(key, version)
	tmp, err := os.CreateTemp(s.baseDir, "."+key+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp bundle file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	enc := gob.NewEncoder(tmp)
	if err := enc.Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write bundle file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("sync bundle file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close bundle file: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		return nil, fmt.Errorf("rename bundle file: %w", err)
	}

	s.versions[key] = version
	return &meta, nil
}

// Load reads the latest bundle for a platform/family, verifying the
// checksum and the feature schema version.
func (s *Store) Load(platform, family string) (*Bundle, *Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := storageKey(platform, family)
	version, ok := s.versions[key]
	if !ok {
		return nil, nil, fmt.Errorf("no bundle found for %s/%s", platform, family)
	}

	f, err := os.Open(s.bundlePath(key, version))
	if err != nil {
		return nil, nil, fmt.Errorf("open bundle file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, nil, fmt.Errorf("read bundle file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress bundle: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed bundle: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("bundle checksum mismatch: expected %s, got %s",
			sf.Metadata.Checksum, checksum)
	}

	var b Bundle
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&b); err != nil {
		return nil, nil, fmt.Errorf("decode bundle: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, nil, fmt.Errorf("bundle rejected: %w", err)
	}

	return &b, &sf.Metadata, nil
}

// LatestVersion returns the newest stored version for a platform/family.
func (s *Store) LatestVersion(platform, family string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[storageKey(platform, family)]
	return v, ok
}

// Prune removes old versions for a platform/family, keeping the
// newest keepVersions files.
func (s *Store) Prune(platform, family string, keepVersions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}
	key := storageKey(platform, family)

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read bundle directory: %w", err)
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		k, v, ok := parseBundleFilename(entry.Name())
		if !ok || k != key {
			continue
		}
		versions = append(versions, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))

	for i := keepVersions; i < len(versions); i++ {
		// best-effort cleanup
		_ = os.Remove(s.bundlePath(key, versions[i]))
	}
	return nil
}

func (s *Store) bundlePath(key string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d.gob.gz", key, version))
}

// Register gob types for serialization.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(&estimators.Ridge{})
	gob.Register(&estimators.DecisionTree{})
	gob.Register(&estimators.RandomForest{})
	gob.Register(&estimators.GradientBoosting{})
	gob.Register(&estimators.KNN{})
}
