// Package cache persists chapter summaries in a content-addressed
// on-disk store so interrupted runs resume without recomputing
// completed chapters. The store is an append-only map from the
// consumer's viewpoint: entries are created or absent, never mutated
// in place, and never evicted.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrStore marks store I/O failures. Callers treat a failed read as a
// miss; a failed write is fatal because silent cache loss would defeat
// restartability.
var ErrStore = errors.New("summary store")

// Store is a durable key → summary map backed by one file per entry.
// The pipeline is single-threaded, so the store needs no locking; its
// one concurrency obligation is that a completed Put is durable before
// the next chapter starts, which the write-temp-then-rename protocol
// guarantees (a crash mid-Put leaves either no entry or the complete
// previous state, and never corrupts unrelated keys).
type Store struct {
	dir     string
	metrics MetricsRecorder
}

// DirFor derives the store directory for an input document:
// "<input dir>/.cache_summaries/<input stem>". Keying the directory by
// the input file keeps different books from sharing operator-visible
// state, even though fingerprints alone would not collide.
func DirFor(inputPath string) string {
	dir := filepath.Dir(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, ".cache_summaries", stem)
}

// Open creates the store directory if needed and returns a ready store.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrStore, dir, err)
	}
	return &Store{dir: dir, metrics: NewPrometheusStoreMetrics()}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns the stored summary for key. The second return value
// reports whether the key was present. I/O failures other than
// non-existence are returned wrapped in ErrStore; per run policy the
// orchestrator logs them and proceeds as on a miss.
func (s *Store) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			s.metrics.RecordMiss()
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: read %s: %v", ErrStore, key, err)
	}
	s.metrics.RecordHit()
	return string(data), true, nil
}

// Put stores summary under key. An existing entry is overwritten
// atomically; since values are derived from identical inputs this is
// an idempotent no-op in practice. The entry is written to a temporary
// file in the store directory and renamed into place, so a reader can
// never observe a half-written entry.
func (s *Store) Put(key, summary string) error {
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrStore, key, err)
	}

	if _, err := tmp.WriteString(summary); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: write %s: %v", ErrStore, key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: close %s: %v", ErrStore, key, err)
	}

	if err := os.Rename(tmp.Name(), s.entryPath(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("%w: commit %s: %v", ErrStore, key, err)
	}

	s.metrics.RecordWrite()
	return nil
}

// entryPath maps a fingerprint to its entry file. Keys are lowercase
// hex digests, so no escaping is needed.
func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, key+".txt")
}
