// SPDX-License-Identifier: EPL-2.0

// Package store keeps the override catalog: which track names are
// overridden, where each override's audio sits in the cache directory, and
// how that audio gets there.
//
// A record becomes visible only after its file is completely written, and
// at most one cached file backs a name at any time.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ik5/musicreplacer/audio"
	apperrors "github.com/ik5/musicreplacer/internal/errors"
	"github.com/ik5/musicreplacer/kv"
	"go.uber.org/zap"
)

type Options struct {
	Dir       string
	Group     string
	KeyPrefix string
	// Extensions a cached file may carry, in preference order.
	Extensions []string
	// Registry decodes sources when NormalizeWAV is set.
	Registry             *audio.Registry
	NormalizeWAV         bool
	SkipOverriddenOnBulk bool
	Fetcher              Fetcher
	FetchTimeout         time.Duration
	// Deferred runs store writes that Lookup must not block on. Nil runs
	// them inline.
	Deferred func(func())
	Logger   *zap.Logger
}

type Store struct {
	kv   kv.Store
	opts Options

	mu      sync.RWMutex
	records map[string]Record
	tracks  map[string]struct{}

	logger *zap.Logger
}

// Open creates the cache directory and loads every persisted record.
func Open(ctx context.Context, store kv.Store, opts Options) (*Store, error) {
	if opts.Dir == "" {
		return nil, errors.New("store needs a cache directory")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Deferred == nil {
		opts.Deferred = func(f func()) { f() }
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".wav"}
	}
	for i, ext := range opts.Extensions {
		opts.Extensions[i] = audio.NormalizeExt(ext)
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, apperrors.IOError("create cache dir", err)
	}

	s := &Store{
		kv:      store,
		opts:    opts,
		records: make(map[string]Record),
		logger:  opts.Logger,
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	keys, err := s.kv.Keys(ctx, s.opts.Group)
	if err != nil {
		return fmt.Errorf("listing overrides: %w", err)
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, s.opts.KeyPrefix) {
			continue
		}
		raw, ok, err := s.kv.Get(ctx, s.opts.Group, key)
		if err != nil {
			return fmt.Errorf("loading %s: %w", key, err)
		}
		if !ok {
			continue
		}
		rec, err := decodeRecord(raw)
		if err != nil {
			s.logger.Warn("skipping unreadable override", zap.String("key", key), zap.Error(err))
			continue
		}
		s.records[rec.Name] = rec
	}

	s.logger.Debug("override catalog loaded", zap.Int("records", len(s.records)))
	return nil
}

func (s *Store) key(name string) string { return s.opts.KeyPrefix + name }

// Dir is the cache directory.
func (s *Store) Dir() string { return s.opts.Dir }

// FilePath is the deterministic cache location for name with ext.
func (s *Store) FilePath(name, ext string) string {
	return filepath.Join(s.opts.Dir, url.PathEscape(name)+audio.NormalizeExt(ext))
}

// Candidates lists every cache path that could back name, the recorded
// extension first and the rest in preference order.
func (s *Store) Candidates(name string) []string {
	s.mu.RLock()
	rec, ok := s.records[name]
	s.mu.RUnlock()

	out := make([]string, 0, len(s.opts.Extensions)+1)
	if ok {
		out = append(out, s.FilePath(name, rec.Extension))
	}
	for _, ext := range s.opts.Extensions {
		if ok && ext == rec.Extension {
			continue
		}
		out = append(out, s.FilePath(name, ext))
	}
	return out
}

// Supports reports whether ext may back an override.
func (s *Store) Supports(ext string) bool {
	return slices.Contains(s.opts.Extensions, audio.NormalizeExt(ext))
}

// SetTrackNames sets the host's known tracks. Once set, overrides for other
// names are refused. An empty list lifts the restriction.
func (s *Store) SetTrackNames(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(names) == 0 {
		s.tracks = nil
		return
	}
	s.tracks = make(map[string]struct{}, len(names))
	for _, n := range names {
		s.tracks[n] = struct{}{}
	}
}

// Known reports whether name is an acceptable track.
func (s *Store) Known(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tracks == nil {
		return name != ""
	}
	_, ok := s.tracks[name]
	return ok
}

// Lookup returns the live override for name. A record whose file has
// vanished is dropped here and its persisted entry removed through
// Deferred. Lookup touches the disk only to stat the file.
func (s *Store) Lookup(name string) (*Record, bool) {
	s.mu.RLock()
	rec, ok := s.records[name]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if _, err := os.Stat(s.FilePath(name, rec.Extension)); err == nil {
		return &rec, true
	}

	s.mu.Lock()
	if cur, still := s.records[name]; still && Same(&cur, &rec) {
		delete(s.records, name)
	}
	s.mu.Unlock()

	s.logger.Info("override file missing, evicting",
		zap.String("track", name),
		zap.Error(apperrors.ErrMissingAsset),
	)

	s.opts.Deferred(func() {
		s.mu.RLock()
		_, recreated := s.records[name]
		s.mu.RUnlock()
		if recreated {
			return
		}
		if err := s.kv.Unset(context.Background(), s.opts.Group, s.key(name)); err != nil {
			s.logger.Warn("failed to unset evicted override", zap.String("track", name), zap.Error(err))
		}
	})
	return nil, false
}

// Overridden lists every name with a record, sorted.
func (s *Store) Overridden() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.records))
	for n := range s.records {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Remove unsets name and deletes every cache file that could back it.
// Removing an absent override is a no-op.
func (s *Store) Remove(ctx context.Context, name string) error {
	paths := s.Candidates(name)

	if err := s.kv.Unset(ctx, s.opts.Group, s.key(name)); err != nil {
		return apperrors.IOError("unset "+name, err)
	}

	s.mu.Lock()
	delete(s.records, name)
	s.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, apperrors.IOError("remove "+p, err))
		}
	}

	s.logger.Info("override removed", zap.String("track", name))
	return errors.Join(errs...)
}

// RemoveAll removes every override. Each removal stands alone; failures are
// joined.
func (s *Store) RemoveAll(ctx context.Context) error {
	var errs []error
	for _, name := range s.Overridden() {
		if err := s.Remove(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) persist(ctx context.Context, rec Record) error {
	raw, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.opts.Group, s.key(rec.Name), raw); err != nil {
		return apperrors.IOError("persist "+rec.Name, err)
	}

	s.mu.Lock()
	s.records[rec.Name] = rec
	s.mu.Unlock()
	return nil
}

// removeOrphans deletes every candidate for name except keep.
func (s *Store) removeOrphans(name, keep string) {
	for _, ext := range s.opts.Extensions {
		if ext == keep {
			continue
		}
		p := s.FilePath(name, ext)
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove orphan", zap.String("path", p), zap.Error(err))
		}
	}
}
