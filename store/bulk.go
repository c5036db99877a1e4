// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "github.com/ik5/musicreplacer/internal/errors"
	"go.uber.org/zap"
)

// Report is the outcome of a bulk operation, per track name.
type Report struct {
	Created []string
	Skipped []string
	Failed  map[string]error
}

func (r *Report) fail(name string, err error) {
	if r.Failed == nil {
		r.Failed = make(map[string]error)
	}
	r.Failed[name] = err
}

// Err joins every failure, or nil.
func (r *Report) Err() error {
	names := make([]string, 0, len(r.Failed))
	for n := range r.Failed {
		names = append(names, n)
	}
	slices.Sort(names)

	errs := make([]error, 0, len(names))
	for _, n := range names {
		errs = append(errs, r.Failed[n])
	}
	return errors.Join(errs...)
}

// TrackStem is the track name a file stands for: the base name up to its
// first dot.
func TrackStem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// BulkEligible reports whether the file at path would be picked up by
// BulkCreate, and for which track.
func (s *Store) BulkEligible(path string) (string, bool) {
	name := TrackStem(path)
	if name == "" || !s.Known(name) {
		return "", false
	}
	if !s.Supports(filepath.Ext(path)) {
		return "", false
	}
	return name, true
}

// BulkCreate overrides every track that has a file in dir. Files whose
// stem is not a known track or whose extension is unsupported are skipped
// silently, as are tracks already overridden when the store is configured
// to keep them.
func (s *Store) BulkCreate(ctx context.Context, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.IOError("read "+dir, err)
	}

	r := &Report{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return r, err
		}

		path := filepath.Join(dir, e.Name())
		name, ok := s.BulkEligible(path)
		if !ok {
			continue
		}
		s.createOne(r, name, func() error { return s.CreateLocal(ctx, name, path) })
	}

	s.logger.Info("bulk override finished",
		zap.String("dir", dir),
		zap.Int("created", len(r.Created)),
		zap.Int("skipped", len(r.Skipped)),
		zap.Int("failed", len(r.Failed)),
	)
	return r, nil
}

// BulkCreatePreset fetches every entry of p, in track name order.
func (s *Store) BulkCreatePreset(ctx context.Context, p *Preset) *Report {
	r := &Report{}
	for _, name := range p.TrackNames() {
		if ctx.Err() != nil {
			break
		}
		if !s.Known(name) {
			r.Skipped = append(r.Skipped, name)
			continue
		}
		remote := p.Tracks[name].Remote()
		s.createOne(r, name, func() error { return s.CreateRemote(ctx, name, remote) })
	}

	s.logger.Info("preset applied",
		zap.String("preset", p.Name),
		zap.Int("created", len(r.Created)),
		zap.Int("failed", len(r.Failed)),
	)
	return r
}

func (s *Store) createOne(r *Report, name string, create func() error) {
	if s.opts.SkipOverriddenOnBulk {
		if _, ok := s.Lookup(name); ok {
			r.Skipped = append(r.Skipped, name)
			return
		}
	}
	if err := create(); err != nil {
		r.fail(name, err)
		return
	}
	r.Created = append(r.Created, name)
}
