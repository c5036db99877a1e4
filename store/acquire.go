// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/musicreplacer/audio"
	"github.com/ik5/musicreplacer/formats/wav"
	apperrors "github.com/ik5/musicreplacer/internal/errors"
	"go.uber.org/zap"
)

const defaultRemoteExt = ".wav"

// CreateLocal copies the file at path into the cache as the override for
// name. Nothing is persisted unless the copy completes.
func (s *Store) CreateLocal(ctx context.Context, name, path string) error {
	if !s.Known(name) {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownTrack, name)
	}

	ext := audio.NormalizeExt(filepath.Ext(path))
	if !s.Supports(ext) {
		return fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, filepath.Base(path))
	}

	src, err := os.Open(path)
	if err != nil {
		return apperrors.IOError("open "+path, err)
	}
	defer src.Close()

	size := int64(-1)
	if fi, err := src.Stat(); err == nil {
		size = fi.Size()
	}

	rec := Record{
		Name:     name,
		Origin:   Origin{Kind: OriginLocal, Locator: path},
		Metadata: append([]MetadataEntry{{Label: "From", Text: path}}, readTags(path)...),
	}
	return s.acquire(ctx, rec, src, size, ext)
}

// CreateRemote fetches r into the cache as the override for name. The
// fetch is bounded by the configured timeout.
func (s *Store) CreateRemote(ctx context.Context, name string, r Remote) error {
	if !s.Known(name) {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownTrack, name)
	}
	if s.opts.Fetcher == nil {
		return apperrors.IOError("fetch "+r.URL, errors.New("no fetcher configured"))
	}

	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}

	payload, err := s.opts.Fetcher.Fetch(ctx, r.URL)
	if err != nil {
		return err
	}
	defer payload.Body.Close()

	ext := payload.Ext
	if !s.Supports(ext) {
		ext = defaultRemoteExt
	}

	rec := Record{
		Name:     name,
		Origin:   Origin{Kind: OriginRemote, Locator: r.URL, ID: r.ID},
		Metadata: r.metadata(),
	}
	return s.acquire(ctx, rec, payload.Body, payload.Size, ext)
}

// acquire stages body next to its final path, verifies it, moves it into
// place, persists rec and clears the other candidates for rec.Name.
func (s *Store) acquire(ctx context.Context, rec Record, body io.Reader, size int64, ext string) error {
	log := s.logger.With(zap.String("track", rec.Name), zap.String("origin", rec.Origin.Locator))

	part, err := s.stage(body, size)
	if err != nil {
		log.Warn("acquisition failed", zap.Error(err))
		return err
	}
	defer os.Remove(part)

	if err := ctx.Err(); err != nil {
		return apperrors.IOError("acquire "+rec.Name, err)
	}

	if s.opts.NormalizeWAV {
		normalized, err := s.normalize(part, ext)
		if err != nil {
			log.Warn("normalization failed", zap.Error(err))
			return err
		}
		defer os.Remove(normalized)
		part, ext = normalized, ".wav"
	}

	rec.Extension = ext
	target := s.FilePath(rec.Name, ext)

	backup, err := s.setAside(target)
	if err != nil {
		return err
	}

	if err := os.Rename(part, target); err != nil {
		s.rollback(target, backup)
		return apperrors.IOError("commit "+target, err)
	}

	if err := s.persist(ctx, rec); err != nil {
		s.rollback(target, backup)
		log.Warn("acquisition failed", zap.Error(err))
		return err
	}

	if backup != "" {
		os.Remove(backup)
	}
	s.removeOrphans(rec.Name, ext)

	log.Info("override created", zap.String("path", target))
	return nil
}

// setAside moves an existing file at target to a hidden backup in the
// cache directory. It returns "" when there was nothing to move.
func (s *Store) setAside(target string) (string, error) {
	if _, err := os.Lstat(target); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	f, err := os.CreateTemp(s.opts.Dir, ".prev-*.part")
	if err != nil {
		return "", apperrors.IOError("create backup file", err)
	}
	backup := f.Name()
	f.Close()

	if err := os.Rename(target, backup); err != nil {
		os.Remove(backup)
		return "", apperrors.IOError("back up "+target, err)
	}
	return backup, nil
}

// rollback puts target back the way setAside found it.
func (s *Store) rollback(target, backup string) {
	if backup == "" {
		os.Remove(target)
		return
	}
	if err := os.Rename(backup, target); err != nil {
		s.logger.Error("failed to restore previous override",
			zap.String("path", target),
			zap.String("backup", backup),
			zap.Error(err),
		)
	}
}

// stage writes body to a hidden temp file in the cache directory and
// checks it against size when size is known.
func (s *Store) stage(body io.Reader, size int64) (string, error) {
	f, err := os.CreateTemp(s.opts.Dir, ".incoming-*.part")
	if err != nil {
		return "", apperrors.IOError("create staging file", err)
	}

	n, err := io.Copy(f, body)
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("short write: got %d of %d bytes", n, size)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		os.Remove(f.Name())
		return "", apperrors.IOError("write payload", err)
	}
	return f.Name(), nil
}

// normalize transcodes the staged file to 16-bit PCM WAV.
func (s *Store) normalize(part, ext string) (string, error) {
	if s.opts.Registry == nil {
		return "", fmt.Errorf("%w: no decoders for normalization", apperrors.ErrUnsupportedFormat)
	}
	dec, ok := s.opts.Registry.Get(ext)
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, ext)
	}

	in, err := os.Open(part)
	if err != nil {
		return "", apperrors.IOError("open staged payload", err)
	}
	defer in.Close()

	src, err := dec.Decode(in)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrUnsupportedFormat, err)
	}
	defer src.Close()

	out, err := os.CreateTemp(s.opts.Dir, ".normalized-*.part")
	if err != nil {
		return "", apperrors.IOError("create normalized file", err)
	}

	err = wav.Encode(out, src)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out.Name())
		return "", apperrors.IOError("transcode payload", err)
	}
	return out.Name(), nil
}
