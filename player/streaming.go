// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/musicreplacer/audio"
	apperrors "github.com/ik5/musicreplacer/internal/errors"
)

// NewStreamingPlayer decodes on the fly from a private staging copy of path.
// The copy lives until Close, so a rewrite of the cache file underneath does
// not corrupt a running stream.
func NewStreamingPlayer(env Env, path string) (Player, error) {
	staging, err := stage(path, env.StagingDir)
	if err != nil {
		return nil, err
	}

	// reject undecodable files now rather than on the first Play
	src, err := openDecoded(env.Decoder, staging)
	if err != nil {
		os.Remove(staging)
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrUnsupportedFormat, path, err)
	}
	src.Close()

	open := func() (audio.Source, error) {
		src, err := openDecoded(env.Decoder, staging)
		if err != nil {
			return nil, apperrors.IOError("reopen "+staging, err)
		}
		return src, nil
	}
	release := func() error {
		if err := os.Remove(staging); err != nil && !errors.Is(err, os.ErrNotExist) {
			return apperrors.IOError("remove staging copy", err)
		}
		return nil
	}

	return newVoicePlayer(env.Output, open, release), nil
}

func stage(path, dir string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", apperrors.IOError("open "+path, err)
	}
	defer in.Close()

	out, err := os.CreateTemp(dir, "musicreplacer-*"+filepath.Ext(path))
	if err != nil {
		return "", apperrors.IOError("create staging copy", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", apperrors.IOError("copy to staging", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", apperrors.IOError("close staging copy", err)
	}
	return out.Name(), nil
}

// fileSource closes the file a decoder reads from together with the decoder.
type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.f.Close())
}

func openDecoded(dec audio.Decoder, path string) (audio.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileSource{Source: src, f: f}, nil
}
