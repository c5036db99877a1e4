// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ik5/musicreplacer/audio"
	apperrors "github.com/ik5/musicreplacer/internal/errors"
	"go.uber.org/zap"
)

// Env is what a Constructor needs besides the path.
type Env struct {
	Decoder    audio.Decoder
	Output     Output
	StagingDir string
}

type Constructor func(env Env, path string) (Player, error)

// Variant binds an extension to the player that handles it.
type Variant struct {
	Ext string
	New Constructor
}

// DefaultVariants is the preference order used when several cached files
// could serve one track. Formats that are cheap to hold decoded stay in
// memory; compressed ones stream from a staging copy.
func DefaultVariants() []Variant {
	return []Variant{
		{Ext: ".wav", New: NewMemoryPlayer},
		{Ext: ".mp3", New: NewStreamingPlayer},
		{Ext: ".ogg", New: NewStreamingPlayer},
		{Ext: ".aiff", New: NewMemoryPlayer},
	}
}

// Opener picks and builds the player for a set of candidate files.
type Opener struct {
	variants   []Variant
	registry   *audio.Registry
	out        Output
	stagingDir string
	logger     *zap.Logger
}

type OpenerOption func(*Opener)

func WithVariants(v []Variant) OpenerOption {
	return func(o *Opener) { o.variants = v }
}

// WithStagingDir sets where streaming players put their private copies.
// The default is os.TempDir.
func WithStagingDir(dir string) OpenerOption {
	return func(o *Opener) { o.stagingDir = dir }
}

func WithLogger(l *zap.Logger) OpenerOption {
	return func(o *Opener) { o.logger = l }
}

func NewOpener(registry *audio.Registry, out Output, opts ...OpenerOption) *Opener {
	o := &Opener{
		variants: DefaultVariants(),
		registry: registry,
		out:      out,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Extensions lists the playable extensions in preference order.
func (o *Opener) Extensions() []string {
	out := make([]string, 0, len(o.variants))
	for _, v := range o.variants {
		if o.registry.Supports(v.Ext) {
			out = append(out, v.Ext)
		}
	}
	return out
}

// Supports reports whether files with ext can be played.
func (o *Opener) Supports(ext string) bool {
	ext = audio.NormalizeExt(ext)
	for _, e := range o.Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// OpenFirst walks the variants in preference order and, for each, the
// candidates carrying its extension. The first player that opens wins and
// is returned with its path. Failures along the way are logged, not
// returned, unless nothing opens at all.
func (o *Opener) OpenFirst(candidates []string) (Player, string, error) {
	var errs []error

	for _, v := range o.variants {
		dec, ok := o.registry.Get(v.Ext)
		if !ok {
			continue
		}

		for _, path := range candidates {
			if audio.NormalizeExt(filepath.Ext(path)) != v.Ext {
				continue
			}

			p, err := v.New(Env{Decoder: dec, Output: o.out, StagingDir: o.stagingDir}, path)
			if err != nil {
				o.logger.Debug("player variant failed",
					zap.String("path", path),
					zap.String("ext", v.Ext),
					zap.Error(err),
				)
				errs = append(errs, err)
				continue
			}
			return p, path, nil
		}
	}

	if len(errs) == 0 {
		return nil, "", fmt.Errorf("%w: no playable candidate among %d", apperrors.ErrPlaybackUnavailable, len(candidates))
	}
	return nil, "", fmt.Errorf("%w: %w", apperrors.ErrPlaybackUnavailable, errors.Join(errs...))
}
