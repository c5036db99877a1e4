// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"os"

	"github.com/ik5/musicreplacer/audio"
	apperrors "github.com/ik5/musicreplacer/internal/errors"
)

// NewMemoryPlayer decodes the whole file at open, so every Play replays
// from memory and the file may change afterwards without harm.
func NewMemoryPlayer(env Env, path string) (Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.IOError("open "+path, err)
	}
	defer f.Close()

	src, err := env.Decoder.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrUnsupportedFormat, path, err)
	}

	buf, err := audio.ReadAll(src)
	if err != nil {
		return nil, apperrors.IOError("decode "+path, err)
	}

	return newVoicePlayer(env.Output, func() (audio.Source, error) {
		return buf.Reader(), nil
	}, nil), nil
}
