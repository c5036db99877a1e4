// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/musicreplacer/utils"
)

// Resampler converts a source to another sample rate with Catmull-Rom
// interpolation over a four frame window. Channel count is preserved.
// When downsampling, a one-pole low-pass runs ahead of the interpolator.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// window[1] and window[2] bracket the output position
	window [4][]float32
	have   [4]bool
	pos    float64
	primed bool
	eof    bool

	frame  []float32
	lowp   []float32
	filter bool
}

const lowPassAlpha = 0.5

func NewResampler(src Source, dstRate int) *Resampler {
	if dstRate <= 0 {
		dstRate = src.SampleRate()
	}
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		frame:    make([]float32, channels),
		lowp:     make([]float32, channels),
	}
	r.filter = r.ratio > 1.0
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("closing resampler source: %w", err)
	}
	return nil
}

// readFrame pulls one frame from src into dst, filtering when downsampling.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	if r.eof {
		return false, io.EOF
	}

	n, err := r.src.ReadSamples(r.frame)
	got := n >= r.channels
	if got {
		copy(dst, r.frame)
		if r.filter {
			for c := range r.channels {
				dst[c] = lowPassAlpha*dst[c] + (1-lowPassAlpha)*r.lowp[c]
				r.lowp[c] = dst[c]
			}
		}
	}

	if errors.Is(err, io.EOF) {
		r.eof = true
		return got, nil
	}
	if err != nil {
		return got, fmt.Errorf("reading source frame: %w", err)
	}
	return got, nil
}

func (r *Resampler) prime() error {
	r.primed = true
	last := -1
	for i := range r.window {
		if i == 0 && r.filter {
			// seed the filter so the first frame does not ramp in from zero
			n, err := r.src.ReadSamples(r.frame)
			if n >= r.channels {
				copy(r.lowp, r.frame)
				copy(r.window[0], r.frame)
				r.have[0] = true
				last = 0
			}
			if errors.Is(err, io.EOF) {
				r.eof = true
			} else if err != nil {
				return fmt.Errorf("priming resampler: %w", err)
			}
			continue
		}

		ok, err := r.readFrame(r.window[i])
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if ok {
			r.have[i] = true
			last = i
		}
		if r.eof {
			break
		}
	}

	if last < 0 {
		return io.EOF
	}
	// pad the window with the last real frame
	for j := last + 1; j < len(r.window); j++ {
		copy(r.window[j], r.window[last])
		r.have[j] = true
	}
	return nil
}

func (r *Resampler) advance() error {
	copy(r.window[0], r.window[1])
	copy(r.window[1], r.window[2])
	copy(r.window[2], r.window[3])
	r.have[0], r.have[1], r.have[2] = r.have[1], r.have[2], r.have[3]

	ok, err := r.readFrame(r.window[3])
	r.have[3] = ok
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	// keep draining the window after the source ends
	if !r.have[2] {
		return io.EOF
	}
	return nil
}

// ReadSamples fills dst with frames at the target rate. len(dst) must be a
// multiple of Channels().
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels <= 0 {
		return 0, ErrInvalidChannels
	}
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				if errors.Is(err, io.EOF) {
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		if !r.have[1] || !r.have[2] {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			y0 := r.window[1][c]
			if r.have[0] {
				y0 = r.window[0][c]
			}
			y3 := r.window[2][c]
			if r.have[3] {
				y3 = r.window[3][c]
			}
			dst[written*r.channels+c] = utils.CubicInterpolate(y0, r.window[1][c], r.window[2][c], y3, alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
