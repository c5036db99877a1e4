// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Buffer holds a fully decoded stream in memory so it can be replayed
// from the start any number of times without touching the decoder again.
type Buffer struct {
	sampleRate int
	channels   int
	samples    []float32
}

// ReadAll drains src into a Buffer and closes src.
func ReadAll(src Source) (*Buffer, error) {
	defer src.Close()

	if src.Channels() <= 0 {
		return nil, ErrInvalidDstSize
	}

	chunk := src.BufSize()
	if chunk <= 0 {
		chunk = 4096
	}
	// keep reads frame aligned
	chunk -= chunk % src.Channels()
	if chunk == 0 {
		chunk = src.Channels()
	}

	b := &Buffer{
		sampleRate: src.SampleRate(),
		channels:   src.Channels(),
	}
	tmp := make([]float32, chunk)

	for {
		n, err := src.ReadSamples(tmp)
		if n > 0 {
			b.samples = append(b.samples, tmp[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("buffering source: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return b, nil
}

func (b *Buffer) SampleRate() int { return b.sampleRate }
func (b *Buffer) Channels() int   { return b.channels }

// Len is the number of interleaved samples held.
func (b *Buffer) Len() int { return len(b.samples) }

// Duration of the buffered audio.
func (b *Buffer) Duration() time.Duration {
	if b.sampleRate == 0 || b.channels == 0 {
		return 0
	}
	frames := len(b.samples) / b.channels
	return time.Duration(frames) * time.Second / time.Duration(b.sampleRate)
}

// Reader returns a fresh Source positioned at the first sample.
func (b *Buffer) Reader() Source {
	return &bufferReader{buf: b}
}

type bufferReader struct {
	buf *Buffer
	pos int
}

func (r *bufferReader) SampleRate() int { return r.buf.sampleRate }
func (r *bufferReader) Channels() int   { return r.buf.channels }
func (r *bufferReader) BufSize() int    { return 4096 }
func (r *bufferReader) Close() error    { return nil }

func (r *bufferReader) ReadSamples(dst []float32) (int, error) {
	if r.pos >= len(r.buf.samples) {
		return 0, io.EOF
	}
	n := copy(dst, r.buf.samples[r.pos:])
	r.pos += n
	if r.pos >= len(r.buf.samples) {
		return n, io.EOF
	}
	return n, nil
}
