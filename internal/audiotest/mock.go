// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the package tests: synthetic
// sources, tiny WAV payloads and a scripted host.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the sample for frame on channel ch.
type Waveform func(frame, ch int) float32

// MockSource generates frames from a Waveform. It satisfies audio.Source
// structurally; audio's own tests use it, so it cannot import audio.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int
	pos        int
	wave       Waveform

	closes int
}

// NewMockSource yields frames frames of wave at sampleRate.
func NewMockSource(sampleRate, channels, frames int, wave Waveform) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		wave:       wave,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

// NewSineSource is a full-scale sine at freq Hz on every channel.
func NewSineSource(sampleRate, channels, frames int, freq float64) *MockSource {
	step := 2 * math.Pi * freq / float64(sampleRate)
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		return float32(math.Sin(step * float64(frame)))
	})
}

func NewConstantSource(sampleRate, channels, frames int, v float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return v })
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closes++
	return nil
}

// Closes counts Close calls.
func (m *MockSource) Closes() int { return m.closes }

// Reset rewinds to the first frame.
func (m *MockSource) Reset() { m.pos = 0 }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	left := m.frames - m.pos
	if left <= 0 {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, left)
	for f := range n {
		base := f * m.channels
		for ch := range m.channels {
			dst[base+ch] = m.wave(m.pos+f, ch)
		}
	}
	m.pos += n

	if m.pos >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}
