// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// mockAiffReader replays integer samples like aiff.Decoder.
type mockAiffReader struct {
	sampleRate int
	channels   int
	samples    []int
	offset     int
	fail       bool
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{SampleRate: m.sampleRate, NumChannels: m.channels}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.fail {
		return 0, io.ErrUnexpectedEOF
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}
	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func TestDecoder_RejectsGarbage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("This is not AIFF data")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		sample   int
		want     float32
	}{
		{"8-bit half", 8, 64, 0.5},
		{"16-bit half", 16, 16384, 0.5},
		{"24-bit negative half", 24, -4194304, -0.5},
		{"32-bit quarter", 32, 536870912, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := &mockAiffReader{sampleRate: 44100, channels: 1, samples: []int{tt.sample}}
			src := &source{dec: mock, sampleRate: 44100, channels: 1, bitDepth: tt.bitDepth}

			buf := make([]float32, 4)
			n, err := src.ReadSamples(buf)
			if err != nil || n != 1 {
				t.Fatalf("ReadSamples() = (%d, %v), want (1, nil)", n, err)
			}
			if math.Abs(float64(buf[0]-tt.want)) > 1e-6 {
				t.Errorf("sample = %v, want %v", buf[0], tt.want)
			}
		})
	}
}

func TestSource_ReadsToEOF(t *testing.T) {
	t.Parallel()

	mock := &mockAiffReader{sampleRate: 44100, channels: 2, samples: make([]int, 1000)}
	src := &source{dec: mock, sampleRate: 44100, channels: 2, bitDepth: 16}

	total := 0
	buf := make([]float32, 128)
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	if total != 1000 {
		t.Errorf("read %d samples, want 1000", total)
	}
	if src.BufSize() != 128 {
		t.Errorf("BufSize() = %d, want 128", src.BufSize())
	}
}

func TestSource_PropagatesDecoderError(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockAiffReader{fail: true}, sampleRate: 44100, channels: 1, bitDepth: 16}
	_, err := src.ReadSamples(make([]float32, 8))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}
}
