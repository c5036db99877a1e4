// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"
)

// mockMP3Reader replays 16-bit little-endian stereo samples.
type mockMP3Reader struct {
	sampleRate int
	samples    []int16
	offset     int
	length     int64
	fail       bool
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }
func (m *mockMP3Reader) Length() int64   { return m.length }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.fail {
		return 0, io.ErrUnexpectedEOF
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	count := min(len(buf)/2, len(m.samples)-m.offset)
	for i := range count {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(m.samples[m.offset+i]))
	}
	m.offset += count
	return count * 2, nil
}

func TestDecoder_RejectsGarbage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("This is not MP3 data")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		sample int16
		want   float32
	}{
		{"zero", 0, 0},
		{"half", 16384, 0.5},
		{"negative half", -16384, -0.5},
		{"min", -32768, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: &mockMP3Reader{sampleRate: 44100, samples: []int16{tt.sample, tt.sample}}, sampleRate: 44100}
			buf := make([]float32, 2)
			n, err := src.ReadSamples(buf)
			if err != nil || n != 2 {
				t.Fatalf("ReadSamples() = (%d, %v), want (2, nil)", n, err)
			}
			if math.Abs(float64(buf[0]-tt.want)) > 1e-4 {
				t.Errorf("sample = %v, want %v", buf[0], tt.want)
			}
		})
	}
}

func TestSource_ReadsToEOF(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 1000)
	src := &source{dec: &mockMP3Reader{sampleRate: 22050, samples: samples}, sampleRate: 22050}

	total := 0
	buf := make([]float32, 300)
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
	if total != len(samples) {
		t.Errorf("read %d samples, want %d", total, len(samples))
	}
}

func TestSource_PropagatesDecoderError(t *testing.T) {
	t.Parallel()

	src := &source{dec: &mockMP3Reader{fail: true}, sampleRate: 44100}
	if _, err := src.ReadSamples(make([]float32, 16)); err == nil || err == io.EOF {
		t.Errorf("ReadSamples() error = %v, want decoder error", err)
	}
}

func TestSource_Duration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		length int64
		want   time.Duration
	}{
		{"two seconds", 2 * 44100 * bytesPerFrame, 2 * time.Second},
		{"unknown", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: &mockMP3Reader{length: tt.length}, sampleRate: 44100}
			if got := src.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 44100*2)
	buf := make([]float32, 4096)

	b.ReportAllocs()
	for range b.N {
		src := &source{dec: &mockMP3Reader{sampleRate: 44100, samples: samples}, sampleRate: 44100}
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
