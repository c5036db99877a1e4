// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// createWAVFile builds a canonical RIFF/WAVE image, optionally with an extra
// chunk between "fmt " and "data".
func createWAVFile(sampleRate, channels, format int, extra []byte, samples []int16) []byte {
	buf := new(bytes.Buffer)

	numChannels := uint16(channels)
	byteRate := uint32(sampleRate) * uint32(numChannels) * 2
	blockAlign := numChannels * 2
	dataSize := uint32(len(samples) * 2)
	extraSize := uint32(0)
	if extra != nil {
		extraSize = 8 + uint32(len(extra))
	}

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+extraSize+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(format))
	binary.Write(buf, binary.LittleEndian, numChannels)
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(16))

	if extra != nil {
		buf.WriteString("JUNK")
		binary.Write(buf, binary.LittleEndian, uint32(len(extra)))
		buf.Write(extra)
	}

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

func TestDecoder_Metadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sampleRate int
		channels   int
	}{
		{"mono 8k", 8000, 1},
		{"stereo 44.1k", 44100, 2},
		{"stereo 48k", 48000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := createWAVFile(tt.sampleRate, tt.channels, 1, nil, make([]int16, 64*tt.channels))
			src, err := Decoder{}.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if src.SampleRate() != tt.sampleRate {
				t.Errorf("SampleRate() = %d, want %d", src.SampleRate(), tt.sampleRate)
			}
			if src.Channels() != tt.channels {
				t.Errorf("Channels() = %d, want %d", src.Channels(), tt.channels)
			}
		})
	}
}

func TestDecoder_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not riff", []byte("NOT A WAV FILE DATA AT ALL, JUST TEXT PADDING"), ErrNotWavFile},
		{"empty", []byte{}, ErrNotWavFile},
		{"ieee float", createWAVFile(8000, 1, 3, nil, make([]int16, 32)), ErrOnlyPCMSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecoder_SkipsExtraChunks(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 32767}
	data := createWAVFile(8000, 1, 1, []byte("padding-0123"), samples)

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	buf := make([]float32, 16)
	n, _ := src.ReadSamples(buf)
	if n != len(samples) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(samples))
	}
	if math.Abs(float64(buf[1])-0.5) > 0.001 {
		t.Errorf("sample[1] = %v, want 0.5", buf[1])
	}
}

func TestSource_ReadSamplesUntilEOF(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = int16(i * 10)
	}
	data := createWAVFile(8000, 1, 1, nil, samples)

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	total := 0
	buf := make([]float32, 128)
	for range 100 {
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

	n, err := src.ReadSamples(buf)
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_EmptyDst(t *testing.T) {
	t.Parallel()

	data := createWAVFile(8000, 1, 1, nil, make([]int16, 16))
	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	n, err := src.ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := createWAVFile(16000, 2, 1, nil, make([]int16, 200))
	// io.MultiReader hides Seek
	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", src.SampleRate())
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	data := createWAVFile(44100, 2, 1, nil, make([]int16, 44100*2))
	buf := make([]float32, 4096)

	b.ReportAllocs()
	for range b.N {
		src, _ := Decoder{}.Decode(bytes.NewReader(data))
		for {
			_, err := src.ReadSamples(buf)
			if err != nil {
				break
			}
		}
	}
}
