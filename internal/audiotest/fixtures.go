// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"testing"
)

// WAV16 encodes interleaved samples as a canonical 44-byte-header PCM WAV.
func WAV16(sampleRate, channels int, samples []int16) []byte {
	var b bytes.Buffer
	dataLen := uint32(len(samples) * 2)
	blockAlign := uint16(channels * 2)

	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, 36+dataLen)
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&b, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	binary.Write(&b, binary.LittleEndian, blockAlign)
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, dataLen)
	binary.Write(&b, binary.LittleEndian, samples)

	return b.Bytes()
}

// ToneWAV returns frames of a 440Hz stereo tone at 8kHz.
func ToneWAV(frames int) []byte {
	samples := make([]int16, frames*2)
	for i := range frames {
		v := int16(8000 * math.Sin(2*math.Pi*440*float64(i)/8000))
		samples[2*i] = v
		samples[2*i+1] = v
	}
	return WAV16(8000, 2, samples)
}

// WriteFile writes data to path or fails the test.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	return path
}
