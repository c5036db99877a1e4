// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/musicreplacer/audio"
	"github.com/ik5/musicreplacer/utils"
)

const pcmFormat = 1

// Encode drains src into w as 16-bit PCM WAV, keeping the source rate and
// channel count. Chunk sizes are patched on close, hence the WriteSeeker.
// src is not closed.
func Encode(w io.WriteSeeker, src audio.Source) error {
	if w == nil {
		return ErrNotSeekable
	}
	channels := src.Channels()
	if channels <= 0 || src.SampleRate() <= 0 {
		return ErrUnsupportedWavLayout
	}

	enc := gowav.NewEncoder(w, src.SampleRate(), 16, channels, pcmFormat)

	chunk := 4096 - 4096%channels
	buf := make([]float32, chunk)
	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  src.SampleRate(),
		},
		Data:           make([]int, chunk),
		SourceBitDepth: 16,
	}

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			intBuf.Data = intBuf.Data[:n]
			for i := range n {
				intBuf.Data[i] = int(utils.Float32ToInt16(buf[i]))
			}
			if werr := enc.Write(intBuf); werr != nil {
				return fmt.Errorf("writing wav samples: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading source samples: %w", err)
		}
		if n == 0 {
			break
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// WriteWAV16 writes interleaved 16-bit samples as a PCM WAV.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	if w == nil {
		return ErrNotSeekable
	}
	if channels <= 0 || sampleRate <= 0 {
		return ErrUnsupportedWavLayout
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, pcmFormat)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	})
	if err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}
