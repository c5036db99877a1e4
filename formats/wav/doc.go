// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes RIFF/WAVE integer PCM on top of
// github.com/go-audio/wav.
//
// Decoding accepts 8, 16, 24 and 32-bit PCM in any channel layout and skips
// chunks that sit between "fmt " and "data". Samples come out as float32 in
// [-1, 1]:
//
//	f, _ := os.Open("track.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// Encode writes any audio.Source back out as 16-bit PCM; it is what the
// override store uses when it normalizes downloads to WAV.
package wav
