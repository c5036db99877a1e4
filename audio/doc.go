// SPDX-License-Identifier: EPL-2.0

// Package audio holds the sample level building blocks shared by the format
// decoders and the playback layer.
//
// Every decoder yields a Source of interleaved float32 samples in [-1, 1].
// Sources chain: a Resampler converts the rate, a ChannelMixer fixes the
// channel count, and ReadAll captures a whole stream in a Buffer that can be
// replayed from the start.
//
// The Registry maps file extensions to decoders and remembers the order
// they were registered in. That order is the format preference used when
// several encodings of the same track exist.
package audio
