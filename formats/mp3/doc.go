// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III through github.com/hajimehoshi/go-mp3.
//
// The decoder always produces interleaved stereo, even for mono input.
// Duration is only known when the input implements io.Seeker.
package mp3
