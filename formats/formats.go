// SPDX-License-Identifier: EPL-2.0

// Package formats wires every bundled decoder into an audio.Registry.
package formats

import (
	"github.com/ik5/musicreplacer/audio"
	"github.com/ik5/musicreplacer/formats/aiff"
	"github.com/ik5/musicreplacer/formats/mp3"
	"github.com/ik5/musicreplacer/formats/vorbis"
	"github.com/ik5/musicreplacer/formats/wav"
)

// Default returns a registry holding the bundled decoders. Registration
// order is the format preference: .wav, .mp3, .ogg, .aiff.
func Default() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(".wav", wav.Decoder{})
	r.Register(".mp3", mp3.Decoder{})
	r.Register(".ogg", vorbis.Decoder{})
	r.Register(".aiff", aiff.Decoder{})
	return r
}
