// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis through github.com/jfreymuth/oggvorbis.
//
// Channel layout is whatever the stream declares. Duration is only known
// when the input implements io.Seeker.
package vorbis
