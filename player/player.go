// SPDX-License-Identifier: EPL-2.0

// Package player wraps decoded override files behind a small playback
// capability: play from the start, report activity, set gain, close.
//
// A Player never mixes samples itself. It hands a fresh audio.Source to an
// Output for every Play call and keeps the Voice it gets back.
package player

import (
	"errors"

	"github.com/ik5/musicreplacer/audio"
)

var ErrClosed = errors.New("player is closed")

// Player is one opened override file.
type Player interface {
	// Play starts from the first sample. A voice still running from an
	// earlier Play is stopped first.
	Play() error
	// IsPlaying is true only while a voice is producing sound.
	IsPlaying() bool
	// SetVolume sets linear gain. Callers clamp to [0,1].
	SetVolume(v float64)
	// Close releases the voice and any staging file. Extra calls are no-ops.
	Close() error
}

// Output is an audio device that can run several voices.
type Output interface {
	// Start begins playing src. The Output owns src from here on and
	// closes it when the voice ends or is stopped.
	Start(src audio.Source) (Voice, error)
}

// Voice is one running stream on an Output.
type Voice interface {
	SetVolume(v float64)
	Playing() bool
	Stop()
}

// voicePlayer is the shared Play/Stop/volume bookkeeping. open yields a
// new Source per Play; release runs once on Close.
type voicePlayer struct {
	out     Output
	open    func() (audio.Source, error)
	release func() error

	voice  Voice
	volume float64
	closed bool
}

func newVoicePlayer(out Output, open func() (audio.Source, error), release func() error) *voicePlayer {
	return &voicePlayer{out: out, open: open, release: release, volume: 1}
}

func (p *voicePlayer) Play() error {
	if p.closed {
		return ErrClosed
	}

	p.stopVoice()

	src, err := p.open()
	if err != nil {
		return err
	}

	v, err := p.out.Start(src)
	if err != nil {
		return err
	}
	v.SetVolume(p.volume)
	p.voice = v
	return nil
}

func (p *voicePlayer) IsPlaying() bool {
	return p.voice != nil && p.voice.Playing()
}

func (p *voicePlayer) SetVolume(v float64) {
	p.volume = v
	if p.voice != nil {
		p.voice.SetVolume(v)
	}
}

func (p *voicePlayer) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.stopVoice()

	if p.release != nil {
		return p.release()
	}
	return nil
}

func (p *voicePlayer) stopVoice() {
	if p.voice != nil {
		p.voice.Stop()
		p.voice = nil
	}
}
