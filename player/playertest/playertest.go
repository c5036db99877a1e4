// SPDX-License-Identifier: EPL-2.0

// Package playertest provides in-memory stand-ins for audio devices and
// players.
package playertest

import (
	"errors"
	"sync"

	"github.com/ik5/musicreplacer/audio"
	"github.com/ik5/musicreplacer/player"
)

// Output records every Start and hands out Voices that run until stopped
// or finished by the test.
type Output struct {
	mu     sync.Mutex
	voices []*Voice

	// Err, when set, is returned by Start.
	Err error
}

func NewOutput() *Output { return &Output{} }

func (o *Output) Start(src audio.Source) (player.Voice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.Err != nil {
		src.Close()
		return nil, o.Err
	}
	v := &Voice{src: src, playing: true}
	o.voices = append(o.voices, v)
	return v, nil
}

// Voices returns every voice started so far, oldest first.
func (o *Output) Voices() []*Voice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Voice(nil), o.voices...)
}

// Active counts voices still playing.
func (o *Output) Active() int {
	n := 0
	for _, v := range o.Voices() {
		if v.Playing() {
			n++
		}
	}
	return n
}

type Voice struct {
	mu      sync.Mutex
	src     audio.Source
	playing bool
	volume  float64
	closed  bool
}

func (v *Voice) SetVolume(x float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = x
}

func (v *Voice) Volume() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

func (v *Voice) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// Finish ends the voice as if its source ran out.
func (v *Voice) Finish() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
	v.closeSource()
}

func (v *Voice) Stop() { v.Finish() }

// Source exposes what the voice was given.
func (v *Voice) Source() audio.Source { return v.src }

func (v *Voice) closeSource() {
	if !v.closed {
		v.closed = true
		v.src.Close()
	}
}

// Player is a scriptable player.Player.
type Player struct {
	mu sync.Mutex

	Path    string
	Plays   int
	Closes  int
	Volumes []float64
	Playing bool
	PlayErr error
}

var errClosed = errors.New("fake player closed")

func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Closes > 0 {
		return errClosed
	}
	if p.PlayErr != nil {
		return p.PlayErr
	}
	p.Plays++
	p.Playing = true
	return nil
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Playing
}

func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Volumes = append(p.Volumes, v)
}

func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closes++
	p.Playing = false
	return nil
}

// SetPlaying flips what IsPlaying reports.
func (p *Player) SetPlaying(b bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Playing = b
}

// LastVolume is the most recent SetVolume value, or -1.
func (p *Player) LastVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Volumes) == 0 {
		return -1
	}
	return p.Volumes[len(p.Volumes)-1]
}

func (p *Player) PlayCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Plays
}

func (p *Player) CloseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Closes
}
