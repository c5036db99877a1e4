// SPDX-License-Identifier: EPL-2.0

// Package engine decides, frame by frame, which override is audible and
// how loud, and keeps the host's own music silent underneath it.
//
// All methods run on the host's frame goroutine. Nothing here blocks on
// I/O beyond the store's existence check and opening a player at swap time.
package engine

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/ik5/musicreplacer/internal/errors"
	"github.com/ik5/musicreplacer/player"
	"github.com/ik5/musicreplacer/store"
	"github.com/ik5/musicreplacer/utils"
	"go.uber.org/zap"
)

const (
	DefaultFade           = time.Second
	DefaultMaxVolumeUnits = 255
)

// Host is the application whose music is being replaced. Volumes are the
// host's integer units; ConfiguredVolume is 1-indexed with 0 meaning off.
type Host interface {
	LoopFlag() bool
	ConfiguredVolume() int
	SetHostVolume(v int)
	PostUserMessage(text string)
}

// Resolver finds the live override for a track and the files that may
// back it.
type Resolver interface {
	Lookup(name string) (*store.Record, bool)
	Candidates(name string) []string
}

type Opener interface {
	OpenFirst(candidates []string) (player.Player, string, error)
}

type Options struct {
	Fade           time.Duration
	MaxVolumeUnits int
	// Remove deletes a broken override. It must not block.
	Remove func(name string)
	Clock  func() time.Time
	Logger *zap.Logger
}

type Engine struct {
	host     Host
	resolver Resolver
	opener   Opener
	remove   func(string)
	now      func() time.Time
	fade     time.Duration
	maxUnits int
	logger   *zap.Logger

	active  *store.Record
	player  player.Player
	pending *store.Record

	fading    bool
	fadeStart time.Time

	lastVolume     float64
	haveLastVolume bool
	hostMuted      bool

	// abandoned is a selection whose player could not start; it is not
	// retried until the host moves to another track.
	abandoned *store.Record
}

func New(host Host, resolver Resolver, opener Opener, opts Options) *Engine {
	if opts.Fade < 0 {
		opts.Fade = 0
	}
	if opts.MaxVolumeUnits <= 0 {
		opts.MaxVolumeUnits = DefaultMaxVolumeUnits
	}
	if opts.Remove == nil {
		opts.Remove = func(string) {}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Engine{
		host:     host,
		resolver: resolver,
		opener:   opener,
		remove:   opts.Remove,
		now:      opts.Clock,
		fade:     opts.Fade,
		maxUnits: opts.MaxVolumeUnits,
		logger:   opts.Logger,
	}
}

// NominalVolume maps the host's configured volume to [0,1].
func NominalVolume(configured, maxUnits int) float64 {
	if maxUnits <= 0 {
		return 0
	}
	return utils.Clamp01(float64(configured-1) / float64(maxUnits))
}

func (e *Engine) nominal() float64 {
	return NominalVolume(e.host.ConfiguredVolume(), e.maxUnits)
}

// TrackTick resolves the override for the track the host reports and, if
// it differs from what is playing, starts or retargets the fade.
func (e *Engine) TrackTick(track string) {
	rec, _ := e.resolver.Lookup(track)

	if e.abandoned != nil {
		if store.Same(rec, e.abandoned) {
			return
		}
		e.abandoned = nil
	}

	if e.fading {
		switch {
		case store.Same(rec, e.pending):
		case store.Same(rec, e.active):
			e.fading = false
			e.pending = nil
			e.logger.Debug("fade cancelled, track returned", zap.String("track", track))
		default:
			e.pending = rec
		}
		return
	}

	if store.Same(rec, e.active) {
		return
	}

	e.pending = rec
	e.fading = true
	e.fadeStart = e.now()
	e.logger.Debug("fade started", zap.String("track", track), zap.Bool("override", rec != nil))
}

func (e *Engine) progress() float64 {
	if e.fade <= 0 {
		return 0
	}
	return 1 - float64(e.now().Sub(e.fadeStart))/float64(e.fade)
}

// FrameTick applies this frame's volumes and performs the swap once the
// fade has run out.
func (e *Engine) FrameTick() {
	vol := e.nominal()

	if e.fading {
		if p := e.progress(); p > 0 && e.player != nil {
			e.player.SetVolume(vol * p)
		} else if p <= 0 {
			// the new player starts at vol; no restart edges this frame
			e.swap(vol)
		}
		e.lastVolume, e.haveLastVolume = vol, true
		e.syncHostVolume()
		return
	}

	if e.player != nil {
		switch {
		case e.haveLastVolume && e.lastVolume <= 0 && vol > 0:
			e.play()
		case vol > 0 && !e.player.IsPlaying() && e.host.LoopFlag():
			e.play()
		}
		e.player.SetVolume(vol)
	}

	e.lastVolume, e.haveLastVolume = vol, true
	e.syncHostVolume()
}

// syncHostVolume holds the host at zero for as long as an override is
// active or pending, and hands its volume back once neither is.
func (e *Engine) syncHostVolume() {
	if e.active != nil || e.fading {
		e.host.SetHostVolume(0)
		e.hostMuted = true
		return
	}
	if e.hostMuted {
		e.restoreHost()
	}
}

func (e *Engine) restoreHost() {
	e.host.SetHostVolume(max(e.host.ConfiguredVolume()-1, 0))
	e.hostMuted = false
}

func (e *Engine) play() {
	if err := e.player.Play(); err != nil {
		e.logger.Warn("restart failed", zap.String("track", e.active.Name), zap.Error(err))
	}
}

func (e *Engine) swap(vol float64) {
	target := e.pending
	e.pending = nil
	e.fading = false

	e.closePlayer()
	e.active = nil

	if target == nil {
		e.logger.Info("override stopped")
		return
	}

	p, path, err := e.opener.OpenFirst(e.resolver.Candidates(target.Name))
	if err == nil {
		p.SetVolume(vol)
		if err = p.Play(); err != nil {
			p.Close()
		}
	}
	if err != nil {
		e.fail(target, err)
		return
	}

	e.active = target
	e.player = p
	e.logger.Info("override started", zap.String("track", target.Name), zap.String("path", path))
}

func (e *Engine) fail(target *store.Record, err error) {
	e.abandoned = target
	log := e.logger.With(zap.String("track", target.Name))

	if errors.Is(err, apperrors.ErrOutOfResources) {
		log.Warn("override abandoned", zap.Error(err))
		return
	}

	if !errors.Is(err, apperrors.ErrPlaybackUnavailable) {
		err = fmt.Errorf("%w: %w", apperrors.ErrPlaybackUnavailable, err)
	}
	log.Error("override unplayable, removing", zap.Error(err))

	e.host.PostUserMessage(apperrors.UserMessage(target.Name, err))
	e.remove(target.Name)
}

func (e *Engine) closePlayer() {
	if e.player == nil {
		return
	}
	if err := e.player.Close(); err != nil {
		e.logger.Warn("closing player", zap.Error(err))
	}
	e.player = nil
}

// Shutdown stops any override, drops an in-flight fade and gives the host
// its volume back.
func (e *Engine) Shutdown() {
	e.closePlayer()
	e.active = nil
	e.pending = nil
	e.fading = false
	e.abandoned = nil
	e.restoreHost()
}

// Active is the override currently selected, or nil.
func (e *Engine) Active() *store.Record { return e.active }

// Fading reports whether a fade is in flight, and toward what.
func (e *Engine) Fading() (bool, *store.Record) { return e.fading, e.pending }
