// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/ik5/musicreplacer/audio"
	apperrors "github.com/ik5/musicreplacer/internal/errors"
	"go.uber.org/zap"
)

const (
	DefaultSampleRate = 44100
	DefaultBuffer     = 100 * time.Millisecond
)

// Speaker is the system audio device. The device is opened lazily on the
// first Start and stays open for the life of the process.
type Speaker struct {
	sampleRate int
	buffer     time.Duration
	logger     *zap.Logger

	once    sync.Once
	initErr error
}

func NewSpeaker(sampleRate int, buffer time.Duration, logger *zap.Logger) *Speaker {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Speaker{sampleRate: sampleRate, buffer: buffer, logger: logger}
}

func (s *Speaker) init() error {
	s.once.Do(func() {
		sr := beep.SampleRate(s.sampleRate)
		if err := speaker.Init(sr, sr.N(s.buffer)); err != nil {
			s.initErr = fmt.Errorf("%w: %w", apperrors.ErrOutOfResources, err)
			s.logger.Error("speaker init failed", zap.Error(err))
			return
		}
		s.logger.Debug("speaker initialized",
			zap.Int("sample_rate", s.sampleRate),
			zap.Duration("buffer", s.buffer),
		)
	})
	return s.initErr
}

// Start resamples and upmixes src to the device format and plays it.
func (s *Speaker) Start(src audio.Source) (Voice, error) {
	if err := s.init(); err != nil {
		src.Close()
		return nil, err
	}

	var in audio.Source = src
	if in.SampleRate() != s.sampleRate {
		in = audio.NewResampler(in, s.sampleRate)
	}
	in = audio.NewChannelMixer(in, 2)

	st := &sourceStreamer{src: in}
	v := &speakerVoice{stream: st}
	v.vol = &effects.Volume{Streamer: st, Base: 2}
	v.ctrl = &beep.Ctrl{Streamer: v.vol}

	speaker.Play(beep.Seq(v.ctrl, beep.Callback(func() {
		v.done.Store(true)
	})))
	return v, nil
}

type speakerVoice struct {
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	stream *sourceStreamer
	done   atomic.Bool
}

func (v *speakerVoice) SetVolume(x float64) {
	speaker.Lock()
	defer speaker.Unlock()

	v.vol.Silent = x <= 0
	if x > 0 {
		v.vol.Volume = math.Log2(x)
	}
}

func (v *speakerVoice) Playing() bool { return !v.done.Load() }

func (v *speakerVoice) Stop() {
	if v.done.Swap(true) {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()

	v.ctrl.Streamer = nil
	v.stream.close()
}

// sourceStreamer adapts an interleaved stereo audio.Source to beep.
type sourceStreamer struct {
	src    audio.Source
	buf    []float32
	err    error
	closed bool
}

func (s *sourceStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.closed {
		return 0, false
	}

	need := len(samples) * 2
	if cap(s.buf) < need {
		s.buf = make([]float32, need)
	}
	buf := s.buf[:need]

	filled := 0
	for filled < need {
		n, err := s.src.ReadSamples(buf[filled:])
		filled += n
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			s.close()
			break
		}
		if n == 0 {
			s.close()
			break
		}
	}

	frames := filled / 2
	for i := range frames {
		samples[i][0] = float64(buf[2*i])
		samples[i][1] = float64(buf[2*i+1])
	}
	if frames == 0 {
		return 0, false
	}
	return frames, true
}

func (s *sourceStreamer) Err() error { return s.err }

func (s *sourceStreamer) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.src.Close()
}
