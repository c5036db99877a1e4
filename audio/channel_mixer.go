// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer adapts a source to a fixed output channel count. Mono and
// stereo pass straight through when they already match; anything else is
// averaged down to mono first and then copied to every output channel.
type ChannelMixer struct {
	src Source
	out int
	tmp []float32
}

func NewChannelMixer(src Source, channels int) *ChannelMixer {
	if channels <= 0 {
		channels = 1
	}
	return &ChannelMixer{
		src: src,
		out: channels,
		tmp: make([]float32, 8192),
	}
}

// NewMonoMixer averages every frame of src down to a single channel.
func NewMonoMixer(src Source) *ChannelMixer {
	return NewChannelMixer(src, 1)
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.out }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("closing mixer source: %w", err)
	}
	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	in := m.src.Channels()
	if in <= 0 {
		return 0, ErrInvalidChannels
	}
	if in == m.out {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.out
	if frames == 0 {
		return 0, ErrInvalidDstSize
	}

	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	got := n / in

	inv := float32(1) / float32(in)
	for f := range got {
		var v float32
		switch in {
		case 1:
			v = m.tmp[f]
		case 2:
			v = (m.tmp[2*f] + m.tmp[2*f+1]) * 0.5
		default:
			base := f * in
			for c := range in {
				v += m.tmp[base+c]
			}
			v *= inv
		}

		for c := range m.out {
			dst[f*m.out+c] = v
		}
	}

	return got * m.out, err
}
