// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"strings"
	"sync"
	"time"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Durationer is implemented by sources that know their length without
// being read to the end.
type Durationer interface {
	Duration() time.Duration
}

// DurationOf reports the length of src, or zero when it cannot tell.
func DurationOf(src Source) time.Duration {
	if d, ok := src.(Durationer); ok {
		return d.Duration()
	}
	return 0
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps file extensions (".wav", ".mp3", ...) to decoders.
// Registration order is kept: it is the preference order callers walk
// when more than one format could serve a request.
type Registry struct {
	codecs map[string]Decoder
	order  []string

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

// NormalizeExt lower-cases ext and makes sure it carries a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Register adds d under ext. Registering an existing ext replaces the
// decoder but keeps its original position in the preference order.
func (r *Registry) Register(ext string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ext = NormalizeExt(ext)
	if _, ok := r.codecs[ext]; !ok {
		r.order = append(r.order, ext)
	}
	r.codecs[ext] = d
}

func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[NormalizeExt(ext)]
	return d, ok
}

// Supports reports whether a decoder is registered for ext.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.Get(ext)
	return ok
}

// Extensions returns the registered extensions in preference order.
func (r *Registry) Extensions() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
