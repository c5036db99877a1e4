// SPDX-License-Identifier: EPL-2.0

package audiotest

import "sync"

// FakeHost records what the replacer pushes at the host and lets tests
// set what the host reports back.
type FakeHost struct {
	mu       sync.Mutex
	loop     bool
	volume   int
	volumes  []int
	messages []string
}

func NewFakeHost(volume int, loop bool) *FakeHost {
	return &FakeHost{volume: volume, loop: loop}
}

func (h *FakeHost) LoopFlag() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loop
}

func (h *FakeHost) ConfiguredVolume() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *FakeHost) SetHostVolume(v int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volumes = append(h.volumes, v)
}

func (h *FakeHost) PostUserMessage(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, text)
}

func (h *FakeHost) SetLoop(loop bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loop = loop
}

func (h *FakeHost) SetVolume(v int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = v
}

// LastHostVolume returns the most recent SetHostVolume value, or -1.
func (h *FakeHost) LastHostVolume() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.volumes) == 0 {
		return -1
	}
	return h.volumes[len(h.volumes)-1]
}

func (h *FakeHost) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.messages...)
}
