// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"io"
	"sync"
)

// consoleHost stands in for the host application: a fixed volume and
// loop flag, messages printed to w.
type consoleHost struct {
	mu       sync.Mutex
	w        io.Writer
	volume   int
	loop     bool
	hostVol  int
	messages int
}

func newConsoleHost(w io.Writer, volume int, loop bool) *consoleHost {
	return &consoleHost{w: w, volume: volume, loop: loop, hostVol: -1}
}

func (h *consoleHost) LoopFlag() bool        { return h.loop }
func (h *consoleHost) ConfiguredVolume() int { return h.volume }

func (h *consoleHost) SetHostVolume(v int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hostVol = v
}

func (h *consoleHost) PostUserMessage(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages++
	fmt.Fprintln(h.w, text)
}

func (h *consoleHost) failed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.messages > 0
}

func (h *consoleHost) hostVolume() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hostVol
}
