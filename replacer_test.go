// SPDX-License-Identifier: EPL-2.0

package musicreplacer

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ik5/musicreplacer/config"
	"github.com/ik5/musicreplacer/internal/audiotest"
	"github.com/ik5/musicreplacer/kv"
	"github.com/ik5/musicreplacer/player/playertest"
	"github.com/ik5/musicreplacer/search"
	"go.uber.org/zap"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) step(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	r     *Replacer
	host  *audiotest.FakeHost
	out   *playertest.Output
	clock *testClock
	src   string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	f := &fixture{
		host:  audiotest.NewFakeHost(128, true),
		out:   playertest.NewOutput(),
		clock: &testClock{t: time.Unix(1_700_000_000, 0)},
	}
	f.src = audiotest.WriteFile(t, filepath.Join(t.TempDir(), "harmony.wav"), audiotest.ToneWAV(400))

	base := []Option{
		WithLogger(zap.NewNop()),
		WithOutput(f.out),
		WithKV(kv.NewMemory()),
		WithClock(f.clock.now),
	}
	r, err := New(cfg, f.host, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.r = r
	t.Cleanup(func() { r.Shutdown(context.Background()) })
	return f
}

func (f *fixture) frames(n int) {
	for range n {
		f.clock.step(20 * time.Millisecond)
		f.r.FrameTick()
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReplacer_OverrideLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.r.SetTrackNames([]string{"Harmony", "Autumn Voyage"})

	f.r.OverrideWithFile("Harmony", f.src)
	eventually(t, "override to be written", func() bool {
		_, ok := f.r.Lookup("Harmony")
		return ok
	})

	f.r.TrackTick("Harmony")
	f.frames(60)

	if f.out.Active() != 1 {
		t.Fatalf("active voices = %d, want 1", f.out.Active())
	}
	if got := f.host.LastHostVolume(); got != 0 {
		t.Errorf("host volume under override = %d, want 0", got)
	}

	// looping: the voice ends and the next frame restarts it
	voices := f.out.Voices()
	voices[len(voices)-1].Finish()
	f.frames(1)
	if f.out.Active() != 1 || len(f.out.Voices()) != 2 {
		t.Errorf("after loop end: active = %d, started = %d", f.out.Active(), len(f.out.Voices()))
	}

	f.r.RemoveOverride("Harmony")
	eventually(t, "override to be removed", func() bool {
		return len(f.r.Overridden()) == 0
	})

	f.r.TrackTick("Harmony")
	f.frames(60)
	if f.out.Active() != 0 {
		t.Errorf("active voices after removal = %d", f.out.Active())
	}
	if got := f.host.LastHostVolume(); got != 127 {
		t.Errorf("host volume after removal = %d, want 127", got)
	}
}

func TestReplacer_FailuresReachHost(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.r.SetTrackNames([]string{"Harmony"})

	txt := audiotest.WriteFile(t, filepath.Join(t.TempDir(), "notes.txt"), []byte("x"))
	f.r.OverrideWithFile("Harmony", txt)
	f.r.OverrideWithFile("Nope", f.src)

	eventually(t, "two messages", func() bool { return len(f.host.Messages()) == 2 })

	msgs := f.host.Messages()
	if !strings.Contains(msgs[0], "isn't supported") || !strings.Contains(msgs[1], "no track") {
		t.Errorf("messages = %q", msgs)
	}
}

func TestReplacer_BrokenOverrideIsRemoved(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	broken := audiotest.WriteFile(t, filepath.Join(t.TempDir(), "broken.wav"), []byte("not a wav"))
	f.r.OverrideWithFile("Harmony", broken)
	eventually(t, "override to be written", func() bool {
		_, ok := f.r.Lookup("Harmony")
		return ok
	})

	f.r.TrackTick("Harmony")
	f.frames(60)

	eventually(t, "broken override removal", func() bool { return len(f.r.Overridden()) == 0 })
	if msgs := f.host.Messages(); len(msgs) != 1 || !strings.Contains(msgs[0], "removed") {
		t.Errorf("messages = %q", msgs)
	}
}

type staticProvider []search.Hit

func (p staticProvider) Query(context.Context, string, string) ([]search.Hit, string, error) {
	return p, "", nil
}

func TestReplacer_EvictionWithFullQueue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := kv.NewMemory()
	f := newFixture(t, WithKV(catalog))

	f.r.OverrideWithFile("Harmony", f.src)
	eventually(t, "override created", func() bool {
		_, ok := f.r.Lookup("Harmony")
		return ok
	})
	if err := os.Remove(f.r.store.FilePath("Harmony", ".wav")); err != nil {
		t.Fatal(err)
	}

	release := make(chan struct{})
	defer close(release)
	f.r.queue.Submit("block", func(context.Context) error {
		<-release
		return nil
	})
	for f.r.queue.Submit("fill", func(context.Context) error { return nil }) != "" {
	}

	if _, ok := f.r.Lookup("Harmony"); ok {
		t.Fatal("Lookup() returned an override whose file is gone")
	}
	eventually(t, "persisted entry unset", func() bool {
		_, ok, err := catalog.Get(ctx, "musicreplacer", "track_Harmony")
		return err == nil && !ok
	})
}

func TestReplacer_Search(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithSearchProvider(staticProvider{{ID: "a"}, {ID: "b"}}))

	pages := make(chan search.Page, 1)
	f.r.Search("harmony", func(p search.Page) { pages <- p })

	select {
	case p := <-pages:
		if len(p.Hits) != 2 || p.Next != nil {
			t.Errorf("page = %+v", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no page delivered")
	}
}

func TestReplacer_BulkAndWatch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.r.SetTrackNames([]string{"Harmony", "Autumn Voyage", "Scape Main"})

	bulk := t.TempDir()
	audiotest.WriteFile(t, filepath.Join(bulk, "Harmony.wav"), audiotest.ToneWAV(10))
	audiotest.WriteFile(t, filepath.Join(bulk, "Autumn Voyage.wav"), audiotest.ToneWAV(10))

	f.r.BulkOverride(bulk)
	eventually(t, "bulk import", func() bool { return len(f.r.Overridden()) == 2 })

	watched := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := f.r.WatchDirectory(ctx, watched); err != nil {
		t.Fatalf("WatchDirectory() error = %v", err)
	}

	audiotest.WriteFile(t, filepath.Join(watched, "Scape Main.wav"), audiotest.ToneWAV(10))
	audiotest.WriteFile(t, filepath.Join(watched, "Unknown.wav"), audiotest.ToneWAV(10))
	eventually(t, "watched import", func() bool {
		return slices.Contains(f.r.Overridden(), "Scape Main")
	})

	f.r.RemoveAllOverrides()
	eventually(t, "remove all", func() bool { return len(f.r.Overridden()) == 0 })

	entries, err := os.ReadDir(f.r.store.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache not empty after remove all: %d files", len(entries))
	}
}

func TestReplacer_ShutdownRestoresHost(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.r.OverrideWithFile("Harmony", f.src)
	eventually(t, "override to be written", func() bool {
		_, ok := f.r.Lookup("Harmony")
		return ok
	})
	f.r.TrackTick("Harmony")
	f.frames(60)

	if err := f.r.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := f.r.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
	if f.out.Active() != 0 {
		t.Error("voice still playing after Shutdown")
	}
	if got := f.host.LastHostVolume(); got != 127 {
		t.Errorf("host volume = %d, want 127", got)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, audiotest.NewFakeHost(1, false)); err == nil {
		t.Error("New(nil config) error = nil")
	}
	if _, err := New(config.Default(), nil); err == nil {
		t.Error("New(nil host) error = nil")
	}
}
