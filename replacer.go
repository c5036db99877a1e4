// SPDX-License-Identifier: EPL-2.0

package musicreplacer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ik5/musicreplacer/config"
	"github.com/ik5/musicreplacer/engine"
	"github.com/ik5/musicreplacer/formats"
	apperrors "github.com/ik5/musicreplacer/internal/errors"
	"github.com/ik5/musicreplacer/internal/logging"
	"github.com/ik5/musicreplacer/kv"
	"github.com/ik5/musicreplacer/player"
	"github.com/ik5/musicreplacer/search"
	"github.com/ik5/musicreplacer/store"
	"github.com/ik5/musicreplacer/worker"
	"go.uber.org/zap"
)

// Host is the application whose music is replaced.
type Host = engine.Host

// Replacer wires the catalog, the worker, search and the playback engine
// together behind the host-facing API.
type Replacer struct {
	host   Host
	logger *zap.Logger

	kv       kv.Store
	ownsKV   bool
	store    *store.Store
	queue    *worker.Queue
	searcher *search.Searcher
	engine   *engine.Engine

	ctx      context.Context
	cancel   context.CancelFunc
	watchers sync.WaitGroup
	overflow sync.WaitGroup
	shutdown sync.Once
}

// New builds a Replacer from cfg. cfg must already be validated.
func New(cfg *config.Config, host Host, opts ...Option) (*Replacer, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if host == nil {
		return nil, errors.New("nil host")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		l, err := logging.New(cfg.Log)
		if err != nil {
			return nil, fmt.Errorf("building logger: %w", err)
		}
		o.logger = l
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Replacer{
		host:   host,
		logger: o.logger,
		ctx:    ctx,
		cancel: cancel,
	}

	r.kv = o.kv
	if r.kv == nil {
		s, err := kv.Open(ctx, kv.Options{
			Backend:       cfg.Store.Backend,
			Path:          cfg.StorePath(),
			RedisAddr:     cfg.Store.RedisAddr,
			RedisPassword: cfg.Store.RedisPassword,
			RedisDB:       cfg.Store.RedisDB,
		}, o.logger.Named("kv"))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("opening catalog store: %w", err)
		}
		r.kv = s
		r.ownsKV = true
	}

	r.queue = worker.New(cfg.Acquisition.QueueSize, o.logger.Named("worker"))

	if o.output == nil {
		o.output = player.NewSpeaker(player.DefaultSampleRate, player.DefaultBuffer, o.logger.Named("speaker"))
	}
	registry := formats.Default()
	opener := player.NewOpener(registry, o.output, player.WithLogger(o.logger.Named("player")))

	if o.fetcher == nil {
		o.fetcher = store.NewHTTPFetcher(cfg.Acquisition.ConverterURL, cfg.Acquisition.Timeout(), o.logger.Named("fetch"))
	}

	st, err := store.Open(ctx, r.kv, store.Options{
		Dir:                  cfg.CachePath(),
		Group:                cfg.Store.Group,
		KeyPrefix:            cfg.Store.KeyPrefix,
		Extensions:           opener.Extensions(),
		Registry:             registry,
		NormalizeWAV:         cfg.Acquisition.NormalizeWAV,
		SkipOverriddenOnBulk: cfg.Acquisition.SkipOverriddenOnBulk,
		Fetcher:              o.fetcher,
		FetchTimeout:         cfg.Acquisition.Timeout(),
		Deferred:             r.deferred,
		Logger:               o.logger.Named("store"),
	})
	if err != nil {
		r.closeBackground(context.Background())
		return nil, err
	}
	r.store = st

	if o.provider == nil {
		o.provider = search.NewHTTPProvider(cfg.Search.Endpoint, cfg.Search.Timeout())
	}
	r.searcher = search.New(o.provider, r.queue, cfg.Search.PageSize, o.logger.Named("search"))

	r.engine = engine.New(host, st, opener, engine.Options{
		Fade:           cfg.Playback.Fade(),
		MaxVolumeUnits: cfg.Playback.MaxVolumeUnits,
		Remove:         r.RemoveOverride,
		Clock:          o.clock,
		Logger:         o.logger.Named("engine"),
	})

	return r, nil
}

// deferred runs f on the worker. When the queue refuses it, f runs on its
// own goroutine instead so catalog cleanup is never lost.
func (r *Replacer) deferred(f func()) {
	id := r.queue.Submit("deferred", func(context.Context) error {
		f()
		return nil
	})
	if id != "" {
		return
	}

	r.logger.Warn("work queue refused deferred cleanup, running it aside")
	r.overflow.Add(1)
	go func() {
		defer r.overflow.Done()
		f()
	}()
}

// notify posts the user-facing message for err, if it has one.
func (r *Replacer) notify(track string, err error) {
	if msg := apperrors.UserMessage(track, err); msg != "" {
		r.host.PostUserMessage(msg)
	}
}

func (r *Replacer) submit(job, track string, fn func(ctx context.Context) error) {
	id := r.queue.Submit(job, func(ctx context.Context) error {
		err := fn(ctx)
		r.notify(track, err)
		return err
	})
	if id == "" {
		r.notify(track, apperrors.ErrQueueFull)
	}
}

// TrackTick tells the replacer which track the host shows as playing.
func (r *Replacer) TrackTick(track string) { r.engine.TrackTick(track) }

// FrameTick advances fades and re-asserts volumes.
func (r *Replacer) FrameTick() { r.engine.FrameTick() }

// OverrideWithFile queues copying path into the cache as the override for
// track.
func (r *Replacer) OverrideWithFile(track, path string) {
	r.submit("override-file", track, func(ctx context.Context) error {
		return r.store.CreateLocal(ctx, track, path)
	})
}

// OverrideWithHit queues downloading a search hit as the override for
// track.
func (r *Replacer) OverrideWithHit(track string, hit search.Hit) {
	remote := store.Remote{
		ID:          hit.ID,
		Name:        hit.Name,
		URL:         hit.URL,
		Duration:    hit.Duration,
		Uploader:    hit.Uploader,
		UploaderURL: hit.UploaderURL,
	}
	r.submit("override-remote", track, func(ctx context.Context) error {
		return r.store.CreateRemote(ctx, track, remote)
	})
}

func (r *Replacer) RemoveOverride(track string) {
	r.submit("remove", track, func(ctx context.Context) error {
		return r.store.Remove(ctx, track)
	})
}

func (r *Replacer) RemoveAllOverrides() {
	r.submit("remove-all", "all overrides", func(ctx context.Context) error {
		return r.store.RemoveAll(ctx)
	})
}

// BulkOverride queues overriding every known track that has a file in dir.
func (r *Replacer) BulkOverride(dir string) {
	r.submit("bulk", dir, func(ctx context.Context) error {
		rep, err := r.store.BulkCreate(ctx, dir)
		if err != nil {
			return err
		}
		r.reportFailures(rep)
		return nil
	})
}

// ApplyPreset queues fetching every track of p.
func (r *Replacer) ApplyPreset(p *store.Preset) {
	r.submit("preset", p.Name, func(ctx context.Context) error {
		r.reportFailures(r.store.BulkCreatePreset(ctx, p))
		return nil
	})
}

func (r *Replacer) reportFailures(rep *store.Report) {
	for name, err := range rep.Failed {
		r.notify(name, err)
	}
}

// Search delivers pages of hits for term from the worker.
func (r *Replacer) Search(term string, deliver func(search.Page)) {
	r.searcher.Search(term, deliver)
}

func (r *Replacer) SetTrackNames(names []string) { r.store.SetTrackNames(names) }

// Overridden lists every overridden track, sorted.
func (r *Replacer) Overridden() []string { return r.store.Overridden() }

func (r *Replacer) Lookup(track string) (*store.Record, bool) { return r.store.Lookup(track) }

// Shutdown stops playback, hands the host its volume back, then waits for
// queued work until ctx ends and closes the catalog store. It must be
// called from the frame goroutine.
func (r *Replacer) Shutdown(ctx context.Context) error {
	var err error
	r.shutdown.Do(func() {
		r.engine.Shutdown()
		err = r.closeBackground(ctx)
	})
	return err
}

func (r *Replacer) closeBackground(ctx context.Context) error {
	r.cancel()
	r.watchers.Wait()

	err := r.queue.Close(ctx)
	r.overflow.Wait()
	if r.ownsKV {
		err = errors.Join(err, r.kv.Close())
	}
	return err
}
