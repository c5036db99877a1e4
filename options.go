// SPDX-License-Identifier: EPL-2.0

package musicreplacer

import (
	"time"

	"github.com/ik5/musicreplacer/kv"
	"github.com/ik5/musicreplacer/player"
	"github.com/ik5/musicreplacer/search"
	"github.com/ik5/musicreplacer/store"
	"go.uber.org/zap"
)

type options struct {
	logger   *zap.Logger
	output   player.Output
	kv       kv.Store
	provider search.Provider
	fetcher  store.Fetcher
	clock    func() time.Time
}

// Option customizes a Replacer.
type Option func(*options)

// WithLogger replaces the logger built from the log configuration.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOutput plays overrides on out instead of the system speaker.
func WithOutput(out player.Output) Option {
	return func(o *options) { o.output = out }
}

// WithKV stores the catalog in s. The Replacer does not close it.
func WithKV(s kv.Store) Option {
	return func(o *options) { o.kv = s }
}

func WithSearchProvider(p search.Provider) Option {
	return func(o *options) { o.provider = p }
}

func WithFetcher(f store.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithClock sets the time source used for fades.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}
