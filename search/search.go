// SPDX-License-Identifier: EPL-2.0

// Package search pages through a provider's results for replacement audio.
//
// A search is a forward-only chain of pages. Every page carries the next
// few hits and, unless it is the last, a Next func that asks for the page
// after it. Pages are always delivered from the worker, never inline.
package search

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/musicreplacer/worker"
	"go.uber.org/zap"
)

const DefaultPageSize = 4

// Hit is one search result.
type Hit struct {
	ID          string
	Name        string
	URL         string
	Duration    time.Duration
	Uploader    string
	UploaderURL string
}

// Provider runs one upstream query. cursor is "" for the first batch;
// next is "" when nothing follows.
type Provider interface {
	Query(ctx context.Context, term, cursor string) (hits []Hit, next string, err error)
}

// Page is one delivery. Next is nil on the terminal page. Calling Next
// more than once, or after a later page was requested, is not supported.
type Page struct {
	Hits []Hit
	Next func()
}

// Runner executes jobs off the caller's goroutine.
type Runner interface {
	Submit(name string, fn worker.Job) string
}

type Searcher struct {
	provider Provider
	runner   Runner
	pageSize int
	logger   *zap.Logger
}

func New(provider Provider, runner Runner, pageSize int, logger *zap.Logger) *Searcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{provider: provider, runner: runner, pageSize: pageSize, logger: logger}
}

type session struct {
	id        string
	term      string
	hits      []Hit
	cursor    string
	exhausted bool
	start     int
}

// Search starts a session for term. deliver receives the first page, and
// later pages as their Next funcs are called.
func (s *Searcher) Search(term string, deliver func(Page)) {
	sess := &session{id: uuid.NewString(), term: term}
	s.schedule(sess, deliver)
}

func (s *Searcher) schedule(sess *session, deliver func(Page)) {
	id := s.runner.Submit("search", func(ctx context.Context) error {
		deliver(s.page(ctx, sess, deliver))
		return nil
	})
	if id == "" {
		s.logger.Warn("search dropped, queue unavailable", zap.String("session", sess.id))
		deliver(Page{})
	}
}

func (s *Searcher) page(ctx context.Context, sess *session, deliver func(Page)) Page {
	log := s.logger.With(zap.String("session", sess.id))

	for !sess.exhausted && sess.start+s.pageSize >= len(sess.hits) {
		hits, next, err := s.provider.Query(ctx, sess.term, sess.cursor)
		if err != nil {
			log.Warn("search failed", zap.String("term", sess.term), zap.Error(err))
			return Page{}
		}
		sess.hits = append(sess.hits, hits...)
		sess.cursor = next
		sess.exhausted = next == "" || len(hits) == 0
	}

	start := min(sess.start, len(sess.hits))
	end := min(sess.start+s.pageSize, len(sess.hits))
	sess.start = end

	p := Page{Hits: sess.hits[start:end:end]}
	if end < len(sess.hits) || !sess.exhausted {
		p.Next = func() { s.schedule(sess, deliver) }
	}

	log.Debug("search page", zap.Int("start", start), zap.Int("hits", len(p.Hits)), zap.Bool("more", p.Next != nil))
	return p
}
