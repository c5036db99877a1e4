// SPDX-License-Identifier: EPL-2.0

// Package kv is the durable configuration store the override catalog lives
// in: string values addressed by a group and a key.
package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

var ErrClosed = errors.New("kv store is closed")

// Store is a grouped string key-value store. Get reports a missing key
// through ok rather than an error; Unset of a missing key is a no-op.
type Store interface {
	Get(ctx context.Context, group, key string) (value string, ok bool, err error)
	Set(ctx context.Context, group, key, value string) error
	Unset(ctx context.Context, group, key string) error
	Keys(ctx context.Context, group string) ([]string, error)
	Close() error
}

// Options selects a backend for Open.
type Options struct {
	Backend       string // sqlite, redis or memory
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open builds the backend named in opts.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.Backend {
	case "", "sqlite":
		return OpenSQLite(ctx, opts.Path, logger)
	case "redis":
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, logger)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", opts.Backend)
	}
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	groups map[string]map[string]string
	closed bool
}

func NewMemory() *Memory {
	return &Memory{groups: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, group, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.groups[group][key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, group, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	g, ok := m.groups[group]
	if !ok {
		g = make(map[string]string)
		m.groups[group] = g
	}
	g[key] = value
	return nil
}

func (m *Memory) Unset(_ context.Context, group, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.groups[group], key)
	return nil
}

func (m *Memory) Keys(_ context.Context, group string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.groups[group]))
	for k := range m.groups[group] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
