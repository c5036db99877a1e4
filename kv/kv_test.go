// SPDX-License-Identifier: EPL-2.0

package kv

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
)

func openBackends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sqlite, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "kv.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}

	mr := miniredis.RunT(t)
	rds, err := OpenRedis(ctx, mr.Addr(), "", 0, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenRedis() error = %v", err)
	}

	stores := map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
		"redis":  rds,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStore_Contract(t *testing.T) {
	t.Parallel()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, ok, err := s.Get(ctx, "g", "missing"); ok || err != nil {
				t.Fatalf("Get(missing) = (ok=%v, %v), want (false, nil)", ok, err)
			}

			if err := s.Set(ctx, "g", "track_b", "1"); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set(ctx, "g", "track_a", "2"); err != nil {
				t.Fatal(err)
			}
			if err := s.Set(ctx, "other", "track_c", "3"); err != nil {
				t.Fatal(err)
			}
			if err := s.Set(ctx, "g", "track_b", "updated"); err != nil {
				t.Fatal(err)
			}

			v, ok, err := s.Get(ctx, "g", "track_b")
			if err != nil || !ok || v != "updated" {
				t.Errorf("Get() = (%q, %v, %v), want (updated, true, nil)", v, ok, err)
			}

			keys, err := s.Keys(ctx, "g")
			if err != nil {
				t.Fatal(err)
			}
			if want := []string{"track_a", "track_b"}; !slices.Equal(keys, want) {
				t.Errorf("Keys() = %v, want %v", keys, want)
			}

			if err := s.Unset(ctx, "g", "track_a"); err != nil {
				t.Fatalf("Unset() error = %v", err)
			}
			if err := s.Unset(ctx, "g", "never-set"); err != nil {
				t.Errorf("Unset(missing) error = %v, want nil", err)
			}
			if _, ok, _ := s.Get(ctx, "g", "track_a"); ok {
				t.Error("Get() after Unset still finds the key")
			}
		})
	}
}

func TestOpen_Backends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: "memory"}, nil)
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	s.Close()

	if _, err := Open(ctx, Options{Backend: "etcd"}, nil); err == nil {
		t.Error("Open(etcd) error = nil, want error")
	}
	if _, err := Open(ctx, Options{Backend: "sqlite"}, nil); err == nil {
		t.Error("Open(sqlite) without a path error = nil, want error")
	}
}

func TestSQLite_Persists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(ctx, path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "musicreplacer", "track_Harmony", `{"name":"Harmony"}`); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(ctx, path, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if v, ok, _ := s.Get(ctx, "musicreplacer", "track_Harmony"); !ok || v != `{"name":"Harmony"}` {
		t.Errorf("Get() after reopen = (%q, %v)", v, ok)
	}
}

func TestMemory_Closed(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	m.Close()
	if err := m.Set(context.Background(), "g", "k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("Set() after Close error = %v, want ErrClosed", err)
	}
}
