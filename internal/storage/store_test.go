package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/personcsv/internal/config"
)

// runStoreContract exercises the behavior every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing.csv")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("create then read", func(t *testing.T) {
		s := newStore(t)
		v, err := s.Put(ctx, "k", []byte("name,age,height\n"), IfVersion(""))
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if v == "" {
			t.Fatal("Put() returned empty version")
		}

		obj, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(obj.Data) != "name,age,height\n" {
			t.Errorf("Data = %q", obj.Data)
		}
		if obj.Version != v {
			t.Errorf("Version = %q, want %q", obj.Version, v)
		}
	})

	t.Run("create fails when object exists", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Put(ctx, "k", []byte("a"), IfVersion("")); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		_, err := s.Put(ctx, "k", []byte("b"), IfVersion(""))
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("second create error = %v, want ErrConflict", err)
		}
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		s := newStore(t)
		v1, err := s.Put(ctx, "k", []byte("a"), IfVersion(""))
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		v2, err := s.Put(ctx, "k", []byte("b"), IfVersion(v1))
		if err != nil {
			t.Fatalf("Put(v1) error = %v", err)
		}
		if v2 == v1 {
			t.Error("version did not change after write")
		}

		_, err = s.Put(ctx, "k", []byte("c"), IfVersion(v1))
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("Put(stale) error = %v, want ErrConflict", err)
		}

		obj, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(obj.Data) != "b" {
			t.Errorf("Data = %q, want %q", obj.Data, "b")
		}
	})

	t.Run("version on missing key conflicts", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Put(ctx, "k", []byte("a"), IfVersion("not-a-version"))
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("Put() error = %v, want ErrConflict", err)
		}
	})

	t.Run("overwrite ignores versions", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Put(ctx, "k", []byte("a"), Overwrite()); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		if _, err := s.Put(ctx, "k", []byte("b"), Overwrite()); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		obj, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(obj.Data) != "b" {
			t.Errorf("Data = %q, want %q", obj.Data, "b")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "blobs.db"))
		if err != nil {
			t.Fatalf("OpenSQLite() error = %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("abc")
	if _, err := s.Put(ctx, "k", data, Overwrite()); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	data[0] = 'x'

	obj, _ := s.Get(ctx, "k")
	obj.Data[1] = 'y'

	again, _ := s.Get(ctx, "k")
	if string(again.Data) != "abc" {
		t.Errorf("stored data mutated: %q", again.Data)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T, want *MemoryStore", s)
	}

	s, err = Open(ctx, config.StorageConfig{Backend: config.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "p.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T, want *SQLiteStore", s)
	}

	if _, err := Open(ctx, config.StorageConfig{Backend: "ftp"}); err == nil {
		t.Error("Open(ftp) expected error")
	}
}

func TestPrecondition(t *testing.T) {
	if !Overwrite().Unconditional() {
		t.Error("Overwrite() should be unconditional")
	}
	p := IfVersion("7")
	if p.Unconditional() || p.Version() != "7" {
		t.Errorf("IfVersion(7) = %+v", p)
	}
}
