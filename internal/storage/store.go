// Package storage provides the blob stores that hold the dataset object.
//
// Every backend stores opaque bytes under a key together with a version
// token. Reads return the token; writes may be made conditional on it so
// that two overlapping read-modify-write cycles cannot silently overwrite
// each other.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when no object exists at the key.
	ErrNotFound = errors.New("object not found")

	// ErrConflict is returned by Put when the precondition no longer holds.
	ErrConflict = errors.New("object version conflict")
)

// Object is a stored blob and the version it was read at.
type Object struct {
	Data    []byte
	Version string
}

// Precondition controls whether Put checks the stored version first.
type Precondition struct {
	version   string
	overwrite bool
}

// Overwrite replaces the object regardless of what is stored.
func Overwrite() Precondition {
	return Precondition{overwrite: true}
}

// IfVersion writes only while the stored version equals v.
// An empty v requires that no object exists yet.
func IfVersion(v string) Precondition {
	return Precondition{version: v}
}

// Unconditional reports whether the version check is skipped.
func (p Precondition) Unconditional() bool { return p.overwrite }

// Version is the expected version; empty means "must not exist".
func (p Precondition) Version() string { return p.version }

// Store is a keyed blob store with optimistic concurrency.
type Store interface {
	// Get returns the object at key, or ErrNotFound.
	Get(ctx context.Context, key string) (Object, error)

	// Put stores data at key and returns the new version.
	// It returns ErrConflict when the precondition fails.
	Put(ctx context.Context, key string, data []byte, cond Precondition) (string, error)

	// Close releases client resources.
	Close() error
}
