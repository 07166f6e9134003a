// Package storage defines the persistence boundary for processed documents.
// Implementations live in subpackages; the correction engine itself never
// touches storage.
package storage

import (
	"context"
	"errors"

	reseg "github.com/jamesainslie/go-reseg"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("storage: document not found")

// Record is a stored document: the processing result plus its identity.
type Record struct {
	ID   int64
	Name string
	Doc  *reseg.Document
}

// Info is listing metadata. The document body is not loaded.
type Info struct {
	ID        int64
	Name      string
	Sentences int
}

// Hit is one lemma-search result: a sentence located by document and
// position.
type Hit struct {
	DocID int64
	Index int
	Text  string
}

// Reader defines read operations for document storage.
type Reader interface {
	// List returns metadata for all stored documents in insertion order.
	List(ctx context.Context) ([]Info, error)

	// Get returns a document by ID.
	Get(ctx context.Context, id int64) (*Record, error)

	// FindByLemma returns the sentences containing ALL given lemmas.
	// An empty lemma list matches nothing.
	FindByLemma(ctx context.Context, lemmas []string) ([]Hit, error)
}

// Writer defines write operations for document storage.
type Writer interface {
	// Put persists a document with its sentences and lemma index,
	// returning the assigned ID.
	Put(ctx context.Context, name string, doc *reseg.Document) (int64, error)

	// Delete removes a document and everything derived from it.
	Delete(ctx context.Context, id int64) error
}

// Repository combines read and write operations.
type Repository interface {
	Reader
	Writer
}
