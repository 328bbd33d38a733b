// Package store defines the document store interface and its backends.
package store

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Document is one schema-flexible record.
type Document = map[string]any

// IDField is the store-internal identifier field. It never leaves the
// server; see PublicDocument.
const IDField = "_id"

// PublicIDField replaces IDField on documents handed to consumers.
const PublicIDField = "id"

var (
	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("store unavailable")
	// ErrWrite means the backend was reached but rejected a write.
	ErrWrite = errors.New("store write failed")
	// ErrCorrupt means stored data could not be decoded. It is never
	// reported as ErrUnavailable.
	ErrCorrupt = errors.New("stored data is corrupt")
)

// Store is the interface that all backing stores must implement.
// It operates on named collections of documents. A Store is created once
// at startup and shared by every request.
type Store interface {
	// InsertOne appends doc to a collection and returns its newly generated
	// identifier. Fails with ErrUnavailable or ErrWrite; never retried.
	InsertOne(ctx context.Context, collection string, doc Document) (string, error)

	// ListDocuments returns up to limit documents in insertion order, each
	// carrying IDField as a string. A limit <= 0 means no cap.
	ListDocuments(ctx context.Context, collection string, limit int) ([]Document, error)

	// ListCollections returns the sorted names of collections that contain data.
	ListCollections(ctx context.Context) ([]string, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Name identifies the database for diagnostics.
	Name() string

	Close() error
}

// kindError tags a backend error with one of the sentinels above. Both the
// sentinel and the backend error match errors.Is and errors.As.
type kindError struct {
	kind  error
	cause error
	msg   string
}

func (e *kindError) Error() string {
	return e.msg + ": " + e.cause.Error() + ": " + e.kind.Error()
}

func (e *kindError) Unwrap() []error { return []error{e.kind, e.cause} }

func tag(kind, err error, format string, args ...any) error {
	return &kindError{kind: kind, cause: err, msg: fmt.Sprintf(format, args...)}
}

func unavailable(err error, format string, args ...any) error {
	return tag(ErrUnavailable, err, format, args...)
}

func writeFailed(err error, format string, args ...any) error {
	return tag(ErrWrite, err, format, args...)
}

func corrupt(err error, format string, args ...any) error {
	return tag(ErrCorrupt, err, format, args...)
}
