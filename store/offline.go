package store

import (
	"context"

	"github.com/pkg/errors"
)

// OfflineStore fails every call with ErrUnavailable. It stands in when no
// database is configured, and lets tests simulate an unreachable store.
type OfflineStore struct {
	reason string
}

func NewOfflineStore(reason string) *OfflineStore {
	if reason == "" {
		reason = "no database configured"
	}
	return &OfflineStore{reason: reason}
}

func (s *OfflineStore) err() error {
	return errors.Wrap(ErrUnavailable, s.reason)
}

func (s *OfflineStore) InsertOne(context.Context, string, Document) (string, error) {
	return "", s.err()
}

func (s *OfflineStore) ListDocuments(context.Context, string, int) ([]Document, error) {
	return nil, s.err()
}

func (s *OfflineStore) ListCollections(context.Context) ([]string, error) {
	return nil, s.err()
}

func (s *OfflineStore) Ping(context.Context) error { return s.err() }

func (s *OfflineStore) Name() string { return "" }

func (s *OfflineStore) Close() error { return nil }
