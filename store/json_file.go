package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// JsonFileStore stores each collection as a JSON array on disk, in
// insertion order.
//
// Layout:
//
//	data_dir/
//	  workout.json   # "workout" collection
//	  log.json       # "log" collection
type JsonFileStore struct {
	mu  sync.RWMutex
	dir string
}

func NewJsonFileStore(dir string) (*JsonFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dir)
	}
	return &JsonFileStore{dir: dir}, nil
}

func (s *JsonFileStore) collectionPath(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *JsonFileStore) loadCollection(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Document{}, nil
		}
		return nil, err
	}
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, corrupt(err, "parse %s", filepath.Base(path))
	}
	return docs, nil
}

// saveCollection writes through a temp file so a crash never leaves a
// half-written collection behind.
func (s *JsonFileStore) saveCollection(path string, docs []Document) error {
	b, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *JsonFileStore) InsertOne(_ context.Context, collection string, doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.collectionPath(collection)
	docs, err := s.loadCollection(path)
	if err != nil {
		return "", writeFailed(err, "json insert %s", collection)
	}
	id := uuid.NewString()
	stored, err := withID(doc, id)
	if err != nil {
		return "", writeFailed(err, "json insert %s", collection)
	}
	docs = append(docs, stored)
	if err := s.saveCollection(path, docs); err != nil {
		return "", writeFailed(err, "json insert %s", collection)
	}
	return id, nil
}

func (s *JsonFileStore) ListDocuments(_ context.Context, collection string, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, err := s.loadCollection(s.collectionPath(collection))
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return nil, err
		}
		return nil, unavailable(err, "json list %s", collection)
	}
	return docs[:capacity(limit, len(docs))], nil
}

func (s *JsonFileStore) ListCollections(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, unavailable(err, "json list collections")
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *JsonFileStore) Ping(context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return unavailable(err, "json ping")
	}
	return nil
}

func (s *JsonFileStore) Name() string { return filepath.Base(s.dir) }

func (s *JsonFileStore) Close() error { return nil }
