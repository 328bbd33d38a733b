package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pkg/errors"
)

// SqliteStore stores all collections in a single SQLite database.
//
// Tables:
//
//	documents(seq, collection, id, data)  seq orders inserts; id is unique
type SqliteStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable WAL")
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		id TEXT NOT NULL UNIQUE,
		data TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create documents table")
	}
	return &SqliteStore{db: db, path: dbPath}, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) InsertOne(ctx context.Context, collection string, doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	b, err := json.Marshal(doc)
	if err != nil {
		return "", writeFailed(err, "sqlite insert %s", collection)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)",
		collection, id, string(b),
	)
	if err != nil {
		if isSqliteClosed(err) {
			return "", unavailable(err, "sqlite insert %s", collection)
		}
		return "", writeFailed(err, "sqlite insert %s", collection)
	}
	return id, nil
}

func (s *SqliteStore) ListDocuments(ctx context.Context, collection string, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means no limit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, data FROM documents WHERE collection = ? ORDER BY seq LIMIT ?",
		collection, limit,
	)
	if err != nil {
		return nil, unavailable(err, "sqlite list %s", collection)
	}
	defer rows.Close()
	result := []Document{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, unavailable(err, "sqlite list %s", collection)
		}
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, corrupt(err, "sqlite list %s row %s", collection, id)
		}
		doc[IDField] = id
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, "sqlite list %s", collection)
	}
	return result, nil
}

func (s *SqliteStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT collection FROM documents ORDER BY collection")
	if err != nil {
		return nil, unavailable(err, "sqlite list collections")
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable(err, "sqlite list collections")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable(err, "sqlite ping")
	}
	return nil
}

func (s *SqliteStore) Name() string {
	return strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
}

func isSqliteClosed(err error) bool {
	return errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed")
}
