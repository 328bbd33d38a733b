package store

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// PostgresStore keeps every collection in one table with a JSONB payload.
//
//	documents(seq BIGSERIAL, collection, id UNIQUE, data JSONB)
type PostgresStore struct {
	pool *pgxpool.Pool
	name string
}

// NewPostgresStore opens a pool for dsn and creates the documents table if
// needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse postgres config")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres pool")
	}
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS documents (
		seq BIGSERIAL PRIMARY KEY,
		collection TEXT NOT NULL,
		id TEXT NOT NULL UNIQUE,
		data JSONB NOT NULL
	)`); err != nil {
		pool.Close()
		return nil, unavailable(err, "create documents table")
	}
	return &PostgresStore{pool: pool, name: cfg.ConnConfig.Database}, nil
}

func (s *PostgresStore) InsertOne(ctx context.Context, collection string, doc Document) (string, error) {
	payload := make(Document, len(doc))
	for k, v := range doc {
		if k != IDField {
			payload[k] = v
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", writeFailed(err, "postgres insert %s", collection)
	}
	id := uuid.NewString()
	_, err = s.pool.Exec(ctx,
		"INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)",
		collection, id, b,
	)
	if err != nil {
		if isPostgresUnavailable(err) {
			return "", unavailable(err, "postgres insert %s", collection)
		}
		return "", writeFailed(err, "postgres insert %s", collection)
	}
	return id, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, collection string, limit int) ([]Document, error) {
	// LIMIT NULL is no limit.
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.pool.Query(ctx,
		"SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq LIMIT $2",
		collection, lim,
	)
	if err != nil {
		return nil, unavailable(err, "postgres list %s", collection)
	}
	defer rows.Close()
	result := []Document{}
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, unavailable(err, "postgres list %s", collection)
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, corrupt(err, "postgres list %s row %s", collection, id)
		}
		doc[IDField] = id
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, "postgres list %s", collection)
	}
	return result, nil
}

func (s *PostgresStore) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT collection FROM documents ORDER BY collection")
	if err != nil {
		return nil, unavailable(err, "postgres list collections")
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable(err, "postgres list collections")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(err, "postgres list collections")
	}
	return names, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return unavailable(err, "postgres ping")
	}
	return nil
}

func (s *PostgresStore) Name() string { return s.name }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func isPostgresUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	var netErr net.Error
	return errors.As(err, &connErr) || errors.As(err, &netErr) || pgconn.Timeout(err)
}
