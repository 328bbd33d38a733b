package store

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Backends accepted by New.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSqlite   = "sqlite"
	BackendJSON     = "json"
	BackendMemory   = "memory"
	BackendOffline  = "offline"
)

// Options selects and configures a backend.
type Options struct {
	Backend  string
	URL      string // connection string for mongo, postgres and redis
	Database string // mongo database name, redis key prefix
	DataDir  string // sqlite and json
	Timeout  time.Duration
}

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"mongo"    - MongoDB at URL, database Database
//	"postgres" - PostgreSQL at URL
//	"redis"    - Redis at URL, keys prefixed with Database
//	"sqlite"   - SQLite database at DataDir/fitness.db
//	"json"     - JSON files in DataDir
//	"memory"   - In-memory (ephemeral, for testing)
//	"offline"  - every call fails with ErrUnavailable
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMongo:
		return NewMongoStore(ctx, opts.URL, opts.Database, opts.Timeout)
	case BackendPostgres:
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
		return NewPostgresStore(ctx, opts.URL)
	case BackendRedis:
		return NewRedisStore(opts.URL, opts.Database)
	case BackendSqlite:
		return NewSqliteStore(filepath.Join(opts.DataDir, "fitness.db"))
	case BackendJSON:
		return NewJsonFileStore(opts.DataDir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendOffline, "":
		return NewOfflineStore(""), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: mongo, postgres, redis, sqlite, json, memory, offline)", opts.Backend)
	}
}
