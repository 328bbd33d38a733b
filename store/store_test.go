package store_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/fitness-server/store"
)

// runStoreTests runs a common test suite against any Store implementation.
// Collection names are unique per run so shared servers start clean.
func runStoreTests(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	workouts := "workout_" + suffix
	logs := "log_" + suffix

	t.Run("ListDocuments empty", func(t *testing.T) {
		docs, err := s.ListDocuments(ctx, workouts, 50)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("InsertOne and ListDocuments", func(t *testing.T) {
		doc := store.Document{
			"title":      "Full Body Starter",
			"difficulty": "Beginner",
			"exercises": []any{
				map[string]any{"name": "Push Ups", "sets": 3, "reps": 10},
			},
		}
		id, err := s.InsertOne(ctx, workouts, doc)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		docs, err := s.ListDocuments(ctx, workouts, 50)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, id, docs[0][store.IDField])
		assert.Equal(t, "Full Body Starter", docs[0]["title"])

		exercises, ok := docs[0]["exercises"].([]any)
		require.True(t, ok, "exercises is %T", docs[0]["exercises"])
		require.Len(t, exercises, 1)
		ex, ok := exercises[0].(map[string]any)
		require.True(t, ok, "exercise is %T", exercises[0])
		assert.Equal(t, "Push Ups", ex["name"])
	})

	t.Run("InsertOne does not mutate input", func(t *testing.T) {
		doc := store.Document{"title": "Untouched"}
		_, err := s.InsertOne(ctx, workouts, doc)
		require.NoError(t, err)
		_, has := doc[store.IDField]
		assert.False(t, has)
	})

	t.Run("identifiers are unique", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 5; i++ {
			id, err := s.InsertOne(ctx, logs, store.Document{"date": "2024-01-01", "workout_title": "Legs", "n": i})
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("insertion order and limit", func(t *testing.T) {
		docs, err := s.ListDocuments(ctx, logs, 3)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		for i, d := range docs {
			assert.EqualValues(t, i, d["n"])
		}

		all, err := s.ListDocuments(ctx, logs, 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		docs, err := s.ListDocuments(ctx, workouts, 50)
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("ListCollections", func(t *testing.T) {
		names, err := s.ListCollections(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, workouts)
		assert.Contains(t, names, logs)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("unencodable document is rejected whole", func(t *testing.T) {
		bad := "bad_" + suffix
		_, err := s.InsertOne(ctx, bad, store.Document{"title": "x", "broken": make(chan int)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrWrite), "got %v", err)

		docs, err := s.ListDocuments(ctx, bad, 0)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, store.NewMemoryStore())
}

func TestJsonFileStore(t *testing.T) {
	s, err := store.NewJsonFileStore(t.TempDir())
	require.NoError(t, err)
	runStoreTests(t, s)
}

func TestSqliteStore(t *testing.T) {
	s, err := store.NewSqliteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()
	runStoreTests(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URL")
	if uri == "" {
		t.Skip("TEST_MONGO_URL not set")
	}
	s, err := store.NewMongoStore(context.Background(), uri, "fitness_test", 5*time.Second)
	require.NoError(t, err)
	defer s.Close()
	runStoreTests(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	s, err := store.NewPostgresStore(context.Background(), dsn)
	require.NoError(t, err)
	defer s.Close()
	runStoreTests(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	s, err := store.NewRedisStore("redis://"+addr+"/0", "fitness_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	defer s.Close()
	runStoreTests(t, s)
}

func TestOfflineStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewOfflineStore("")

	_, err := s.InsertOne(ctx, "workout", store.Document{"title": "x"})
	assert.True(t, errors.Is(err, store.ErrUnavailable))

	_, err = s.ListDocuments(ctx, "workout", 50)
	assert.True(t, errors.Is(err, store.ErrUnavailable))

	_, err = s.ListCollections(ctx)
	assert.True(t, errors.Is(err, store.ErrUnavailable))

	assert.True(t, errors.Is(s.Ping(ctx), store.ErrUnavailable))
}

func TestMongoUnreachable(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewMongoStore(ctx, "mongodb://127.0.0.1:1/?connect=direct", "fitness", 200*time.Millisecond)
	require.NoError(t, err, "client construction must not dial")
	defer s.Close()

	_, err = s.ListDocuments(ctx, "workout", 50)
	assert.True(t, errors.Is(err, store.ErrUnavailable), "got %v", err)

	_, err = s.InsertOne(ctx, "workout", store.Document{"title": "x"})
	assert.True(t, errors.Is(err, store.ErrUnavailable), "got %v", err)
}

func TestSqliteClosedIsUnavailable(t *testing.T) {
	s, err := store.NewSqliteStore(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.ListDocuments(context.Background(), "workout", 50)
	assert.True(t, errors.Is(err, store.ErrUnavailable), "got %v", err)

	_, err = s.InsertOne(context.Background(), "workout", store.Document{"title": "x"})
	assert.True(t, errors.Is(err, store.ErrUnavailable), "got %v", err)
}

func TestJsonFileStoreCorruptCollection(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewJsonFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workout.json"), []byte("{not json"), 0o644))

	_, err = s.InsertOne(context.Background(), "workout", store.Document{"title": "x"})
	assert.True(t, errors.Is(err, store.ErrWrite), "got %v", err)

	_, err = s.ListDocuments(context.Background(), "workout", 50)
	assert.True(t, errors.Is(err, store.ErrCorrupt), "got %v", err)
	assert.False(t, errors.Is(err, store.ErrUnavailable), "corrupt data must not read as an outage")

	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr), "parser error should stay reachable: %v", err)
}

func TestSqliteCorruptRow(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corrupt.db")
	s, err := store.NewSqliteStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.InsertOne(ctx, "workout", store.Document{"title": "ok"})
	require.NoError(t, err)
	_, err = s.InsertOne(ctx, "workout", store.Document{"title": "soon broken"})
	require.NoError(t, err)

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.ExecContext(ctx, "UPDATE documents SET data = '{not json' WHERE data LIKE '%soon broken%'")
	require.NoError(t, err)

	docs, err := s.ListDocuments(ctx, "workout", 50)
	assert.Nil(t, docs)
	assert.True(t, errors.Is(err, store.ErrCorrupt), "got %v", err)
	assert.False(t, errors.Is(err, store.ErrUnavailable))
}

func TestMemoryStoreRejectsNaN(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	_, err := s.InsertOne(ctx, "product", store.Document{"title": "x", "price": math.NaN()})
	assert.True(t, errors.Is(err, store.ErrWrite), "got %v", err)
	var unsupported *json.UnsupportedValueError
	assert.True(t, errors.As(err, &unsupported), "got %v", err)

	docs, err := s.ListDocuments(ctx, "product", 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestJsonFileStoreIsolation(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := store.NewJsonFileStore(dir)
	require.NoError(t, err)

	_, err = s.InsertOne(ctx, "a", store.Document{"x": 1})
	require.NoError(t, err)
	_, err = s.InsertOne(ctx, "b", store.Document{"x": 2})
	require.NoError(t, err)

	aDocs, _ := s.ListDocuments(ctx, "a", 10)
	bDocs, _ := s.ListDocuments(ctx, "b", 10)
	require.Len(t, aDocs, 1)
	require.Len(t, bDocs, 1)
	assert.EqualValues(t, 1, aDocs[0]["x"])
	assert.EqualValues(t, 2, bDocs[0]["x"])

	assert.FileExists(t, filepath.Join(dir, "a.json"))
	assert.FileExists(t, filepath.Join(dir, "b.json"))
}

func TestPublicDocument(t *testing.T) {
	in := store.Document{store.IDField: "abc123", "title": "Core"}
	out := store.PublicDocument(in)

	assert.Equal(t, "abc123", out[store.PublicIDField])
	assert.Equal(t, "Core", out["title"])
	_, hasInternal := out[store.IDField]
	assert.False(t, hasInternal)
	_, stillThere := in[store.IDField]
	assert.True(t, stillThere, "input must not be modified")

	noID := store.PublicDocument(store.Document{"title": "x"})
	_, hasID := noID[store.PublicIDField]
	assert.False(t, hasID)
}

func TestFactory(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	for _, backend := range []string{"json", "sqlite", "memory", "offline", ""} {
		t.Run(backend, func(t *testing.T) {
			s, err := store.New(ctx, store.Options{Backend: backend, DataDir: filepath.Join(dir, backend)})
			require.NoError(t, err)
			defer s.Close()
		})
	}

	t.Run("mongo without url", func(t *testing.T) {
		_, err := store.New(ctx, store.Options{Backend: "mongo", Database: "fitness"})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := store.New(ctx, store.Options{Backend: "cassandra", DataDir: dir})
		assert.Error(t, err)
	})
}
