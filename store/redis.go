package store

import (
	"context"
	"encoding/json"
	"net"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	redis "github.com/redis/go-redis/v9"
)

// RedisStore keeps each collection as a list of JSON documents, namespaced
// under a key prefix.
//
// Keys:
//
//	<prefix>:collections        SET of collection names
//	<prefix>:collection:<name>  LIST of documents in insertion order
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the redis:// URL and namespaces keys by prefix.
func NewRedisStore(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "fitness"
	}
	return &RedisStore{client: redis.NewClient(opts), prefix: prefix}, nil
}

func (s *RedisStore) setKey() string {
	return s.prefix + ":collections"
}

func (s *RedisStore) listKey(collection string) string {
	return s.prefix + ":collection:" + collection
}

func (s *RedisStore) InsertOne(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	stored, err := withID(doc, id)
	if err != nil {
		return "", writeFailed(err, "redis insert %s", collection)
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return "", writeFailed(err, "redis insert %s", collection)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.listKey(collection), b)
		pipe.SAdd(ctx, s.setKey(), collection)
		return nil
	})
	if err != nil {
		if isRedisUnavailable(err) {
			return "", unavailable(err, "redis insert %s", collection)
		}
		return "", writeFailed(err, "redis insert %s", collection)
	}
	return id, nil
}

func (s *RedisStore) ListDocuments(ctx context.Context, collection string, limit int) ([]Document, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := s.client.LRange(ctx, s.listKey(collection), 0, stop).Result()
	if err != nil {
		return nil, unavailable(err, "redis list %s", collection)
	}
	result := make([]Document, 0, len(raw))
	for _, r := range raw {
		var doc Document
		if err := json.Unmarshal([]byte(r), &doc); err != nil {
			return nil, corrupt(err, "redis list %s", collection)
		}
		result = append(result, doc)
	}
	return result, nil
}

func (s *RedisStore) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.setKey()).Result()
	if err != nil {
		return nil, unavailable(err, "redis list collections")
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(err, "redis ping")
	}
	return nil
}

func (s *RedisStore) Name() string { return s.prefix }

func (s *RedisStore) Close() error { return s.client.Close() }

func isRedisUnavailable(err error) bool {
	var netErr net.Error
	return errors.Is(err, redis.ErrClosed) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr)
}
