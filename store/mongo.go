package store

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// MongoStore keeps each collection in the MongoDB collection of the same
// name. Identifiers are ObjectIDs assigned by the driver, returned as hex.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore configures a client for uri. The driver connects lazily,
// so an unreachable server surfaces on first use rather than here.
func NewMongoStore(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, errors.New("mongo uri required")
	}
	if strings.TrimSpace(database) == "" {
		return nil, errors.New("mongo database name required")
	}
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetServerSelectionTimeout(timeout).SetConnectTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "configure mongo client")
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc Document) (string, error) {
	payload := make(bson.M, len(doc))
	for k, v := range doc {
		if k == IDField {
			continue
		}
		payload[k] = v
	}
	res, err := s.db.Collection(collection).InsertOne(ctx, payload)
	if err != nil {
		if isMongoUnavailable(err) {
			return "", unavailable(err, "mongo insert %s", collection)
		}
		return "", writeFailed(err, "mongo insert %s", collection)
	}
	return idString(res.InsertedID), nil
}

func (s *MongoStore) ListDocuments(ctx context.Context, collection string, limit int) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: IDField, Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, unavailable(err, "mongo list %s", collection)
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, unavailable(err, "mongo list %s", collection)
	}
	result := make([]Document, 0, len(raw))
	for _, m := range raw {
		result = append(result, normalizeBSON(m).(Document))
	}
	return result, nil
}

func (s *MongoStore) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, unavailable(err, "mongo list collections")
	}
	sort.Strings(names)
	return names, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return unavailable(err, "mongo ping")
	}
	return nil
}

func (s *MongoStore) Name() string { return s.db.Name() }

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func isMongoUnavailable(err error) bool {
	var selErr topology.ServerSelectionError
	var netErr net.Error
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.As(err, &selErr) ||
		errors.As(err, &netErr)
}

// normalizeBSON converts driver types into plain JSON-friendly values.
func normalizeBSON(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(Document, len(val))
		for k, x := range val {
			out[k] = normalizeBSON(x)
		}
		return out
	case map[string]any:
		out := make(Document, len(val))
		for k, x := range val {
			out[k] = normalizeBSON(x)
		}
		return out
	case bson.D:
		out := make(Document, len(val))
		for _, e := range val {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, x := range val {
			out[i] = normalizeBSON(x)
		}
		return out
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	}
	return v
}
