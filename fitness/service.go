// Package fitness implements the workout and session-log operations on top
// of a document store, including the read fallbacks used when the store is
// unreachable.
package fitness

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/stevemurr/fitness-server/logging"
	"github.com/stevemurr/fitness-server/models"
	"github.com/stevemurr/fitness-server/schema"
	"github.com/stevemurr/fitness-server/store"
)

// Result caps; there is no paging.
const (
	WorkoutLimit = 50
	LogLimit     = 100
)

var (
	workoutCollection = mustCollection(schema.Workout)
	logCollection     = mustCollection(schema.Log)
)

func mustCollection(name string) string {
	c, ok := schema.CollectionFor(name)
	if !ok {
		panic("fitness: no collection for " + name)
	}
	return c
}

// Config holds what the service needs besides the store.
type Config struct {
	Logger logrus.FieldLogger
	// Timeout bounds each store call. Zero leaves it to the store client.
	Timeout time.Duration
	// DatabaseURL and DatabaseName are reported by Diagnose as set or not.
	DatabaseURL  string
	DatabaseName string
}

type Service struct {
	store store.Store
	cfg   Config
}

func NewService(s store.Store, cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Service{store: s, cfg: cfg}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Service) logger(ctx context.Context) logrus.FieldLogger {
	return logging.FromContext(ctx, s.cfg.Logger)
}

// ListWorkouts returns stored workouts with public ids. When the store is
// unreachable it returns SampleWorkouts instead.
func (s *Service) ListWorkouts(ctx context.Context) ([]store.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	docs, err := s.store.ListDocuments(ctx, workoutCollection, WorkoutLimit)
	switch {
	case err == nil:
		return store.PublicDocuments(docs), nil
	case errors.Is(err, store.ErrUnavailable):
		s.logger(ctx).WithError(err).WithField("collection", workoutCollection).Warn("store unavailable, serving sample workouts")
		return sampleWorkoutDocuments(), nil
	default:
		return nil, errors.Wrap(err, "list workouts")
	}
}

// CreateWorkout validates w and stores it. Store failures are returned
// as-is; there is no fallback write path.
func (s *Service) CreateWorkout(ctx context.Context, w models.Workout) (string, error) {
	if err := models.Validate(w); err != nil {
		return "", err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err := s.store.InsertOne(ctx, workoutCollection, w.Document())
	if err != nil {
		s.logger(ctx).WithError(err).WithField("collection", workoutCollection).Error("insert failed")
		return "", err
	}
	s.logger(ctx).WithFields(logrus.Fields{"collection": workoutCollection, "id": id}).Debug("inserted")
	return id, nil
}

// ListLogs returns stored session logs with public ids, or an empty list
// when the store is unreachable.
func (s *Service) ListLogs(ctx context.Context) ([]store.Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	docs, err := s.store.ListDocuments(ctx, logCollection, LogLimit)
	switch {
	case err == nil:
		return store.PublicDocuments(docs), nil
	case errors.Is(err, store.ErrUnavailable):
		s.logger(ctx).WithError(err).WithField("collection", logCollection).Warn("store unavailable, serving no logs")
		return []store.Document{}, nil
	default:
		return nil, errors.Wrap(err, "list logs")
	}
}

// CreateLog validates l and stores it. The workout title is not checked
// against stored workouts.
func (s *Service) CreateLog(ctx context.Context, l models.Log) (string, error) {
	if err := models.Validate(l); err != nil {
		return "", err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err := s.store.InsertOne(ctx, logCollection, l.Document())
	if err != nil {
		s.logger(ctx).WithError(err).WithField("collection", logCollection).Error("insert failed")
		return "", err
	}
	s.logger(ctx).WithFields(logrus.Fields{"collection": logCollection, "id": id}).Debug("inserted")
	return id, nil
}
