package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevemurr/fitness-server/models"
	"github.com/stevemurr/fitness-server/schema"
)

func TestDecodeWorkoutDefaults(t *testing.T) {
	w, err := models.DecodeWorkout(map[string]any{"title": "Core Crusher"})
	require.NoError(t, err)
	assert.Equal(t, "Core Crusher", w.Title)
	assert.Equal(t, models.DefaultDifficulty, w.Difficulty)
	assert.NotNil(t, w.Exercises)
	assert.Empty(t, w.Exercises)
}

func TestDecodeWorkoutIgnoresClientID(t *testing.T) {
	w, err := models.DecodeWorkout(map[string]any{"title": "Legs", "id": float64(7), "_id": "abc"})
	require.NoError(t, err)
	assert.Empty(t, w.ID)
}

func TestDecodeWorkoutExercises(t *testing.T) {
	w, err := models.DecodeWorkout(map[string]any{
		"title":      "Upper Body Blast",
		"difficulty": "Intermediate",
		"exercises": []any{
			map[string]any{"name": "Pull Ups", "sets": float64(4), "reps": float64(6)},
		},
	})
	require.NoError(t, err)
	require.Len(t, w.Exercises, 1)
	assert.Equal(t, models.Exercise{Name: "Pull Ups", Sets: 4, Reps: 6}, w.Exercises[0])
}

func TestDecodeWorkoutRejectsOutOfRange(t *testing.T) {
	_, err := models.DecodeWorkout(map[string]any{
		"title": "Too Much",
		"exercises": []any{
			map[string]any{"name": "Burpees", "sets": float64(25), "reps": float64(500)},
		},
	})
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("$.exercises[0].sets"))
	assert.True(t, verr.Has("$.exercises[0].reps"))
}

func TestDecodeLog(t *testing.T) {
	l, err := models.DecodeLog(map[string]any{
		"date":             "2024-05-01",
		"workout_title":    "Full Body Starter",
		"duration_minutes": float64(45),
	})
	require.NoError(t, err)
	assert.Nil(t, l.Notes)
	require.NotNil(t, l.DurationMinutes)
	assert.Equal(t, 45, *l.DurationMinutes)

	doc := l.Document()
	assert.Equal(t, 45, doc["duration_minutes"])
	_, hasNotes := doc["notes"]
	assert.False(t, hasNotes)
}

func TestDecodeLogMissingFields(t *testing.T) {
	_, err := models.DecodeLog(map[string]any{"notes": "tired"})
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("$.date"))
	assert.True(t, verr.Has("$.workout_title"))
}

func TestValidateTypedRecords(t *testing.T) {
	err := models.Validate(models.Workout{
		Title:     "Built In Go",
		Exercises: []models.Exercise{{Name: "Rows", Sets: 0, Reps: 201}},
	})
	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("$.exercises[0].sets"), "got %v", verr.Violations)
	assert.True(t, verr.Has("$.exercises[0].reps"), "got %v", verr.Violations)

	err = models.Validate(models.Workout{})
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("$.title"))

	tooLong := 1001
	err = models.Validate(models.Log{Date: "not a date", WorkoutTitle: "x", DurationMinutes: &tooLong})
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("$.date"))
	assert.True(t, verr.Has("$.duration_minutes"))

	age := 30
	assert.NoError(t, models.Validate(models.User{Name: "A", Email: "a@b.c", Address: "here", Age: &age}))
	assert.Error(t, models.Validate(models.Product{Title: "Mat", Category: "gear", Price: -1}))
}

func TestWorkoutDocument(t *testing.T) {
	doc := models.NewWorkout("Quick").Document()
	assert.Equal(t, "Beginner", doc["difficulty"])
	assert.Equal(t, []any{}, doc["exercises"])
	_, hasID := doc["id"]
	assert.False(t, hasID)
}

func TestExplicitEmptyDifficultyIsKept(t *testing.T) {
	w, err := models.DecodeWorkout(map[string]any{"title": "T", "difficulty": ""})
	require.NoError(t, err)
	assert.Equal(t, "", w.Difficulty)
	assert.Equal(t, "", w.Document()["difficulty"])

	w, err = models.DecodeWorkout(map[string]any{"title": "T", "difficulty": nil})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDifficulty, w.Document()["difficulty"])
}

func TestDecodeLogAcceptsEmptyWorkoutTitle(t *testing.T) {
	l, err := models.DecodeLog(map[string]any{"date": "2024-01-01", "workout_title": ""})
	require.NoError(t, err)
	assert.Equal(t, "", l.WorkoutTitle)
	assert.NoError(t, models.Validate(l))

	doc := l.Document()
	assert.Equal(t, "", doc["workout_title"])
	assert.Equal(t, "2024-01-01", doc["date"])
}
