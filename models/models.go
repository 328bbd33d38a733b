// Package models holds the typed records persisted by the server.
package models

// Exercise is one movement inside a workout.
type Exercise struct {
	Name string `json:"name" bson:"name" validate:"required"`
	Sets int    `json:"sets" bson:"sets" validate:"gte=1,lte=20"`
	Reps int    `json:"reps" bson:"reps" validate:"gte=1,lte=200"`
}

// Workout is a named, ordered list of exercises.
type Workout struct {
	ID         string     `json:"id,omitempty" bson:"-"`
	Title      string     `json:"title" bson:"title" validate:"required"`
	Difficulty string     `json:"difficulty" bson:"difficulty"`
	Exercises  []Exercise `json:"exercises" bson:"exercises" validate:"dive"`
}

// Log records one completed session. WorkoutTitle is free text, may be
// empty, and is never checked against stored workouts.
type Log struct {
	ID              string  `json:"id,omitempty" bson:"-"`
	Date            string  `json:"date" bson:"date" validate:"required,isodate"`
	WorkoutTitle    string  `json:"workout_title" bson:"workout_title"`
	Notes           *string `json:"notes,omitempty" bson:"notes,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" bson:"duration_minutes,omitempty" validate:"omitempty,gte=1,lte=1000"`
}

// User is a sample schema; no endpoint stores it.
type User struct {
	Name     string `json:"name" bson:"name" validate:"required"`
	Email    string `json:"email" bson:"email" validate:"required"`
	Address  string `json:"address" bson:"address" validate:"required"`
	Age      *int   `json:"age,omitempty" bson:"age,omitempty" validate:"omitempty,gte=0,lte=120"`
	IsActive bool   `json:"is_active" bson:"is_active"`
}

// Product is a sample schema; no endpoint stores it.
type Product struct {
	Title       string  `json:"title" bson:"title" validate:"required"`
	Description *string `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0"`
	Category    string  `json:"category" bson:"category" validate:"required"`
	InStock     bool    `json:"in_stock" bson:"in_stock"`
}

// Default values for optional fields.
const DefaultDifficulty = "Beginner"

// NewWorkout builds a workout with the default difficulty, matching what
// DecodeWorkout produces when the field is absent.
func NewWorkout(title string, exercises ...Exercise) Workout {
	if exercises == nil {
		exercises = []Exercise{}
	}
	return Workout{Title: title, Difficulty: DefaultDifficulty, Exercises: exercises}
}

// Document returns the storable form of w. Exercises is always present and
// Difficulty is stored exactly as given.
func (w Workout) Document() map[string]any {
	exercises := make([]any, 0, len(w.Exercises))
	for _, e := range w.Exercises {
		exercises = append(exercises, map[string]any{
			"name": e.Name,
			"sets": e.Sets,
			"reps": e.Reps,
		})
	}
	return map[string]any{
		"title":      w.Title,
		"difficulty": w.Difficulty,
		"exercises":  exercises,
	}
}

// Document returns the storable form of l. Absent optional fields are left
// out rather than stored as null.
func (l Log) Document() map[string]any {
	doc := map[string]any{
		"date":          l.Date,
		"workout_title": l.WorkoutTitle,
	}
	if l.Notes != nil {
		doc["notes"] = *l.Notes
	}
	if l.DurationMinutes != nil {
		doc["duration_minutes"] = *l.DurationMinutes
	}
	return doc
}
