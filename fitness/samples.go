package fitness

import (
	"github.com/stevemurr/fitness-server/models"
	"github.com/stevemurr/fitness-server/store"
)

// SampleWorkouts are served by ListWorkouts when the store is unreachable.
func SampleWorkouts() []models.Workout {
	return []models.Workout{
		{
			ID:         "w1",
			Title:      "Full Body Starter",
			Difficulty: "Beginner",
			Exercises: []models.Exercise{
				{Name: "Bodyweight Squats", Sets: 3, Reps: 12},
				{Name: "Push Ups", Sets: 3, Reps: 10},
				{Name: "Plank (sec)", Sets: 3, Reps: 30},
			},
		},
		{
			ID:         "w2",
			Title:      "Upper Body Blast",
			Difficulty: "Intermediate",
			Exercises: []models.Exercise{
				{Name: "Pull Ups", Sets: 4, Reps: 6},
				{Name: "Dumbbell Press", Sets: 4, Reps: 10},
				{Name: "Rows", Sets: 4, Reps: 10},
			},
		},
	}
}

func sampleWorkoutDocuments() []store.Document {
	samples := SampleWorkouts()
	docs := make([]store.Document, 0, len(samples))
	for _, w := range samples {
		doc := w.Document()
		doc[store.PublicIDField] = w.ID
		docs = append(docs, doc)
	}
	return docs
}
