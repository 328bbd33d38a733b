package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Declared entity names.
const (
	User     = "User"
	Product  = "Product"
	Exercise = "Exercise"
	Workout  = "Workout"
	Log      = "Log"
)

// collections maps each declared entity to the collection it is stored in.
var collections = map[string]string{
	User:     "user",
	Product:  "product",
	Exercise: "exercise",
	Workout:  "workout",
	Log:      "log",
}

// Definition ties an entity name to its collection and JSON Schema.
type Definition struct {
	Name       string
	Collection string
	Schema     map[string]any
}

// Validate checks raw against the definition's schema.
func (d Definition) Validate(raw map[string]any) error {
	return Validate(d.Schema, raw)
}

// ApplyDefaults returns a shallow copy of raw where every top-level property
// that is absent or null and declares a "default" takes that default.
// Array and object defaults are deep-copied so callers may mutate them.
func (d Definition) ApplyDefaults(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	props, _ := d.Schema["properties"].(map[string]any)
	for field, p := range props {
		ps, ok := p.(map[string]any)
		if !ok {
			continue
		}
		def, hasDefault := ps["default"]
		if !hasDefault {
			continue
		}
		if v, exists := out[field]; !exists || v == nil {
			out[field] = cloneValue(def)
		}
	}
	return out
}

// CollectionFor returns the collection name for a declared entity.
func CollectionFor(name string) (string, bool) {
	c, ok := collections[name]
	return c, ok
}

// Get returns the definition for a declared entity name.
func Get(name string) (Definition, bool) {
	build, ok := builders[name]
	if !ok {
		return Definition{}, false
	}
	return Definition{Name: name, Collection: collections[name], Schema: build()}, true
}

// MustGet is Get for names known at compile time.
func MustGet(name string) Definition {
	d, ok := Get(name)
	if !ok {
		panic(fmt.Sprintf("schema: unknown entity %q", name))
	}
	return d
}

// All returns every definition ordered by collection name.
func All() []Definition {
	defs := make([]Definition, 0, len(builders))
	for name := range builders {
		defs = append(defs, MustGet(name))
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Collection < defs[j].Collection })
	return defs
}

// Schemas returns every JSON Schema keyed by collection name.
func Schemas() map[string]map[string]any {
	out := make(map[string]map[string]any, len(builders))
	for _, d := range All() {
		out[d.Collection] = d.Schema
	}
	return out
}

var builders = map[string]func() map[string]any{
	User:     userSchema,
	Product:  productSchema,
	Exercise: exerciseSchema,
	Workout:  workoutSchema,
	Log:      logSchema,
}

func userSchema() map[string]any {
	return map[string]any{
		"title":       User,
		"description": "Users collection schema",
		"type":        "object",
		"properties": map[string]any{
			"name":      map[string]any{"type": "string", "description": "Full name"},
			"email":     map[string]any{"type": "string", "description": "Email address"},
			"address":   map[string]any{"type": "string", "description": "Address"},
			"age":       map[string]any{"type": []any{"integer", "null"}, "minimum": 0, "maximum": 120, "description": "Age in years"},
			"is_active": map[string]any{"type": "boolean", "default": true, "description": "Whether user is active"},
		},
		"required": []any{"name", "email", "address"},
	}
}

func productSchema() map[string]any {
	return map[string]any{
		"title":       Product,
		"description": "Products collection schema",
		"type":        "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string", "description": "Product title"},
			"description": map[string]any{"type": []any{"string", "null"}, "description": "Product description"},
			"price":       map[string]any{"type": "number", "minimum": 0, "description": "Price in dollars"},
			"category":    map[string]any{"type": "string", "description": "Product category"},
			"in_stock":    map[string]any{"type": "boolean", "default": true, "description": "Whether product is in stock"},
		},
		"required": []any{"title", "price", "category"},
	}
}

func exerciseSchema() map[string]any {
	return map[string]any{
		"title": Exercise,
		"type":  "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": 1, "description": "Exercise name, e.g., Push Ups"},
			"sets": map[string]any{"type": "integer", "minimum": 1, "maximum": 20, "description": "Number of sets"},
			"reps": map[string]any{"type": "integer", "minimum": 1, "maximum": 200, "description": "Reps per set"},
		},
		"required": []any{"name", "sets", "reps"},
	}
}

func workoutSchema() map[string]any {
	return map[string]any{
		"title":       Workout,
		"description": "Workouts collection schema",
		"type":        "object",
		"properties": map[string]any{
			"title":      map[string]any{"type": "string", "minLength": 1, "description": "Workout title, e.g., Upper Body Blast"},
			"difficulty": map[string]any{"type": []any{"string", "null"}, "default": "Beginner", "description": "Difficulty level"},
			"exercises": map[string]any{
				"type":        "array",
				"items":       exerciseSchema(),
				"default":     []any{},
				"description": "List of exercises",
			},
		},
		"required": []any{"title"},
	}
}

func logSchema() map[string]any {
	return map[string]any{
		"title":       Log,
		"description": "Logs collection schema",
		"type":        "object",
		"properties": map[string]any{
			"date":             map[string]any{"type": "string", "format": "date", "description": "ISO date string for the workout session"},
			"workout_title":    map[string]any{"type": "string", "description": "What workout was completed"},
			"notes":            map[string]any{"type": []any{"string", "null"}, "description": "Any notes about the session"},
			"duration_minutes": map[string]any{"type": []any{"integer", "null"}, "minimum": 1, "maximum": 1000, "description": "Duration in minutes"},
		},
		"required": []any{"date", "workout_title"},
	}
}

func cloneValue(v any) any {
	switch v.(type) {
	case map[string]any, []any:
		b, _ := json.Marshal(v)
		var out any
		_ = json.Unmarshal(b, &out)
		return out
	}
	return v
}
