package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/stevemurr/fitness-server/schema"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := schema.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks a typed record against its struct tags. Constraint
// failures come back as *schema.ValidationError.
func Validate(record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate record")
	}
	verr := &schema.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Violations = append(verr.Violations, schema.Violation{
			Path:    jsonPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return verr
}

// jsonPath turns "Workout.exercises[1].sets" into "$.exercises[1].sets".
func jsonPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return "$" + namespace[i:]
	}
	return "$"
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing required field"
	case "gte":
		return fmt.Sprintf("%v is less than minimum %s", fe.Value(), fe.Param())
	case "lte":
		return fmt.Sprintf("%v is greater than maximum %s", fe.Value(), fe.Param())
	case "isodate":
		return fmt.Sprintf("%q is not an ISO-8601 date", fe.Value())
	}
	return fmt.Sprintf("failed %q constraint", fe.Tag())
}

// Decode validates raw against the named definition, fills in defaults and
// decodes the result into a typed record of type T.
func Decode[T any](name string, raw map[string]any) (T, error) {
	var out T
	def, ok := schema.Get(name)
	if !ok {
		return out, errors.Errorf("unknown entity %q", name)
	}
	if err := def.Validate(raw); err != nil {
		return out, err
	}
	doc := def.ApplyDefaults(raw)
	delete(doc, "id")
	delete(doc, "_id")
	b, err := json.Marshal(doc)
	if err != nil {
		return out, errors.Wrapf(err, "encode %s", name)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, errors.Wrapf(err, "decode %s", name)
	}
	if err := Validate(out); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeWorkout is Decode for workouts.
func DecodeWorkout(raw map[string]any) (Workout, error) {
	w, err := Decode[Workout](schema.Workout, raw)
	if err != nil {
		return Workout{}, err
	}
	// A client-sent id is never trusted.
	w.ID = ""
	if w.Exercises == nil {
		w.Exercises = []Exercise{}
	}
	return w, nil
}

// DecodeLog is Decode for session logs.
func DecodeLog(raw map[string]any) (Log, error) {
	l, err := Decode[Log](schema.Log, raw)
	if err != nil {
		return Log{}, err
	}
	l.ID = ""
	return l, nil
}
