package schema

import (
	"fmt"
	"strings"
)

// Violation is one failed constraint. Path is a JSON path such as
// "$.exercises[1].sets".
type Violation struct {
	Path    string `json:"loc"`
	Message string `json:"msg"`
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// ValidationError reports every constraint a payload violated.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Has reports whether any violation was recorded at path.
func (e *ValidationError) Has(path string) bool {
	if e == nil {
		return false
	}
	for _, v := range e.Violations {
		if v.Path == path {
			return true
		}
	}
	return false
}
