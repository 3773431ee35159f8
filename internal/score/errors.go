package score

import (
	"errors"
	"fmt"
)

// ErrStructure is wrapped by every StructuralError.
var ErrStructure = errors.New("malformed score")

// StructuralError reports a required node that is missing from the document.
type StructuralError struct {
	Path    string // Path of the missing node, e.g. "museScore/Score/Part".
	Message string
}

func (e *StructuralError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("missing %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("missing %s", e.Path)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructure
}
