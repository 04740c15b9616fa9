package method

import (
	"fmt"
	"strings"
)

// UnknownMethodError means a method name has no YAML definition under the
// transform directory.
type UnknownMethodError struct {
	Method       string
	TransformDir string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("method: no definition for %q under %s", e.Method, e.TransformDir)
}

// CyclicIncludeError means a method transitively includes itself.
type CyclicIncludeError struct {
	Chain []string // include chain ending at the repeated method
}

func (e *CyclicIncludeError) Error() string {
	return fmt.Sprintf("method: include cycle: %s", strings.Join(e.Chain, " -> "))
}
