package loader

import (
	"fmt"
	"strings"
)

// LoadError aggregates every schema issue found while decoding a project,
// per §7 ("collected into a single *loader.LoadError wrapping all issues
// found, so the CLI can print a human-readable multi-error report").
type LoadError struct {
	Issues []string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loader: %d schema error(s): %s", len(e.Issues), strings.Join(e.Issues, "; "))
}

func (e *LoadError) add(format string, args ...interface{}) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

func (e *LoadError) errOrNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}
