// Package schema validates the marketplace index and plugin manifest
// documents: a structural JSON Schema pass followed by the semantic
// rules a schema document cannot express (cross-field checks, legacy
// fallback, domain syntax).
package schema

import (
	"fmt"
	"strings"
)

// ValidationError represents a single validation failure with the path to
// the offending field and a human-readable message. Schema errors and
// warnings share this one struct, tagged by Class, rather than a type per
// class.
type ValidationError struct {
	Class   string // one of the error-class tags, e.g. "ManifestSchema"
	Path    string // dot-separated path, e.g. "capabilities.network.domains[0]"
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []*ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("validation failed with %d error(s):\n  - %s",
		len(ve), strings.Join(msgs, "\n  - "))
}
