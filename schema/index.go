package schema

import (
	"encoding/json"
	"fmt"
)

// ValidateIndexRaw runs the structural pass over the marketplace index's
// undecoded JSON. Index validation failures are fatal to the whole run
// (see the IndexSchema error class), so this returns a single error
// rather than separating errors from warnings.
func ValidateIndexRaw(raw []byte) error {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := indexSchema.Validate(instance); err != nil {
		return fmt.Errorf("index schema: %w", err)
	}
	return nil
}
