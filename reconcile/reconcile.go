// Package reconcile cross-checks what a manifest declares against what
// the scanner actually observed in the plugin's code.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
)

// Error is a single consistency violation between declaration and
// observation.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Check compares the scanner's observations against the manifest's
// declared network capability. The reverse direction — a domain declared
// but never observed — is deliberately not flagged; the scanner is
// conservative and silence is not evidence of absence.
func Check(tier plugin.Tier, mode plugin.NetworkMode, networkDetected bool, declaredDomains, detectedDomains []string) []*Error {
	var errs []*Error

	if networkDetected && mode == plugin.NetworkModeNone {
		errs = append(errs, &Error{Message: "CONSISTENCY: network code detected but declared none"})
	}

	if tier == plugin.TierCommunity && mode == plugin.NetworkModeAllowlist {
		declared := make(map[string]bool, len(declaredDomains))
		for _, d := range declaredDomains {
			declared[d] = true
		}
		var undeclared []string
		for _, d := range detectedDomains {
			if !declared[d] {
				undeclared = append(undeclared, d)
			}
		}
		if len(undeclared) > 0 {
			sort.Strings(undeclared)
			errs = append(errs, &Error{Message: fmt.Sprintf("CONSISTENCY: undeclared hosts contacted: %v", undeclared)})
		}
	}

	return errs
}
