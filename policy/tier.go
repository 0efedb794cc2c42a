// Package policy enforces tier-specific rules on a manifest, independent
// of anything the scanner observed in the plugin's code.
package policy

import (
	"fmt"

	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
)

// Error is a single tier-policy violation.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Check evaluates tier-specific policy for a manifest's effective network
// mode and risk declaration. The manifest's legacy defaults (mode "none")
// must already be applied by the caller before invoking Check.
func Check(tier plugin.Tier, mode plugin.NetworkMode, domains []string, risk *plugin.Risk) []*Error {
	var errs []*Error

	switch tier {
	case plugin.TierCurated:
		if mode != plugin.NetworkModeNone {
			errs = append(errs, &Error{Message: "curated plugins must not declare network access; move to community or remove network"})
		}
		if risk != nil && (risk.DataEgress == plugin.RiskMedium || risk.DataEgress == plugin.RiskHigh) {
			errs = append(errs, &Error{Message: fmt.Sprintf("curated plugins must not declare risk.dataEgress %q", risk.DataEgress)})
		}
	case plugin.TierCommunity:
		if mode != plugin.NetworkModeNone && mode != plugin.NetworkModeAllowlist {
			errs = append(errs, &Error{Message: fmt.Sprintf("community plugins must declare network mode none or allowlist, got %q", mode)})
		}
		if mode == plugin.NetworkModeAllowlist && len(domains) == 0 {
			errs = append(errs, &Error{Message: "community plugin declares allowlist mode with no domains"})
		}
	}
	return errs
}
