package schema

import (
	"encoding/json"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
)

var semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)
var domainLabelRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidateManifest runs the structural schema pass followed by the
// semantic rules, returning separate error and warning slices. raw is the
// manifest's undecoded JSON, used for the structural pass; m is the
// already-decoded value used for the semantic pass.
func ValidateManifest(raw []byte, m *plugin.Manifest, entryTier plugin.Tier) (errs, warnings ValidationErrors) {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return ValidationErrors{{Class: "ManifestSchema", Message: fmt.Sprintf("invalid JSON: %v", err)}}, nil
	}
	if err := manifestSchema.Validate(instance); err != nil {
		errs = append(errs, &ValidationError{Class: "ManifestSchema", Message: err.Error()})
	}

	if m.Name == "" {
		errs = append(errs, &ValidationError{Class: "ManifestSchema", Path: "name", Message: "name is required"})
	} else if !plugin.NamePattern.MatchString(m.Name) {
		warnings = append(warnings, &ValidationError{Class: "Warning", Path: "name", Message: "name is not kebab-case"})
	}

	if m.Version == "" {
		warnings = append(warnings, &ValidationError{Class: "Warning", Path: "version", Message: "version is recommended"})
	} else if !semverRe.MatchString(strings.TrimPrefix(m.Version, "v")) {
		warnings = append(warnings, &ValidationError{Class: "Warning", Path: "version", Message: fmt.Sprintf("version %q is not semver", m.Version)})
	}

	if m.Description == "" {
		warnings = append(warnings, &ValidationError{Class: "Warning", Path: "description", Message: "description is recommended"})
	}

	if m.IsLegacy() {
		warnings = append(warnings,
			&ValidationError{Class: "Warning", Path: "policyTier", Message: "legacy manifest: policyTier missing, defaulting to entry tier"},
			&ValidationError{Class: "Warning", Path: "capabilities", Message: "legacy manifest: capabilities missing, defaulting to network mode none"},
		)
		return errs, warnings
	}

	if m.PolicyTier != "" {
		tier, ok := plugin.ParseTier(string(m.PolicyTier))
		if !ok {
			errs = append(errs, &ValidationError{Class: "ManifestSchema", Path: "policyTier", Message: fmt.Sprintf("unknown policyTier %q", m.PolicyTier)})
		} else if tier != entryTier {
			errs = append(errs, &ValidationError{Class: "ManifestSchema", Path: "policyTier", Message: fmt.Sprintf("policyTier %q does not match marketplace entry tier %q", tier, entryTier)})
		}
	}

	if m.Capabilities != nil {
		nc := m.Capabilities.Network
		switch nc.Mode {
		case plugin.NetworkModeNone:
			if len(nc.Domains) > 0 {
				errs = append(errs, &ValidationError{Class: "ManifestSchema", Path: "capabilities.network.domains", Message: "domains must be empty when mode is none"})
			}
		case plugin.NetworkModeAllowlist:
			if len(nc.Domains) == 0 {
				errs = append(errs, &ValidationError{Class: "ManifestSchema", Path: "capabilities.network.domains", Message: "allowlist mode requires at least one domain"})
			}
			for i, d := range nc.Domains {
				if err := validateDomain(d); err != nil {
					errs = append(errs, &ValidationError{Class: "ManifestSchema", Path: fmt.Sprintf("capabilities.network.domains[%d]", i), Message: err.Error()})
				}
			}
		default:
			errs = append(errs, &ValidationError{Class: "ManifestSchema", Path: "capabilities.network.mode", Message: fmt.Sprintf("unknown network mode %q", nc.Mode)})
		}
	}

	if entryTier == plugin.TierCommunity {
		if m.Risk == nil || m.Risk.DataEgress == "" {
			errs = append(errs, &ValidationError{Class: "ManifestSchema", Path: "risk.dataEgress", Message: "community manifests must declare risk.dataEgress"})
		} else {
			switch m.Risk.DataEgress {
			case plugin.RiskLow, plugin.RiskMedium, plugin.RiskHigh:
			default:
				errs = append(errs, &ValidationError{Class: "ManifestSchema", Path: "risk.dataEgress", Message: fmt.Sprintf("unknown dataEgress %q", m.Risk.DataEgress)})
			}
		}
	}

	return errs, warnings
}

// validateDomain enforces the allowlist domain syntax: RFC-1123-like
// labels, no wildcard prefix, no bare IPv4 literal.
func validateDomain(d string) error {
	if strings.HasPrefix(d, "*.") {
		return fmt.Errorf("wildcard domains are not allowed: %q", d)
	}
	if net.ParseIP(d) != nil {
		return fmt.Errorf("IP literals are not allowed: %q", d)
	}
	if !domainLabelRe.MatchString(d) {
		return fmt.Errorf("invalid domain syntax: %q", d)
	}
	return nil
}
