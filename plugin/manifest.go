// Package plugin defines the manifest data model shared by the scanner,
// the tier policy engine, and the marketplace driver.
package plugin

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// Tier is the marketplace trust tier a plugin belongs to.
type Tier string

const (
	TierCurated   Tier = "curated"
	TierCommunity Tier = "community"
)

// ParseTier normalizes a tier string, mapping the legacy "official" alias
// onto TierCurated.
func ParseTier(s string) (Tier, bool) {
	switch s {
	case string(TierCurated):
		return TierCurated, true
	case string(TierCommunity):
		return TierCommunity, true
	case "official":
		return TierCurated, true
	}
	return "", false
}

// NetworkMode describes how a plugin declares its outbound network use.
type NetworkMode string

const (
	NetworkModeNone      NetworkMode = "none"
	NetworkModeAllowlist NetworkMode = "allowlist"
)

// NetworkCapabilities is the declared network surface of a plugin.
type NetworkCapabilities struct {
	Mode    NetworkMode `json:"mode,omitempty"`
	Domains []string    `json:"domains,omitempty"`
}

// Capabilities groups the capability declarations a manifest can make.
// It is a pointer field on Manifest so a legacy manifest that omits the
// block entirely can be told apart from one that declares an empty one.
type Capabilities struct {
	Network NetworkCapabilities `json:"network"`
}

// DataEgress is a coarse self-reported risk level for data leaving the
// plugin's sandbox.
type DataEgress string

const (
	RiskLow    DataEgress = "low"
	RiskMedium DataEgress = "medium"
	RiskHigh   DataEgress = "high"
)

// Risk is the self-reported risk declaration of a plugin author.
type Risk struct {
	DataEgress DataEgress `json:"dataEgress,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Manifest is a plugin's self-description as checked into its repository,
// read from plugin.json or .claude-plugin/plugin.json.
type Manifest struct {
	Name         string        `json:"name"`
	Version      string        `json:"version,omitempty"`
	Description  string        `json:"description,omitempty"`
	PolicyTier   Tier          `json:"policyTier,omitempty"`
	Capabilities *Capabilities `json:"capabilities,omitempty"`
	Risk         *Risk         `json:"risk,omitempty"`
}

// NamePattern matches the kebab-case plugin names the marketplace index
// and manifest schema both enforce.
var NamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// IsLegacy reports whether this manifest predates policyTier and
// capabilities, i.e. it declares neither of the two fields.
func (m *Manifest) IsLegacy() bool {
	return m.PolicyTier == "" && m.Capabilities == nil
}

// EffectiveNetworkMode returns the plugin's declared network mode,
// defaulting to NetworkModeNone when capabilities are absent, which is
// the conservative reading used by the reconciler and tier policy.
func (m *Manifest) EffectiveNetworkMode() NetworkMode {
	if m.Capabilities == nil || m.Capabilities.Network.Mode == "" {
		return NetworkModeNone
	}
	return m.Capabilities.Network.Mode
}

// DeclaredDomains returns the allowlisted domains a manifest declares, or
// nil if none are declared.
func (m *Manifest) DeclaredDomains() []string {
	if m.Capabilities == nil {
		return nil
	}
	return m.Capabilities.Network.Domains
}

// EffectiveTier resolves the tier that policy should apply: the
// manifest's self-declared tier if present, otherwise the tier recorded
// for the plugin's entry in the marketplace index.
func (m *Manifest) EffectiveTier(entryTier Tier) Tier {
	if m.PolicyTier == "" {
		return entryTier
	}
	return m.PolicyTier
}

// ValidVersion reports whether Version, if set, parses as a semantic
// version understood by golang.org/x/mod/semver (which requires a "v"
// prefix, so bare "1.2.3" manifests are normalized before the check).
func (m *Manifest) ValidVersion() bool {
	if m.Version == "" {
		return true
	}
	return validSemver(m.Version)
}

// validSemver reports whether v parses as a full MAJOR.MINOR.PATCH
// semantic version once normalized with the "v" prefix
// golang.org/x/mod/semver requires. The vMAJOR and vMAJOR.MINOR
// shorthands that semver.IsValid accepts are rejected.
func validSemver(v string) bool {
	if v[0] != 'v' {
		v = "v" + v
	}
	return semver.IsValid(v) && strings.HasPrefix(v, semver.Canonical(v))
}
