// Package scanner runs the pattern catalog over the files the walker
// accepted, restricted to content directories, and emits Findings.
package scanner

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/PJuniszewski/juni-tools-marketplace/pattern"
	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
	"github.com/PJuniszewski/juni-tools-marketplace/walker"
)

// Finding is one scanner hit.
type Finding struct {
	Path        string
	Line        int
	Class       pattern.Class
	PatternName string
	Snippet     string
}

// Result is the accumulated scan output for a single plugin repo.
type Result struct {
	Findings        []Finding
	NetworkDetected bool
	DetectedDomains map[string]bool
}

// Scan reads every candidate file under root, applying the pattern
// catalog per the classification rules: secrets and telemetry are always
// errors upstream; network-code and shell-network severity is decided by
// the caller based on tier, but Scan itself always sets NetworkDetected
// when either class matches, regardless of tier.
func Scan(root string, files []walker.File) (*Result, error) {
	res := &Result{DetectedDomains: map[string]bool{}}

	for _, f := range files {
		if !isCandidate(f.Path) {
			continue
		}
		data, err := os.ReadFile(path.Join(root, f.Path))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Path, err)
		}
		scanFile(f.Path, strings.ToValidUTF8(string(data), "�"), res)
	}
	return res, nil
}

func isCandidate(relPath string) bool {
	ext := strings.ToLower(path.Ext(relPath))
	if !pattern.ScanExtensions[ext] {
		return false
	}
	first := strings.SplitN(relPath, "/", 2)[0]
	return pattern.ContentDirs[first]
}

func scanFile(relPath, content string, res *Result) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if pattern.IsComment(line) {
			continue
		}
		// A line that matches a telemetry pattern is not re-counted as
		// network code or shell network use.
		telemetry := false
		for _, p := range pattern.All {
			if p.Class == pattern.ClassTelemetry && p.Re.MatchString(line) {
				telemetry = true
				break
			}
		}
		for _, p := range pattern.All {
			if telemetry && (p.Class == pattern.ClassNetworkCode || p.Class == pattern.ClassShellNet) {
				continue
			}
			if !p.Re.MatchString(line) {
				continue
			}
			res.Findings = append(res.Findings, Finding{
				Path:        relPath,
				Line:        i + 1,
				Class:       p.Class,
				PatternName: p.Name,
				Snippet:     redact(line, p.Class),
			})
			switch p.Class {
			case pattern.ClassNetworkCode, pattern.ClassShellNet:
				res.NetworkDetected = true
				if m := pattern.URLAuthority.FindStringSubmatch(line); m != nil {
					res.DetectedDomains[m[1]] = true
				}
			}
		}
	}
}

// redact truncates a matched line to a safe snippet, masking secret
// values to their first 8 and last 4 characters so findings can be
// reported without leaking the credential itself.
func redact(line string, class pattern.Class) string {
	const maxLen = 120
	s := strings.TrimSpace(line)
	if class == pattern.ClassSecret {
		if i := strings.IndexAny(s, "\"'"); i != -1 {
			if j := strings.IndexAny(s[i+1:], "\"'"); j != -1 {
				value := s[i+1 : i+1+j]
				s = s[:i+1] + maskSecret(value) + s[i+1+j:]
			}
		}
	}
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}

func maskSecret(v string) string {
	if len(v) <= 12 {
		return strings.Repeat("*", len(v))
	}
	return v[:8] + "..." + v[len(v)-4:]
}

// DomainList returns the detected domains in sorted order.
func (r *Result) DomainList() []string {
	out := make([]string, 0, len(r.DetectedDomains))
	for d := range r.DetectedDomains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Severity reports whether a finding of the given class and tier is an
// error or a warning, per the tier-dependent classification rules.
func Severity(class pattern.Class, tier plugin.Tier) (isError bool) {
	switch class {
	case pattern.ClassSecret, pattern.ClassTelemetry:
		return true
	case pattern.ClassNetworkCode, pattern.ClassShellNet:
		return tier == plugin.TierCurated
	}
	return false
}
