// Package orchestrator runs the nine-step per-plugin validation pipeline:
// fetch, structure check, manifest validation, tier policy, scan, and
// consistency reconciliation.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PJuniszewski/juni-tools-marketplace/gitfetch"
	"github.com/PJuniszewski/juni-tools-marketplace/pattern"
	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
	"github.com/PJuniszewski/juni-tools-marketplace/policy"
	"github.com/PJuniszewski/juni-tools-marketplace/reconcile"
	"github.com/PJuniszewski/juni-tools-marketplace/scanner"
	"github.com/PJuniszewski/juni-tools-marketplace/schema"
	"github.com/PJuniszewski/juni-tools-marketplace/walker"
)

// manifestCandidates are the paths checked, in order, inside a cloned
// plugin repo.
var manifestCandidates = []string{
	"plugin.json",
	filepath.Join(".claude-plugin", "plugin.json"),
}

// Fetcher abstracts the repository transport so tests (and the
// end-to-end suite) can substitute a local copy instead of a real
// network clone.
type Fetcher func(ctx context.Context, url, dest string, deadline time.Duration) error

// Options configures a single orchestrator run.
type Options struct {
	Logger        *slog.Logger
	Fetch         Fetcher
	CloneDeadline time.Duration
}

// CommandsIndex accumulates command_name -> plugin names across all
// plugins in a run. Workers never mutate it directly; the driver merges
// each plugin's command set into it after the worker returns.
type CommandsIndex struct {
	owners map[string][]string
}

// NewCommandsIndex creates an empty index.
func NewCommandsIndex() *CommandsIndex {
	return &CommandsIndex{owners: map[string][]string{}}
}

// Record associates a plugin with one of its command names.
func (c *CommandsIndex) Record(command, pluginName string) {
	c.owners[command] = append(c.owners[command], pluginName)
}

// Collisions returns command names claimed by two or more plugins.
func (c *CommandsIndex) Collisions() map[string][]string {
	out := map[string][]string{}
	for cmd, owners := range c.owners {
		if len(owners) > 1 {
			out[cmd] = owners
		}
	}
	return out
}

// Run executes the full per-plugin pipeline and returns its Result plus
// the decoded Manifest the driver needs, together with entry, to build a
// Record; the Manifest is nil when the pipeline stops before the manifest
// step. Any unexpected panic inside the pipeline is
// recovered and converted into a single error on the result, so a single
// plugin's failure never escapes to its caller.
func Run(ctx context.Context, scope *Scope, entry plugin.Entry, opts Options) (result *plugin.Result, manifest *plugin.Manifest) {
	result = plugin.NewResult(entry.Name, entry.Tier, entry.Source.URL)

	defer func() {
		if r := recover(); r != nil {
			result.AddError(fmt.Sprintf("internal error: %v", r))
		}
	}()

	if entry.Name == "" {
		result.AddError("EntryParse: plugin entry missing name")
		return result, nil
	}
	if entry.Source.Type != plugin.SourceGit || entry.Source.URL == "" {
		result.AddError("EntryParse: plugin entry missing a git source URL")
		return result, nil
	}
	if _, ok := plugin.ParseTier(string(entry.Tier)); !ok {
		result.AddError(fmt.Sprintf("EntryParse: unknown tier %q", entry.Tier))
		return result, nil
	}

	claim, err := scope.Claim(entry.Name)
	if err != nil {
		result.AddError(fmt.Sprintf("Fetch: %v", err))
		return result, nil
	}
	defer claim.Close()

	fetch := opts.Fetch
	if fetch == nil {
		fetch = gitfetch.Clone
	}
	deadline := opts.CloneDeadline
	if deadline == 0 {
		deadline = 120 * time.Second
	}
	start := time.Now()
	if err := fetch(ctx, entry.Source.URL, claim.Dir(), deadline); err != nil {
		result.AddError(fmt.Sprintf("Fetch: %v", err))
		return result, nil
	}
	if opts.Logger != nil {
		opts.Logger.Debug("cloned plugin repo", "plugin", entry.Name, "duration", time.Since(start))
	}

	root := claim.Dir()

	manifestPath, manifestRaw, err := findManifest(root)
	if err != nil {
		result.AddError(fmt.Sprintf("Structure: %v", err))
	}
	for _, required := range []string{"README.md", "LICENSE"} {
		if _, err := os.Stat(filepath.Join(root, required)); err != nil {
			result.AddError(fmt.Sprintf("Structure: missing %s", required))
		}
	}
	if !hasContentDir(root) {
		result.AddError("Structure: no content directory (commands, hooks, agents, or skills) present")
	}

	var m plugin.Manifest
	if manifestPath != "" {
		if err := json.Unmarshal(manifestRaw, &m); err != nil {
			result.AddError(fmt.Sprintf("ManifestSchema: invalid manifest JSON: %v", err))
		} else {
			errs, warnings := schema.ValidateManifest(manifestRaw, &m, entry.Tier)
			for _, e := range errs {
				result.AddError(fmt.Sprintf("ManifestSchema: %s", e.Error()))
			}
			for _, w := range warnings {
				result.AddWarning(fmt.Sprintf("Warning: %s", w.Error()))
			}
		}
	}

	effectiveTier := entry.Tier
	if m.PolicyTier != "" {
		effectiveTier = m.EffectiveTier(entry.Tier)
	}
	mode := m.EffectiveNetworkMode()
	domains := m.DeclaredDomains()

	for _, e := range policy.Check(effectiveTier, mode, domains, m.Risk) {
		result.AddError(fmt.Sprintf("TierPolicy: %s", e.Error()))
	}

	walkRes, err := walker.Walk(root)
	if err != nil {
		result.AddError(fmt.Sprintf("ResourceCap: %v", err))
		return result, &m
	}
	for _, w := range walkRes.SymlinkWarn {
		result.AddWarning(fmt.Sprintf("Warning: symlink %s ignored", w))
	}

	scanRes, err := scanner.Scan(root, walkRes.Files)
	if err != nil {
		result.AddError(fmt.Sprintf("ResourceCap: %v", err))
		return result, &m
	}
	result.NetworkDetected = scanRes.NetworkDetected
	for _, d := range scanRes.DomainList() {
		result.DetectedDomains[d] = true
	}
	for _, f := range scanRes.Findings {
		msg := fmt.Sprintf("%s:%d %s: %s", f.Path, f.Line, f.PatternName, f.Snippet)
		if scanner.Severity(f.Class, effectiveTier) {
			result.AddError(fmt.Sprintf("Security: %s", msg))
		} else {
			result.AddWarning(fmt.Sprintf("Warning: %s", msg))
		}
	}

	for _, e := range reconcile.Check(effectiveTier, mode, scanRes.NetworkDetected, domains, scanRes.DomainList()) {
		result.AddError(fmt.Sprintf("Consistency: %s", e.Error()))
	}

	for _, cmd := range collectCommands(root) {
		result.Commands[cmd] = true
	}

	return result, &m
}

func findManifest(root string) (path string, raw []byte, err error) {
	for _, candidate := range manifestCandidates {
		full := filepath.Join(root, candidate)
		data, statErr := os.ReadFile(full)
		if statErr == nil {
			return candidate, data, nil
		}
	}
	return "", nil, fmt.Errorf("no manifest found at %s", strings.Join(manifestCandidates, " or "))
}

func hasContentDir(root string) bool {
	for dir := range pattern.ContentDirs {
		if info, err := os.Stat(filepath.Join(root, dir)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// collectCommands returns the file stems of commands/**/*.{md,txt}.
func collectCommands(root string) []string {
	commandsDir := filepath.Join(root, "commands")
	var names []string
	_ = filepath.Walk(commandsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".txt" {
			return nil
		}
		names = append(names, strings.TrimSuffix(filepath.Base(path), ext))
		return nil
	})
	return names
}
