package marketplace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
)

// Report is the final aggregated output of a validation run.
type Report struct {
	IndexName   string
	Results     []*plugin.Result
	Records     []plugin.Record
	Collisions  map[string][]string
	MetricsText string
}

// PassedCount returns the number of plugins with zero errors.
func (r *Report) PassedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed() {
			n++
		}
	}
	return n
}

// FailedCount returns the number of plugins with at least one error.
func (r *Report) FailedCount() int {
	return len(r.Results) - r.PassedCount()
}

// ExitCode is 0 iff every plugin passed, else 1.
func (r *Report) ExitCode() int {
	if r.FailedCount() == 0 {
		return 0
	}
	return 1
}

// Render produces the emoji-tagged, human-readable report: one section
// per plugin sorted by input order, a collision summary, totals, and the
// metrics snapshot.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Marketplace: %s\n\n", r.IndexName)

	for _, res := range r.Results {
		badge := "✅"
		if !res.Passed() {
			badge = "❌"
		}
		fmt.Fprintf(&b, "%s %s (%s) — %s\n", badge, res.Name, res.Tier, res.URL)
		for _, e := range res.Errors {
			fmt.Fprintf(&b, "    error: %s\n", e)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "    warning: %s\n", w)
		}
		if res.Tier == plugin.TierCommunity && len(res.DetectedDomains) > 0 {
			fmt.Fprintf(&b, "    detected domains: %s\n", strings.Join(res.DomainList(), ", "))
		}
		b.WriteString("\n")
	}

	if len(r.Collisions) > 0 {
		b.WriteString("Command collisions:\n")
		names := make([]string, 0, len(r.Collisions))
		for cmd := range r.Collisions {
			names = append(names, cmd)
		}
		sort.Strings(names)
		for _, cmd := range names {
			fmt.Fprintf(&b, "  %s: claimed by %s\n", cmd, strings.Join(r.Collisions[cmd], ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Totals: %d passed, %d failed (of %d)\n\n", r.PassedCount(), r.FailedCount(), len(r.Results))
	b.WriteString(r.MetricsText)

	if r.FailedCount() > 0 {
		b.WriteString("\nRemediation hints:\n")
		for _, res := range r.Results {
			if res.Passed() {
				continue
			}
			fmt.Fprintf(&b, "  - %s: fix the above errors and re-run validation\n", res.Name)
		}
	}

	return b.String()
}
