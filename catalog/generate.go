// Package catalog renders the validated plugin records into a
// human-readable markdown registry page, and supports a --check mode
// that detects drift between the rendered and on-disk versions.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
)

const generatedPrefix = "<!-- generated: "

// Render produces the markdown document for records, one section per
// tier and one row per plugin, preceded by a generation-timestamp
// comment line.
func Render(records []plugin.Record, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s -->\n\n", generatedPrefix, now.UTC().Format(time.RFC3339))
	b.WriteString("# Plugin Catalog\n\n")

	for _, tier := range []plugin.Tier{plugin.TierCurated, plugin.TierCommunity} {
		section := filterTier(records, tier)
		if len(section) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", tierHeading(tier))
		b.WriteString("| Name | Version | Description | Status |")
		if tier == plugin.TierCommunity {
			b.WriteString(" Detected Domains |")
		}
		b.WriteString("\n|---|---|---|---|")
		if tier == plugin.TierCommunity {
			b.WriteString("---|")
		}
		b.WriteString("\n")

		for _, rec := range section {
			badge := "✅"
			if !rec.Passed {
				badge = "❌"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |", rec.Name, rec.Version, rec.Description, badge)
			if tier == plugin.TierCommunity {
				fmt.Fprintf(&b, " %s |", strings.Join(rec.DetectedDomains, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func tierHeading(tier plugin.Tier) string {
	switch tier {
	case plugin.TierCurated:
		return "Curated"
	case plugin.TierCommunity:
		return "Community"
	default:
		return string(tier)
	}
}

func filterTier(records []plugin.Record, tier plugin.Tier) []plugin.Record {
	var out []plugin.Record
	for _, r := range records {
		if r.Tier == tier {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// stripGeneratedLine removes the first line if it is the generation
// timestamp comment, used so --check can compare content regardless of
// when each version was rendered.
func stripGeneratedLine(doc string) string {
	lines := strings.SplitN(doc, "\n", 2)
	if len(lines) == 2 && strings.HasPrefix(lines[0], generatedPrefix) {
		return lines[1]
	}
	return doc
}
