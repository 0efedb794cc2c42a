package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleRecords() []plugin.Record {
	return []plugin.Record{
		{Name: "curated-one", Tier: plugin.TierCurated, Version: "1.0.0", Description: "curated plugin", Passed: true},
		{Name: "community-one", Tier: plugin.TierCommunity, Version: "0.1.0", Description: "community plugin", Passed: false, DetectedDomains: []string{"api.example.com"}},
	}
}

func TestRenderIncludesGeneratedLineAndSections(t *testing.T) {
	doc := Render(sampleRecords(), fixedTime)
	assert.Contains(t, doc, "<!-- generated: 2026-01-01T00:00:00Z -->")
	assert.Contains(t, doc, "## Curated")
	assert.Contains(t, doc, "## Community")
	assert.Contains(t, doc, "curated-one")
	assert.Contains(t, doc, "community-one")
	assert.Contains(t, doc, "api.example.com")
	assert.Contains(t, doc, "✅")
	assert.Contains(t, doc, "❌")
}

func TestRenderOmitsEmptyTierSection(t *testing.T) {
	doc := Render([]plugin.Record{{Name: "solo", Tier: plugin.TierCurated, Passed: true}}, fixedTime)
	assert.Contains(t, doc, "## Curated")
	assert.NotContains(t, doc, "## Community")
}

func TestCheckDetectsNoDriftWhenTimestampDiffers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CATALOG.md")

	require.NoError(t, Write(path, sampleRecords(), fixedTime))

	later := fixedTime.Add(24 * time.Hour)
	drift, err := Check(path, sampleRecords(), later)
	require.NoError(t, err)
	assert.False(t, drift)
}

func TestCheckDetectsDriftOnContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CATALOG.md")

	require.NoError(t, Write(path, sampleRecords(), fixedTime))

	changed := sampleRecords()
	changed[0].Version = "2.0.0"

	drift, err := Check(path, changed, fixedTime)
	require.NoError(t, err)
	assert.True(t, drift)
}

func TestCheckMissingFileIsDrift(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.md")

	drift, err := Check(path, sampleRecords(), fixedTime)
	require.NoError(t, err)
	assert.True(t, drift)
}
