package orchestrator

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localCopyFetcher substitutes the real git transport with a plain
// directory copy from a fixture tree, the same pattern the end-to-end
// suite uses for its fake Fetcher.
func localCopyFetcher(src string) Fetcher {
	return func(ctx context.Context, url, dest string, deadline time.Duration) error {
		return copyTree(src, dest)
	}
}

func copyTree(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode())
	})
}

func writeFixture(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestRunCuratedCleanPasses(t *testing.T) {
	fixture := t.TempDir()
	writeFixture(t, fixture, map[string]string{
		"plugin.json":   `{"name":"x","version":"1.0.0","description":"d","policyTier":"curated","capabilities":{"network":{"mode":"none"}}}`,
		"README.md":     "# x",
		"LICENSE":       "MIT",
		"commands/a.md": "do a thing",
	})

	scope, err := NewRoot(t.TempDir())
	require.NoError(t, err)
	defer scope.Close()

	entry := plugin.Entry{Name: "x", Tier: plugin.TierCurated, Source: plugin.Source{Type: plugin.SourceGit, URL: "https://example.com/x.git"}}
	res, _ := Run(context.Background(), scope, entry, Options{Fetch: localCopyFetcher(fixture)})

	assert.True(t, res.Passed(), "errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestRunSecretLeakFails(t *testing.T) {
	fixture := t.TempDir()
	writeFixture(t, fixture, map[string]string{
		"plugin.json":     `{"name":"x","version":"1.0.0","description":"d","policyTier":"curated","capabilities":{"network":{"mode":"none"}}}`,
		"README.md":       "# x",
		"LICENSE":         "MIT",
		"commands/run.py": `api_key = "sk-abcdefghijklmnopqrstuvwxyz"`,
	})

	scope, err := NewRoot(t.TempDir())
	require.NoError(t, err)
	defer scope.Close()

	entry := plugin.Entry{Name: "x", Tier: plugin.TierCurated, Source: plugin.Source{Type: plugin.SourceGit, URL: "https://example.com/x.git"}}
	res, _ := Run(context.Background(), scope, entry, Options{Fetch: localCopyFetcher(fixture)})

	assert.False(t, res.Passed())
	assert.Len(t, res.Errors, 1)
}

func TestRunFetchFailureIsIsolated(t *testing.T) {
	scope, err := NewRoot(t.TempDir())
	require.NoError(t, err)
	defer scope.Close()

	failingFetch := func(ctx context.Context, url, dest string, deadline time.Duration) error {
		return io.ErrUnexpectedEOF
	}

	entry := plugin.Entry{Name: "x", Tier: plugin.TierCurated, Source: plugin.Source{Type: plugin.SourceGit, URL: "https://example.com/x.git"}}
	res, _ := Run(context.Background(), scope, entry, Options{Fetch: failingFetch})

	assert.False(t, res.Passed())
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Fetch:")
}

func TestRunLegacyManifestPassesWithWarnings(t *testing.T) {
	fixture := t.TempDir()
	writeFixture(t, fixture, map[string]string{
		"plugin.json":   `{"name":"x","version":"1.0.0"}`,
		"README.md":     "# x",
		"LICENSE":       "MIT",
		"commands/a.md": "a",
	})

	scope, err := NewRoot(t.TempDir())
	require.NoError(t, err)
	defer scope.Close()

	entry := plugin.Entry{Name: "x", Tier: plugin.TierCurated, Source: plugin.Source{Type: plugin.SourceGit, URL: "https://example.com/x.git"}}
	res, _ := Run(context.Background(), scope, entry, Options{Fetch: localCopyFetcher(fixture)})

	assert.True(t, res.Passed(), "errors: %v", res.Errors)
	assert.GreaterOrEqual(t, len(res.Warnings), 2)
}

func TestClaimDirectoryRemovedAfterRun(t *testing.T) {
	fixture := t.TempDir()
	writeFixture(t, fixture, map[string]string{
		"plugin.json":   `{"name":"x","version":"1.0.0","policyTier":"curated","capabilities":{"network":{"mode":"none"}},"description":"d"}`,
		"README.md":     "# x",
		"LICENSE":       "MIT",
		"commands/a.md": "a",
	})

	scope, err := NewRoot(t.TempDir())
	require.NoError(t, err)
	defer scope.Close()

	entry := plugin.Entry{Name: "x", Tier: plugin.TierCurated, Source: plugin.Source{Type: plugin.SourceGit, URL: "https://example.com/x.git"}}
	_, _ = Run(context.Background(), scope, entry, Options{Fetch: localCopyFetcher(fixture)})

	claim, err := scope.Claim("x")
	require.NoError(t, err)
	_, statErr := os.Stat(claim.Dir())
	assert.True(t, os.IsNotExist(statErr))
}
