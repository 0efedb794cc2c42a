// Package e2e drives the real validation pipeline end to end against
// on-disk fixtures, using the scenarios in features/*.feature.
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/PJuniszewski/juni-tools-marketplace/marketplace"
	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitialize: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

var quotedList = regexp.MustCompile(`"([^"]+)"`)

// world holds the fixture being assembled for one scenario and the
// report produced once it is validated.
type world struct {
	dir       string // the plugin repository root
	name      string
	indexTier plugin.Tier
	manifest  []byte

	report *marketplace.Report
}

func (w *world) reset() error {
	dir, err := os.MkdirTemp("", "pluginguard-e2e-*")
	if err != nil {
		return err
	}
	w.dir = dir
	w.name = ""
	w.indexTier = ""
	w.manifest = nil
	w.report = nil
	return nil
}

func (w *world) aPluginWithManifest(name string, manifest *godog.DocString) error {
	w.name = name
	w.manifest = []byte(strings.TrimSpace(manifest.Content))

	var m struct {
		PolicyTier string `json:"policyTier"`
	}
	_ = json.Unmarshal(w.manifest, &m)
	if m.PolicyTier != "" {
		w.indexTier = plugin.Tier(m.PolicyTier)
	} else {
		w.indexTier = plugin.TierCurated
	}

	if err := os.WriteFile(filepath.Join(w.dir, "plugin.json"), w.manifest, 0o644); err != nil {
		return err
	}
	return nil
}

func (w *world) thePluginIsListedInTheIndexWithTier(tier string) error {
	w.indexTier = plugin.Tier(tier)
	return nil
}

func (w *world) theRepositoryContains(list string) error {
	for _, m := range quotedList.FindAllStringSubmatch(list, -1) {
		path := filepath.Join(w.dir, m[1])
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte("placeholder\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (w *world) thePluginHasNoNetworkCode() error {
	return nil
}

func (w *world) theFileContains(path string, content *godog.DocString) error {
	full := filepath.Join(w.dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content.Content+"\n"), 0o644)
}

func (w *world) theMarketplaceIndexIsValidated() error {
	index := map[string]any{
		"name":    "e2e",
		"version": "1.0.0",
		"plugins": []map[string]any{
			{
				"name": w.name,
				"tier": string(w.indexTier),
				"source": map[string]string{
					"type": "git",
					"url":  "https://example.invalid/" + w.name + ".git",
				},
			},
		},
	}
	raw, err := json.Marshal(index)
	if err != nil {
		return err
	}

	indexDir, err := os.MkdirTemp("", "pluginguard-e2e-index-*")
	if err != nil {
		return err
	}
	indexPath := filepath.Join(indexDir, "marketplace.json")
	if err := os.WriteFile(indexPath, raw, 0o644); err != nil {
		return err
	}

	d := marketplace.New(nil)
	d.Fetch = localFetcher(w.dir)

	report, err := d.Run(context.Background(), indexPath)
	if err != nil {
		return fmt.Errorf("run validation: %w", err)
	}
	w.report = report
	return nil
}

func localFetcher(src string) func(ctx context.Context, url, dest string, deadline time.Duration) error {
	return func(ctx context.Context, url, dest string, deadline time.Duration) error {
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
}

func (w *world) result(name string) (*plugin.Result, error) {
	for _, r := range w.report.Results {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no result for plugin %q", name)
}

func (w *world) resultHasNErrorsAndNWarnings(name string, errCount, warnCount int) error {
	res, err := w.result(name)
	if err != nil {
		return err
	}
	if len(res.Errors) != errCount {
		return fmt.Errorf("expected %d errors, got %d: %v", errCount, len(res.Errors), res.Errors)
	}
	if len(res.Warnings) != warnCount {
		return fmt.Errorf("expected %d warnings, got %d: %v", warnCount, len(res.Warnings), res.Warnings)
	}
	return nil
}

func (w *world) resultPasses(name string) error {
	res, err := w.result(name)
	if err != nil {
		return err
	}
	if !res.Passed() {
		return fmt.Errorf("expected %q to pass, errors: %v", name, res.Errors)
	}
	return nil
}

func (w *world) resultHasNErrors(name string, n int) error {
	res, err := w.result(name)
	if err != nil {
		return err
	}
	if len(res.Errors) != n {
		return fmt.Errorf("expected %d errors, got %d: %v", n, len(res.Errors), res.Errors)
	}
	return nil
}

func (w *world) resultHasErrorOfClass(name, class string) error {
	res, err := w.result(name)
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		if strings.HasPrefix(e, class+":") {
			return nil
		}
	}
	return fmt.Errorf("expected an error of class %q in %v", class, res.Errors)
}

func (w *world) resultHasErrorOfClassNamed(name, class, named string) error {
	res, err := w.result(name)
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		if strings.HasPrefix(e, class+":") && strings.Contains(e, named) {
			return nil
		}
	}
	return fmt.Errorf("expected an error of class %q named %q in %v", class, named, res.Errors)
}

func (w *world) resultHasErrorOfClassMentioning(name, class, substr string) error {
	res, err := w.result(name)
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		if strings.HasPrefix(e, class+":") && strings.Contains(e, substr) {
			return nil
		}
	}
	return fmt.Errorf("expected an error of class %q mentioning %q in %v", class, substr, res.Errors)
}

func (w *world) resultHasAtLeastNWarningsMentioning(name string, n int, substr string) error {
	res, err := w.result(name)
	if err != nil {
		return err
	}
	count := 0
	for _, wm := range res.Warnings {
		if strings.Contains(wm, substr) {
			count++
		}
	}
	if count < n {
		return fmt.Errorf("expected at least %d warnings mentioning %q, got %d: %v", n, substr, count, res.Warnings)
	}
	return nil
}

func (w *world) indexValidationExitsWithCode(code int) error {
	if w.report.ExitCode() != code {
		return fmt.Errorf("expected exit code %d, got %d", code, w.report.ExitCode())
	}
	return nil
}

func initializeScenario(ctx *godog.ScenarioContext) {
	w := &world{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		return c, w.reset()
	})
	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if w.dir != "" {
			os.RemoveAll(w.dir)
		}
		return c, nil
	})

	ctx.Step(`^a plugin "([^"]*)" with manifest:$`, w.aPluginWithManifest)
	ctx.Step(`^the plugin is listed in the index with tier "([^"]*)"$`, w.thePluginIsListedInTheIndexWithTier)
	ctx.Step(`^the plugin repository contains (.+)$`, w.theRepositoryContains)
	ctx.Step(`^the plugin has no network code$`, w.thePluginHasNoNetworkCode)
	ctx.Step(`^the file "([^"]*)" contains:$`, w.theFileContains)
	ctx.Step(`^the marketplace index is validated$`, w.theMarketplaceIndexIsValidated)
	ctx.Step(`^the result for "([^"]*)" has (\d+) errors? and (\d+) warnings?$`, func(name, errs, warns string) error {
		e, _ := strconv.Atoi(errs)
		wn, _ := strconv.Atoi(warns)
		return w.resultHasNErrorsAndNWarnings(name, e, wn)
	})
	ctx.Step(`^the result for "([^"]*)" passes$`, w.resultPasses)
	ctx.Step(`^the result for "([^"]*)" has (\d+) errors?$`, func(name, n string) error {
		count, _ := strconv.Atoi(n)
		return w.resultHasNErrors(name, count)
	})
	ctx.Step(`^the result for "([^"]*)" has an error of class "([^"]*)" named "([^"]*)"$`, w.resultHasErrorOfClassNamed)
	ctx.Step(`^the result for "([^"]*)" has an error of class "([^"]*)" mentioning "([^"]*)"$`, w.resultHasErrorOfClassMentioning)
	ctx.Step(`^the result for "([^"]*)" has an error of class "([^"]*)"$`, w.resultHasErrorOfClass)
	ctx.Step(`^the result for "([^"]*)" has at least (\d+) warnings mentioning "([^"]*)"$`, func(name, n, substr string) error {
		count, _ := strconv.Atoi(n)
		return w.resultHasAtLeastNWarningsMentioning(name, count, substr)
	})
	ctx.Step(`^the index validation exits with code (\d+)$`, func(code string) error {
		n, _ := strconv.Atoi(code)
		return w.indexValidationExitsWithCode(n)
	})
}
