package catalog

import (
	"fmt"
	"os"
	"time"

	"github.com/PJuniszewski/juni-tools-marketplace/plugin"
)

// Write renders records and writes the result to path, overwriting any
// existing file.
func Write(path string, records []plugin.Record, now time.Time) error {
	doc := Render(records, now)
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Check renders records in memory and compares them against the file at
// path, ignoring the generation-timestamp line on both sides. It never
// writes to disk. drift is true when the rendered content and the
// on-disk content differ.
func Check(path string, records []plugin.Record, now time.Time) (drift bool, err error) {
	want := stripGeneratedLine(Render(records, now))

	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("read catalog: %w", err)
	}
	got := stripGeneratedLine(string(existing))

	return want != got, nil
}
