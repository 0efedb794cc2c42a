package plugin

import "fmt"

// Owner identifies who publishes a marketplace index.
type Owner struct {
	Name string `json:"name"`
}

// Index is the top-level marketplace registry document.
type Index struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Owner   Owner   `json:"owner"`
	Plugins []Entry `json:"plugins"`
}

// DuplicateNames returns the plugin names that appear more than once in
// the index, violating the uniqueness invariant.
func (idx *Index) DuplicateNames() []string {
	seen := map[string]int{}
	var dupes []string
	for _, e := range idx.Plugins {
		seen[e.Name]++
		if seen[e.Name] == 2 {
			dupes = append(dupes, e.Name)
		}
	}
	return dupes
}

// Validate checks the invariants the JSON Schema layer cannot express:
// non-empty name, a semver version, and unique plugin names.
func (idx *Index) Validate() error {
	if idx.Name == "" {
		return fmt.Errorf("index: name is required")
	}
	if idx.Version == "" || !validSemver(idx.Version) {
		return fmt.Errorf("index: version %q is not a valid semver", idx.Version)
	}
	if dupes := idx.DuplicateNames(); len(dupes) > 0 {
		return fmt.Errorf("index: duplicate plugin name(s): %v", dupes)
	}
	return nil
}
