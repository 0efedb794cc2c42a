package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Scope owns the run-level temporary directory tree. It is a scoped
// acquisition type: NewRoot creates the root, and Close removes it
// unconditionally, so the caller can defer Close immediately after
// creation and be guaranteed cleanup on every exit path, panics
// included once recovered at the pipeline boundary.
type Scope struct {
	root string
}

// NewRoot creates a fresh run-level temp directory under base, named with
// a v4 UUID suffix so concurrent runs sharing the same base never
// collide.
func NewRoot(base string) (*Scope, error) {
	dir := filepath.Join(base, "pluginguard-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run root: %w", err)
	}
	return &Scope{root: dir}, nil
}

// Root returns the run-level temp directory path.
func (s *Scope) Root() string { return s.root }

// Close removes the entire run-level temp directory tree.
func (s *Scope) Close() error {
	return os.RemoveAll(s.root)
}

// Claim reserves a per-plugin subdirectory, sanitizing name so that
// slashes and colons in a plugin name can never escape the run root.
func (s *Scope) Claim(name string) (*Claim, error) {
	safe := sanitize(name)
	dir := filepath.Join(s.root, safe)
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("claim %s: %w", name, err)
	}
	return &Claim{dir: dir}, nil
}

// Claim is a per-plugin temp directory, individually removable
// independent of the run root's lifetime.
type Claim struct {
	dir string
}

// Dir is the claimed directory path. It does not exist until something
// (e.g. git clone) creates it.
func (c *Claim) Dir() string { return c.dir }

// Close removes the claimed directory if it was created.
func (c *Claim) Close() error {
	return os.RemoveAll(c.dir)
}

func sanitize(name string) string {
	r := strings.NewReplacer("/", "_", ":", "_", "\\", "_")
	return r.Replace(name)
}
