// Package gitfetch shallow-clones a plugin's repository into a
// destination directory, the only network transport the validator uses.
package gitfetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Clone runs `git clone --depth 1 url dest`, bounded by deadline. On
// timeout or failure the destination directory (if partially created) is
// removed and an error is returned; the caller records it as a Fetch
// error and moves on to the next plugin.
func Clone(ctx context.Context, url, dest string, deadline time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dest)
	out, err := cmd.CombinedOutput()
	if err != nil {
		os.RemoveAll(dest)
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("clone %s: timed out after %s", url, deadline)
		}
		return fmt.Errorf("clone %s: %w: %s", url, err, trimOutput(out))
	}
	return nil
}

func trimOutput(out []byte) string {
	const maxLen = 500
	s := string(out)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
