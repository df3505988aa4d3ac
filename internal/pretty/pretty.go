// Package pretty runs an external formatter over a written file.
package pretty

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Run executes argv with path appended as the last argument.  An empty argv
// does nothing.
func Run(ctx context.Context, argv []string, path string) error {
	if len(argv) == 0 {
		return nil
	}
	args := append(append([]string{}, argv[1:]...), path)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := bytes.TrimSpace(out); len(msg) > 0 {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
