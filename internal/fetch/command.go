package fetch

import (
	"context"
	"fmt"
	"os"

	"github.com/pyembed-labs/pyembed/internal/runner"
)

// CommandFetcher downloads by running curl through a runner.Runner. It never
// reports progress.
type CommandFetcher struct {
	runner *runner.Runner
	tool   string
}

// NewCommand creates a CommandFetcher that runs curl.
func NewCommand(r *runner.Runner) *CommandFetcher {
	return &CommandFetcher{runner: r, tool: "curl"}
}

// Fetch runs `curl -fsSL <url> -o <dest>`. The runner already logs the
// tool's own output; a partial file left by a failed run is removed.
func (c *CommandFetcher) Fetch(ctx context.Context, url, dest string, _ ProgressFunc) error {
	line := fmt.Sprintf("%s -fsSL %s -o %s", c.tool, c.runner.Quote(url), c.runner.Quote(dest))
	res := c.runner.Run(ctx, line)

	switch {
	case res.Cancelled:
		os.Remove(dest)
		return fmt.Errorf("%w: %s", ErrCancelled, url)
	case res.Err != nil:
		os.Remove(dest)
		return fmt.Errorf("%w: running %s: %w", ErrFetchFailed, c.tool, res.Err)
	case res.ExitCode != 0:
		os.Remove(dest)
		return fmt.Errorf("%w: %s exited with code %d for %s", ErrFetchFailed, c.tool, res.ExitCode, url)
	}

	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("%w: %s produced no file: %w", ErrFetchFailed, c.tool, err)
	}
	return nil
}
