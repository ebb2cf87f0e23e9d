package fetch

import (
	"fmt"
	"strings"

	"github.com/pyembed-labs/pyembed/internal/branding"
	"github.com/pyembed-labs/pyembed/internal/logsink"
	"github.com/pyembed-labs/pyembed/internal/runner"
)

// ByName returns the fetcher configured by name: "http" (or empty) for the
// streaming HTTP fetcher, "curl" for the command-line tool run through r.
func ByName(name string, r *runner.Runner, sink logsink.Sink) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "http":
		return NewBranded(sink), nil
	case "curl":
		if r == nil {
			r = runner.New(runner.WithSink(sink))
		}
		return NewCommand(r), nil
	}
	return nil, fmt.Errorf("unknown fetcher %q (want http or curl)", name)
}

// NewBranded returns an HTTP fetcher that identifies itself by the CLI name.
func NewBranded(sink logsink.Sink) *HTTPFetcher {
	return New(WithSink(sink), WithUserAgent(branding.CLIName()+"-fetch"))
}
