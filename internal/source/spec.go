package source

import (
	"errors"
	"fmt"

	"github.com/pyembed-labs/pyembed/internal/fetch"
	"github.com/pyembed-labs/pyembed/internal/logsink"
)

// ErrNoSource is returned when neither a URL nor a bundled resource is configured.
var ErrNoSource = errors.New("no installation source configured")

// Spec describes a source in configuration terms.
type Spec struct {
	// URL selects a Remote source.
	URL string
	// BundleDir and Resource select a Bundled source read from a directory.
	BundleDir string
	Resource  string
	Force     bool
	// Fetcher is used by Remote. Nil uses an HTTP fetcher.
	Fetcher fetch.Fetcher
	// Progress receives Remote download percentages.
	Progress fetch.ProgressFunc
	Sink     logsink.Sink
}

// FromSpec builds the Source a Spec describes. Exactly one of URL and
// Resource must be set.
func FromSpec(s Spec) (Source, error) {
	switch {
	case s.URL != "" && s.Resource != "":
		return nil, fmt.Errorf("%w: both url %q and resource %q are set", ErrNoSource, s.URL, s.Resource)
	case s.URL != "":
		r := &Remote{URL: s.URL, Force: s.Force, Fetcher: s.Fetcher, Progress: s.Progress, Sink: s.Sink}
		if _, err := r.ArchiveFileName(); err != nil {
			return nil, err
		}
		return r, nil
	case s.Resource != "":
		if s.BundleDir == "" {
			return nil, &ResolutionError{Source: "bundled", Name: s.Resource, Err: fmt.Errorf("%w: no bundle directory", ErrResourceNotFound)}
		}
		return &Bundled{Bundle: NewDirBundle(s.BundleDir), ResourceName: s.Resource, Force: s.Force, Sink: s.Sink}, nil
	}
	return nil, ErrNoSource
}
