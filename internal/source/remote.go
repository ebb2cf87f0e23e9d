package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/pyembed-labs/pyembed/internal/fetch"
	"github.com/pyembed-labs/pyembed/internal/logsink"
)

// Remote downloads the archive from URL.
type Remote struct {
	// URL is the archive location, e.g.
	// https://www.python.org/ftp/python/3.7.3/python-3.7.3-embed-amd64.zip
	URL string
	// Force re-downloads even when the archive already exists.
	Force bool
	// Fetcher performs the transfer. Nil uses fetch.NewBranded.
	Fetcher fetch.Fetcher
	// Progress, if set, receives download percentages.
	Progress fetch.ProgressFunc
	// Sink receives progress lines. Nil discards them.
	Sink logsink.Sink
}

// ArchiveFileName returns the last path segment of URL.
func (r *Remote) ArchiveFileName() (string, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", &ResolutionError{Source: "remote", Name: r.URL, Err: fmt.Errorf("%w: %w", ErrInvalidURL, err)}
	}
	name := path.Base(u.Path)
	if u.Path == "" || name == "/" || name == "." {
		return "", &ResolutionError{Source: "remote", Name: r.URL, Err: fmt.Errorf("%w: no file name in path", ErrInvalidURL)}
	}
	return name, nil
}

// RetrieveArchive downloads the archive to destDir/ArchiveFileName().
func (r *Remote) RetrieveArchive(ctx context.Context, destDir string) (string, error) {
	name, err := r.ArchiveFileName()
	if err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, name)

	if !r.Force && fileExists(dest) {
		logsink.Debug(r.Sink, "archive already present, skipping download", "path", dest)
		return dest, nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", destDir, err)
	}

	f := r.Fetcher
	if f == nil {
		f = fetch.NewBranded(r.Sink)
	}
	if err := f.Fetch(ctx, r.URL, dest, r.Progress); err != nil {
		return "", err
	}
	return dest, nil
}
