package source

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/pyembed-labs/pyembed/internal/logsink"
)

// Bundled copies the archive out of an application bundle.
type Bundled struct {
	// Bundle holds the archive.
	Bundle Bundle
	// ResourceName is the archive name to look for, e.g. "python-3.10.0-embed-amd64.zip".
	// It is matched as a substring against the bundle's entry identifiers.
	ResourceName string
	// Force re-copies even when the archive already exists.
	Force bool
	// Sink receives progress lines. Nil discards them.
	Sink logsink.Sink
}

// ArchiveFileName returns the base name of ResourceName.
func (b *Bundled) ArchiveFileName() (string, error) {
	if b.ResourceName == "" {
		return "", &ResolutionError{Source: "bundled", Name: b.ResourceName, Err: fmt.Errorf("%w: empty resource name", ErrResourceNotFound)}
	}
	return path.Base(filepath.ToSlash(b.ResourceName)), nil
}

// RetrieveArchive copies the matching bundle entry to destDir/ArchiveFileName().
func (b *Bundled) RetrieveArchive(_ context.Context, destDir string) (string, error) {
	name, err := b.ArchiveFileName()
	if err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, name)

	if !b.Force && fileExists(dest) {
		logsink.Debug(b.Sink, "archive already present, skipping copy", "path", dest)
		return dest, nil
	}

	if b.Bundle == nil {
		return "", &ResolutionError{Source: "bundled", Name: b.ResourceName, Err: fmt.Errorf("%w: no bundle configured", ErrResourceNotFound)}
	}
	entry, err := ResolveEntry(b.Bundle, b.ResourceName)
	if err != nil {
		logsink.Error(b.Sink, "resource not found in bundle", "resource", b.ResourceName, "bundle", b.Bundle.Name())
		return "", err
	}

	logsink.Info(b.Sink, "copying bundled archive", "entry", entry, "dest", dest)
	if err := CopyEntry(b.Bundle, entry, dest); err != nil {
		return "", err
	}
	return dest, nil
}
