package source

import (
	"context"
	"os"
)

// Source obtains a runtime archive.
type Source interface {
	// RetrieveArchive places the archive in destDir and returns its path.
	RetrieveArchive(ctx context.Context, destDir string) (string, error)
	// ArchiveFileName returns the base name of the archive.
	ArchiveFileName() (string, error)
}

// Describe returns the Ref for a source's archive.
func Describe(s Source) (Ref, error) {
	name, err := s.ArchiveFileName()
	if err != nil {
		return Ref{}, err
	}
	return NewRef(name), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
