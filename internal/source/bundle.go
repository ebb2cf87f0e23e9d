package source

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Bundle is a set of named data entries shipped with the application, such
// as an embed.FS or a directory next to the executable.
type Bundle interface {
	// Name identifies the bundle in messages.
	Name() string
	// Entries lists entry identifiers in a stable order.
	Entries() ([]string, error)
	// Open returns the content of an entry.
	Open(entry string) (io.ReadCloser, error)
}

// FSBundle exposes the regular files of an fs.FS. Entries are listed in the
// lexical order of fs.WalkDir.
type FSBundle struct {
	name string
	fsys fs.FS
}

// NewFSBundle wraps fsys, e.g. an embed.FS holding runtime archives.
func NewFSBundle(name string, fsys fs.FS) *FSBundle {
	return &FSBundle{name: name, fsys: fsys}
}

// NewDirBundle exposes the files under dir.
func NewDirBundle(dir string) *FSBundle {
	return NewFSBundle(dir, os.DirFS(dir))
}

// Name implements Bundle.
func (b *FSBundle) Name() string { return b.name }

// Entries implements Bundle.
func (b *FSBundle) Entries() ([]string, error) {
	var entries []string
	err := fs.WalkDir(b.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			entries = append(entries, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing bundle %s: %w", b.name, err)
	}
	return entries, nil
}

// Open implements Bundle.
func (b *FSBundle) Open(entry string) (io.ReadCloser, error) {
	return b.fsys.Open(entry)
}

// ResolveEntry returns the first bundle entry, in Entries order, whose
// identifier contains name as a substring. Several entries may match; only
// the first is ever used.
func ResolveEntry(b Bundle, name string) (string, error) {
	if name == "" {
		return "", &ResolutionError{Source: "bundled", Name: name, Err: fmt.Errorf("%w: empty resource name", ErrResourceNotFound)}
	}
	entries, err := b.Entries()
	if err != nil {
		return "", &ResolutionError{Source: "bundled", Name: name, Err: err}
	}
	for _, e := range entries {
		if strings.Contains(e, name) {
			return e, nil
		}
	}
	return "", &ResolutionError{
		Source: "bundled",
		Name:   name,
		Err:    fmt.Errorf("%w in bundle %s", ErrResourceNotFound, b.Name()),
	}
}

// CopyEntry writes a bundle entry to dest. A failed copy removes dest.
func CopyEntry(b Bundle, entry, dest string) (err error) {
	rc, err := b.Open(entry)
	if err != nil {
		return fmt.Errorf("opening bundle entry %s: %w", entry, err)
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("copying bundle entry %s: %w", entry, err)
	}
	return nil
}
