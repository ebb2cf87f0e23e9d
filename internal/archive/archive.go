package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrCorrupt is returned when an archive cannot be read.
	ErrCorrupt = errors.New("archive is corrupt or unreadable")
	// ErrUnsafePath is returned for an entry that would land outside the destination.
	ErrUnsafePath = errors.New("archive entry escapes destination")
)

// Stats summarizes an extraction.
type Stats struct {
	Files int
	Bytes int64
}

// IsTarGz reports whether path names a gzip-compressed tarball.
func IsTarGz(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz")
}

// TrimExt removes a recognized archive extension from name.
func TrimExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".tar.gz", ".tgz", ".zip", ".whl"} {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Entries returns the slash-separated names of the regular files in the archive.
func Entries(path string) ([]string, error) {
	if IsTarGz(path) {
		return tarEntries(path)
	}
	return zipEntries(path)
}

// AllPresent reports whether every file in the archive already exists under destDir.
func AllPresent(path, destDir string) (bool, error) {
	names, err := Entries(path)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		target, err := safeJoin(destDir, name)
		if err != nil {
			return false, err
		}
		if _, err := os.Stat(target); err != nil {
			return false, nil
		}
	}
	return true, nil
}

// Extract unpacks the archive at path into destDir, overwriting existing
// files. ctx is checked between entries; a cancelled extraction leaves the
// files written so far in place.
func Extract(ctx context.Context, path, destDir string) (Stats, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return Stats{}, fmt.Errorf("creating destination %s: %w", destDir, err)
	}
	if IsTarGz(path) {
		return extractTarGz(ctx, path, destDir)
	}
	return extractZip(ctx, path, destDir)
}

func zipEntries(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening zip archive %s: %w", ErrCorrupt, path, err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, f.Name)
	}
	return names, nil
}

func extractZip(ctx context.Context, path, destDir string) (Stats, error) {
	var stats Stats

	r, err := zip.OpenReader(path)
	if err != nil {
		return stats, fmt.Errorf("%w: opening zip archive %s: %w", ErrCorrupt, path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return stats, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return stats, fmt.Errorf("creating directory %s: %w", target, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return stats, fmt.Errorf("%w: opening zip entry %s: %w", ErrCorrupt, f.Name, err)
		}
		n, err := writeFile(target, rc, f.Mode().Perm())
		rc.Close()
		if err != nil {
			return stats, err
		}
		stats.Files++
		stats.Bytes += n
	}
	return stats, nil
}

func tarEntries(path string) ([]string, error) {
	var names []string
	err := walkTar(path, func(hdr *tar.Header, _ io.Reader) error {
		if hdr.Typeflag == tar.TypeReg || hdr.Typeflag == tar.TypeSymlink {
			names = append(names, hdr.Name)
		}
		return nil
	})
	return names, err
}

func extractTarGz(ctx context.Context, path, destDir string) (Stats, error) {
	var stats Stats
	err := walkTar(path, func(hdr *tar.Header, body io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
		case tar.TypeReg:
			n, err := writeFile(target, body, os.FileMode(hdr.Mode).Perm())
			if err != nil {
				return err
			}
			stats.Files++
			stats.Bytes += n
		case tar.TypeSymlink:
			if err := writeSymlink(destDir, target, hdr.Linkname); err != nil {
				return err
			}
			stats.Files++
		}
		return nil
	})
	return stats, err
}

func walkTar(path string, fn func(*tar.Header, io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening archive %s: %w", ErrCorrupt, path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: creating gzip reader: %w", ErrCorrupt, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: reading tar entry: %w", ErrCorrupt, err)
		}
		if err := fn(hdr, tr); err != nil {
			return err
		}
	}
}

func writeFile(target string, r io.Reader, perm os.FileMode) (int64, error) {
	if perm == 0 {
		perm = 0644
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, fmt.Errorf("creating directory for %s: %w", target, err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return 0, fmt.Errorf("creating file %s: %w", target, err)
	}
	n, err := io.Copy(out, r)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("%w: extracting %s: %w", ErrCorrupt, target, err)
	}
	return n, out.Close()
}

func writeSymlink(destDir, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}
	if !within(destDir, resolved) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, target, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}
	os.Remove(target)
	return os.Symlink(linkname, target)
}

// safeJoin resolves an archive entry name under destDir and rejects names
// that would escape it.
func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !within(destDir, target) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
