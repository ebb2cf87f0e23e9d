package setup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pyembed-labs/pyembed/internal/archive"
	"github.com/pyembed-labs/pyembed/internal/fetch"
	"github.com/pyembed-labs/pyembed/internal/platform"
	"github.com/pyembed-labs/pyembed/internal/testutil"
)

const embedPth = "python37.zip\n.\n\n# Uncomment to run site.main() automatically\n#import site\n"

// runtimeFiles is the content of a minimal embeddable distribution.
var runtimeFiles = map[string]string{
	"python.exe":    "interpreter",
	"python37.zip":  "stdlib",
	"python37._pth": embedPth,
}

// spySource writes a zip built from files into the destination and counts calls.
type spySource struct {
	t     *testing.T
	name  string
	files map[string]string
	raw   string
	err   error
	empty bool
	calls int
}

func (s *spySource) ArchiveFileName() (string, error) { return s.name, nil }

func (s *spySource) RetrieveArchive(_ context.Context, destDir string) (string, error) {
	s.calls++
	switch {
	case s.err != nil:
		return "", s.err
	case s.empty:
		return "", nil
	case s.raw != "":
		return testutil.WriteFile(s.t, filepath.Join(destDir, s.name), s.raw), nil
	}
	return testutil.WriteZip(s.t, filepath.Join(destDir, s.name), s.files), nil
}

// spyExtractor delegates to package archive and counts calls.
type spyExtractor struct {
	extracts int
	checks   int
	err      error
}

func (s *spyExtractor) Extract(ctx context.Context, archivePath, destDir string) (archive.Stats, error) {
	s.extracts++
	if s.err != nil {
		return archive.Stats{}, s.err
	}
	return archive.Extract(ctx, archivePath, destDir)
}

func (s *spyExtractor) AllPresent(archivePath, destDir string) (bool, error) {
	s.checks++
	return archive.AllPresent(archivePath, destDir)
}

// fetchFunc adapts a function to fetch.Fetcher.
type fetchFunc func(ctx context.Context, url, dest string, progress fetch.ProgressFunc) error

func (f fetchFunc) Fetch(ctx context.Context, url, dest string, progress fetch.ProgressFunc) error {
	return f(ctx, url, dest, progress)
}

func newSpySource(t *testing.T) *spySource {
	return &spySource{t: t, name: "python-3.7.3-embed-amd64.zip", files: runtimeFiles}
}

// newTestInstaller builds an Installer with the Windows layout, whose paths
// are plain files on every host.
func newTestInstaller(t *testing.T, src *spySource, opts ...Option) *Installer {
	t.Helper()
	cfg := Config{
		InstallPath: t.TempDir(),
		Source:      src,
		Layout:      platform.LayoutFor("windows"),
	}
	inst, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return inst
}

// installRuntime places an already-installed runtime into the home.
func installRuntime(t *testing.T, inst *Installer) {
	t.Helper()
	for name, content := range runtimeFiles {
		testutil.WriteFile(t, filepath.Join(inst.Home(), name), content)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
