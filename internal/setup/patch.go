package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/pyembed-labs/pyembed/internal/logsink"
	"github.com/pyembed-labs/pyembed/internal/source"
)

const (
	siteImportLine   = "import site"
	siteImportMarker = "#import site"
)

// pthPath returns the path configuration file for tag.
func (i *Installer) pthPath(tag string) string {
	return i.path(source.PthFileName(tag))
}

// patchPth makes the path configuration file allow site imports.
func (i *Installer) patchPth(tag string) error {
	pth := i.pthPath(tag)

	if i.cfg.PatchMode == PatchDelete {
		err := os.Remove(pth)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("removing %s: %w", pth, err)
		}
		logsink.Info(i.sink, "removed path configuration file", "file", pth)
		return nil
	}

	changed, err := rewriteLines(pth, enableSiteImport)
	if err != nil {
		return err
	}
	if changed {
		logsink.Info(i.sink, "enabled site imports", "file", pth)
	}
	return nil
}

// referenceLibDir appends the library directory to the path configuration
// file once. A missing file (unknown tag or delete mode) needs no reference.
func (i *Installer) referenceLibDir() error {
	tag, ok := i.ref.VersionTag()
	if !ok {
		return nil
	}
	pth := i.pthPath(tag)
	if !fileExists(pth) {
		return nil
	}
	entry := "./" + path.Clean(i.layout.LibDir)
	changed, err := rewriteLines(pth, func(lines []string) []string {
		return appendOnce(lines, entry)
	})
	if err != nil {
		return err
	}
	if changed {
		logsink.Debug(i.sink, "referenced library directory", "file", pth, "entry", entry)
	}
	return nil
}

// enableSiteImport uncomments the "#import site" marker or appends the import
// line. Lines that already enable it are left alone.
func enableSiteImport(lines []string) []string {
	if hasLine(lines, siteImportLine) {
		return lines
	}
	for idx, l := range lines {
		t := strings.TrimSpace(l)
		if t == siteImportMarker || t == "# "+siteImportLine {
			out := append([]string(nil), lines...)
			out[idx] = siteImportLine
			return out
		}
	}
	return append(lines, siteImportLine)
}

func appendOnce(lines []string, entry string) []string {
	if hasLine(lines, entry) {
		return lines
	}
	return append(lines, entry)
}

// rewriteLines applies edit to the lines of file and writes the result only
// when the content changed.
func rewriteLines(file string, edit func([]string) []string) (bool, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", file, err)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		lines = nil
	}

	before := strings.Join(lines, "\n") + "\n"
	updated := strings.Join(edit(lines), "\n") + "\n"
	if updated == before {
		return false, nil
	}
	info, err := os.Stat(file)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", file, err)
	}
	if err := os.WriteFile(file, []byte(updated), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", file, err)
	}
	return true, nil
}
