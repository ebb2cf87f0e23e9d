package setup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnableSiteImport(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"uncomments marker", []string{"python37.zip", ".", "#import site"}, []string{"python37.zip", ".", "import site"}},
		{"uncomments spaced marker", []string{".", "# import site"}, []string{".", "import site"}},
		{"already enabled", []string{".", "import site", "./Lib"}, []string{".", "import site", "./Lib"}},
		{"appends when absent", []string{"python37.zip", "."}, []string{"python37.zip", ".", "import site"}},
		{"empty file", nil, []string{"import site"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enableSiteImport(tt.in)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("enableSiteImport(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRewriteLines_IsIdempotent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "python37._pth")
	if err := os.WriteFile(file, []byte(embedPth), 0644); err != nil {
		t.Fatal(err)
	}

	changed, err := rewriteLines(file, enableSiteImport)
	if err != nil || !changed {
		t.Fatalf("first rewrite: changed=%v err=%v", changed, err)
	}
	first := readFile(t, file)

	changed, err = rewriteLines(file, enableSiteImport)
	if err != nil || changed {
		t.Fatalf("second rewrite: changed=%v err=%v", changed, err)
	}
	if second := readFile(t, file); second != first {
		t.Errorf("content changed on second rewrite:\n%s\nvs\n%s", first, second)
	}
}

func TestRewriteLines_LeavesCRLFFileAloneWhenUnchanged(t *testing.T) {
	file := filepath.Join(t.TempDir(), "python37._pth")
	orig := "python37.zip\r\n.\r\nimport site\r\n"
	if err := os.WriteFile(file, []byte(orig), 0644); err != nil {
		t.Fatal(err)
	}

	changed, err := rewriteLines(file, enableSiteImport)
	if err != nil || changed {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	if got := readFile(t, file); got != orig {
		t.Errorf("file rewritten: %q", got)
	}
}

func TestRewriteLines_MissingFile(t *testing.T) {
	_, err := rewriteLines(filepath.Join(t.TempDir(), "absent._pth"), enableSiteImport)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestAppendOnce(t *testing.T) {
	lines := appendOnce([]string{".", "import site"}, "./Lib")
	lines = appendOnce(lines, "./Lib")
	if strings.Join(lines, "|") != ".|import site|./Lib" {
		t.Errorf("appendOnce = %q", lines)
	}
}
