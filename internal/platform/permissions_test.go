package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestModeChanges(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mode bits are not meaningful on Windows")
	}
	tests := []struct {
		name  string
		dir   bool
		start os.FileMode
		apply func(path string) error
		want  os.FileMode
	}{
		{"chmod file", false, 0644, func(p string) error { return Chmod(p, 0600) }, 0600},
		{"chmod dir", true, 0755, func(p string) error { return Chmod(p, 0700) }, 0700},
		{"executable readable by all", false, 0644, MakeExecutable, 0755},
		{"executable owner only", false, 0600, MakeExecutable, 0700},
		{"already executable", false, 0755, MakeExecutable, 0755},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "python3")
			var err error
			if tt.dir {
				err = os.Mkdir(path, tt.start)
			} else {
				err = os.WriteFile(path, []byte("#!/bin/sh\n"), tt.start)
			}
			if err != nil {
				t.Fatal(err)
			}
			// Undo umask so the starting mode is exact.
			if err := os.Chmod(path, tt.start); err != nil {
				t.Fatal(err)
			}
			if err := tt.apply(path); err != nil {
				t.Fatalf("apply failed: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if perm := info.Mode().Perm(); perm != tt.want {
				t.Errorf("permissions = %o, want %o", perm, tt.want)
			}
		})
	}
}

func TestMakeExecutable_Missing(t *testing.T) {
	if err := MakeExecutable(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing file")
	}
}
