package setup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pyembed-labs/pyembed/internal/source"
	"github.com/pyembed-labs/pyembed/internal/testutil"
)

var sixWheel = map[string]string{
	"six/__init__.py":               "",
	"six-1.15.0.dist-info/METADATA": "Name: six",
}

func TestModuleName(t *testing.T) {
	tests := []struct {
		file    string
		want    string
		wantErr bool
	}{
		{"numpy-1.16.3-cp37-cp37m-win_amd64.whl", "numpy", false},
		{"/tmp/wheels/six-1.15.0-py2.py3-none-any.whl", "six", false},
		{"six.whl", "six", false},
		{"ruamel.yaml-0.17.0.zip", "ruamel.yaml", false},
		{"-1.0.whl", "", true},
		{"", "", true},
		{" -1.0.whl", "", true},
		{"a b-1.0.whl", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := ModuleName(tt.file)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("ModuleName(%q) error = %v, want ErrInvalidArgument", tt.file, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ModuleName(%q) = (%q, %v), want %q", tt.file, got, err, tt.want)
			}
		})
	}
}

func TestInstallPackageArchive(t *testing.T) {
	ext := &spyExtractor{}
	inst := newTestInstaller(t, newSpySource(t), WithExtractor(ext))
	installRuntime(t, inst)
	wheel := testutil.WriteZip(t, filepath.Join(t.TempDir(), "six-1.15.0-py2.py3-none-any.whl"), sixWheel)
	ctx := context.Background()

	out, err := inst.InstallPackageArchive(ctx, wheel, false)
	if err != nil || !out.OK() || out.Skipped {
		t.Fatalf("install: out=%+v err=%v", out, err)
	}
	if out.Module != "six" {
		t.Errorf("Module = %q", out.Module)
	}
	if !inst.IsModuleInstalled("six") {
		t.Error("six not installed")
	}
	pth := readFile(t, filepath.Join(inst.Home(), "python37._pth"))
	if strings.Count(pth, "./Lib\n") != 1 {
		t.Errorf("library directory not referenced once:\n%s", pth)
	}

	// The module directory exists now, so a second install is skipped outright.
	out, _ = inst.InstallPackageArchive(ctx, wheel, false)
	if !out.Skipped {
		t.Error("second install not skipped")
	}
	if ext.checks != 1 || ext.extracts != 1 {
		t.Errorf("checks=%d extracts=%d after skip, want 1 and 1", ext.checks, ext.extracts)
	}

	// Forced, the directory check is bypassed but every file is present.
	out, _ = inst.InstallPackageArchive(ctx, wheel, true)
	if !out.OK() || out.Skipped {
		t.Errorf("forced install: %+v", out)
	}
	if ext.extracts != 1 {
		t.Errorf("forced install re-extracted, extracts = %d", ext.extracts)
	}
	pth = readFile(t, filepath.Join(inst.Home(), "python37._pth"))
	if strings.Count(pth, "./Lib\n") != 1 {
		t.Errorf("library directory referenced more than once:\n%s", pth)
	}
}

func TestInstallPackageArchive_AllFilesPresentSkipsExtraction(t *testing.T) {
	ext := &spyExtractor{}
	inst := newTestInstaller(t, newSpySource(t), WithExtractor(ext))
	installRuntime(t, inst)
	wheel := testutil.WriteZip(t, filepath.Join(t.TempDir(), "six-1.15.0-py2.py3-none-any.whl"), sixWheel)

	lib := filepath.Join(inst.Home(), "Lib")
	for name := range sixWheel {
		testutil.WriteFile(t, filepath.Join(lib, filepath.FromSlash(name)), "edited by hand")
	}

	for _, force := range []bool{false, true} {
		out, err := inst.InstallPackageArchive(context.Background(), wheel, force)
		if err != nil || !out.OK() {
			t.Fatalf("force=%v: out=%+v err=%v", force, out, err)
		}
	}
	if ext.extracts != 0 {
		t.Errorf("extractor ran %d times over a fully present package", ext.extracts)
	}
	if got := readFile(t, filepath.Join(lib, "six", "__init__.py")); got != "edited by hand" {
		t.Errorf("manually edited file clobbered: %q", got)
	}
}

func TestInstallPackageArchive_AllFilesPresentWithoutModuleDir(t *testing.T) {
	ext := &spyExtractor{}
	inst := newTestInstaller(t, newSpySource(t), WithExtractor(ext))
	installRuntime(t, inst)
	wheel := testutil.WriteZip(t, filepath.Join(t.TempDir(), "tool-2.0.whl"), map[string]string{
		"tool.py": "print()",
	})
	testutil.WriteFile(t, filepath.Join(inst.Home(), "Lib", "tool.py"), "print()")

	out, err := inst.InstallPackageArchive(context.Background(), wheel, false)
	if err != nil || !out.OK() || out.Skipped {
		t.Fatalf("out=%+v err=%v", out, err)
	}
	if ext.checks != 1 || ext.extracts != 0 {
		t.Errorf("checks=%d extracts=%d, want 1 and 0", ext.checks, ext.extracts)
	}
}

func TestInstallPackageArchive_InvalidNameIsSynchronous(t *testing.T) {
	ext := &spyExtractor{}
	inst := newTestInstaller(t, newSpySource(t), WithExtractor(ext))

	_, err := inst.InstallPackageArchive(context.Background(), "/tmp/-1.0.whl", false)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if ext.checks+ext.extracts != 0 {
		t.Error("extractor touched for an invalid name")
	}
}

func TestInstallPackageArchive_CorruptArchiveIsReported(t *testing.T) {
	inst := newTestInstaller(t, newSpySource(t))
	installRuntime(t, inst)
	bad := testutil.WriteFile(t, filepath.Join(t.TempDir(), "bad-1.0.whl"), "garbage")

	out, err := inst.InstallPackageArchive(context.Background(), bad, false)
	if err != nil {
		t.Fatalf("corrupt archive returned synchronously: %v", err)
	}
	var se *StageError
	if !errors.As(out.Err, &se) || se.Stage != StageExtract {
		t.Errorf("Outcome.Err = %v, want extract stage error", out.Err)
	}
}

func TestInstallBundledPackage(t *testing.T) {
	bundle := source.NewFSBundle("app", fstest.MapFS{
		"wheels/six-1.15.0-py2.py3-none-any.whl": {Data: testutil.ZipBytes(t, sixWheel)},
	})
	inst := newTestInstaller(t, newSpySource(t))
	installRuntime(t, inst)

	out, err := inst.InstallBundledPackage(context.Background(), bundle, "six-1.15.0", false)
	if err != nil || !out.OK() {
		t.Fatalf("out=%+v err=%v", out, err)
	}
	if !inst.IsModuleInstalled("six") {
		t.Error("six not installed")
	}
	copied := filepath.Join(inst.Home(), "Lib", "six-1.15.0-py2.py3-none-any.whl")
	if _, err := os.Stat(copied); !os.IsNotExist(err) {
		t.Errorf("copied archive left behind: %v", err)
	}

	out, _ = inst.InstallBundledPackage(context.Background(), bundle, "six-1.15.0", false)
	if !out.Skipped {
		t.Error("second bundled install not skipped")
	}
}

func TestInstallBundledPackage_NotFound(t *testing.T) {
	bundle := source.NewFSBundle("app", fstest.MapFS{"wheels/six-1.15.0.whl": {Data: []byte("x")}})
	inst := newTestInstaller(t, newSpySource(t))

	_, err := inst.InstallBundledPackage(context.Background(), bundle, "numpy-1.16.3", false)
	if !errors.Is(err, source.ErrResourceNotFound) {
		t.Errorf("expected ErrResourceNotFound, got %v", err)
	}
}

func TestIsModuleInstalled(t *testing.T) {
	inst := newTestInstaller(t, newSpySource(t))
	testutil.WriteFile(t, filepath.Join(inst.Home(), "Lib", "site-packages", "requests", "__init__.py"), "")

	if inst.IsModuleInstalled("requests") {
		t.Error("module reported installed without a runtime")
	}
	installRuntime(t, inst)
	if !inst.IsModuleInstalled("requests") {
		t.Error("site-packages module not detected")
	}
	if err := os.MkdirAll(filepath.Join(inst.Home(), "Lib", "empty"), 0755); err != nil {
		t.Fatal(err)
	}
	if inst.IsModuleInstalled("empty") {
		t.Error("directory without marker reported installed")
	}
}
