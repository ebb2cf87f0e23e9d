package platform

import (
	"path/filepath"
	"runtime"
)

// Layout names the files and directories inside an installed runtime home.
// All paths are relative to the home and use forward slashes; Join resolves
// them for the host OS.
type Layout struct {
	// Executable is the interpreter binary whose presence marks the runtime as installed.
	Executable string
	// PackageManager is the entry point the bootstrap script creates.
	PackageManager string
	// LibDir receives archive-installed packages and the bootstrap script.
	LibDir string
	// SitePackagesDir receives packages installed by the package manager.
	SitePackagesDir string
	// ScriptsDir holds package-manager entry points.
	ScriptsDir string
	// ModuleMarker is the file that must exist inside a package directory.
	ModuleMarker string
}

// DefaultLayout returns the layout for the host OS.
func DefaultLayout() Layout {
	return LayoutFor(runtime.GOOS)
}

// LayoutFor returns the layout of an embeddable distribution built for goos.
func LayoutFor(goos string) Layout {
	if goos == "windows" {
		return Layout{
			Executable:      "python.exe",
			PackageManager:  "Scripts/pip.exe",
			LibDir:          "Lib",
			SitePackagesDir: "Lib/site-packages",
			ScriptsDir:      "Scripts",
			ModuleMarker:    "__init__.py",
		}
	}
	return Layout{
		Executable:      "bin/python3",
		PackageManager:  "bin/pip",
		LibDir:          "Lib",
		SitePackagesDir: "Lib/site-packages",
		ScriptsDir:      "bin",
		ModuleMarker:    "__init__.py",
	}
}

// WithDefaults fills empty fields from the host default layout.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()
	if l.Executable == "" {
		l.Executable = d.Executable
	}
	if l.PackageManager == "" {
		l.PackageManager = d.PackageManager
	}
	if l.LibDir == "" {
		l.LibDir = d.LibDir
	}
	if l.SitePackagesDir == "" {
		l.SitePackagesDir = d.SitePackagesDir
	}
	if l.ScriptsDir == "" {
		l.ScriptsDir = d.ScriptsDir
	}
	if l.ModuleMarker == "" {
		l.ModuleMarker = d.ModuleMarker
	}
	return l
}

// Join resolves a layout-relative path against home.
func Join(home, rel string) string {
	return filepath.Join(home, filepath.FromSlash(rel))
}
