package profile

// Profile is a declarative install plan for one runtime.
type Profile struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Bundle is a directory holding bundled runtime and package archives.
	// Relative paths are resolved against the profile file's directory.
	Bundle         string    `yaml:"bundle,omitempty" json:"bundle,omitempty"`
	Runtime        Runtime   `yaml:"runtime" json:"runtime"`
	PackageManager bool      `yaml:"package_manager,omitempty" json:"package_manager,omitempty"`
	Packages       []Package `yaml:"packages,omitempty" json:"packages,omitempty"`
}

// Runtime selects the runtime archive. Exactly one of URL and Resource is set.
type Runtime struct {
	URL      string `yaml:"url,omitempty" json:"url,omitempty"`
	Resource string `yaml:"resource,omitempty" json:"resource,omitempty"`
	// Fetcher is "http" (default) or "curl".
	Fetcher string `yaml:"fetcher,omitempty" json:"fetcher,omitempty"`
	// Requires is a semver constraint on the runtime version, e.g. ">= 3.8, < 3.13".
	Requires      string `yaml:"requires,omitempty" json:"requires,omitempty"`
	DirectoryName string `yaml:"directory_name,omitempty" json:"directory_name,omitempty"`
	Force         bool   `yaml:"force,omitempty" json:"force,omitempty"`
}

// Package is one package to install. Exactly one of Archive, Bundled and
// Module is set.
type Package struct {
	// Archive is a wheel-style archive path.
	Archive string `yaml:"archive,omitempty" json:"archive,omitempty"`
	// Bundled is a resource name looked up in the profile's bundle.
	Bundled string `yaml:"bundled,omitempty" json:"bundled,omitempty"`
	// Module is installed with the package manager.
	Module  string `yaml:"module,omitempty" json:"module,omitempty"`
	Version string `yaml:"version,omitempty" json:"version,omitempty"`
	// ViaManager installs a bundled archive with the package manager
	// instead of unpacking it.
	ViaManager bool `yaml:"via_manager,omitempty" json:"via_manager,omitempty"`
	Force      bool `yaml:"force,omitempty" json:"force,omitempty"`
}

// Kind names which field of the package is set.
func (p Package) Kind() string {
	switch {
	case p.Archive != "":
		return "archive"
	case p.Bundled != "":
		return "bundled"
	case p.Module != "":
		return "module"
	}
	return ""
}

// Target returns the value of the field Kind names.
func (p Package) Target() string {
	switch p.Kind() {
	case "archive":
		return p.Archive
	case "bundled":
		return p.Bundled
	}
	return p.Module
}
