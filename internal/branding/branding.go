// Package branding provides compile-time identity values for the CLI.
//
// Values come from branding.yaml, which //go:embed bakes into the binary.
// Forks that ship a different runtime or product name only edit that file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName           string `yaml:"cli_name"`
	DisplayName       string `yaml:"display_name"`
	Description       string `yaml:"description"`
	HomeDir           string `yaml:"home_dir"`
	EnvPrefix         string `yaml:"env_prefix"`
	GoModule          string `yaml:"go_module"`
	DefaultRuntimeURL string `yaml:"default_runtime_url"`
	BootstrapURL      string `yaml:"bootstrap_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:           "pyembed",
			DisplayName:       "PyEmbed",
			Description:       "Bootstrap an embedded Python runtime and its packages",
			HomeDir:           ".pyembed",
			EnvPrefix:         "PYEMBED",
			GoModule:          "github.com/pyembed-labs/pyembed",
			DefaultRuntimeURL: "https://www.python.org/ftp/python/3.7.3/python-3.7.3-embed-amd64.zip",
			BootstrapURL:      "https://bootstrap.pypa.io/get-pip.py",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "pyembed").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".pyembed").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "PYEMBED").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// DefaultRuntimeURL returns the runtime archive downloaded when no source is configured.
func DefaultRuntimeURL() string { load(); return defaults.DefaultRuntimeURL }

// BootstrapURL returns the location of the package-manager bootstrap script.
func BootstrapURL() string { load(); return defaults.BootstrapURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "PYEMBED_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
