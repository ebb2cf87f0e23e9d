package config

import (
	"fmt"
	"strings"

	"github.com/pyembed-labs/pyembed/internal/fetch"
	"github.com/pyembed-labs/pyembed/internal/logsink"
	"github.com/pyembed-labs/pyembed/internal/platform"
	"github.com/pyembed-labs/pyembed/internal/runner"
	"github.com/pyembed-labs/pyembed/internal/setup"
	"github.com/pyembed-labs/pyembed/internal/source"
)

// Settings is the resolved configuration.
type Settings struct {
	InstallPath   string         `mapstructure:"install_path"`
	DirectoryName string         `mapstructure:"directory_name"`
	Source        SourceSettings `mapstructure:"source"`
	Force         bool           `mapstructure:"force"`
	Layout        LayoutSettings `mapstructure:"layout"`
	BootstrapURL  string         `mapstructure:"bootstrap_url"`
	PatchMode     string         `mapstructure:"patch_mode"`
	LogLevel      string         `mapstructure:"log_level"`
}

// SourceSettings selects the installation source.
type SourceSettings struct {
	// Kind is "remote" or "bundled".
	Kind     string `mapstructure:"kind"`
	URL      string `mapstructure:"url"`
	Bundle   string `mapstructure:"bundle"`
	Resource string `mapstructure:"resource"`
	// Fetcher is "http" or "curl".
	Fetcher string `mapstructure:"fetcher"`
}

// LayoutSettings overrides runtime layout paths.
type LayoutSettings struct {
	Executable     string `mapstructure:"executable"`
	PackageManager string `mapstructure:"package_manager"`
}

// Settings decodes the store into a Settings value.
func (s *Store) Settings() (Settings, error) {
	var out Settings
	if err := s.v.Unmarshal(&out); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return out, nil
}

// InstallConfig converts every setting except the source into an installer
// configuration. Profiles supply their own source on top of it.
func (s Settings) InstallConfig() (setup.Config, error) {
	mode, err := setup.ParsePatchMode(s.PatchMode)
	if err != nil {
		return setup.Config{}, err
	}
	return setup.Config{
		InstallPath:   s.InstallPath,
		DirectoryName: s.DirectoryName,
		Layout: platform.Layout{
			Executable:     s.Layout.Executable,
			PackageManager: s.Layout.PackageManager,
		},
		BootstrapURL: s.BootstrapURL,
		PatchMode:    mode,
	}, nil
}

// SetupConfig converts the settings into an installer configuration. r runs
// the curl fetcher when source.fetcher is "curl"; progress receives download
// percentages for the HTTP fetcher.
func (s Settings) SetupConfig(r *runner.Runner, sink logsink.Sink, progress fetch.ProgressFunc) (setup.Config, error) {
	cfg, err := s.InstallConfig()
	if err != nil {
		return setup.Config{}, err
	}
	f, err := fetch.ByName(s.Source.Fetcher, r, sink)
	if err != nil {
		return setup.Config{}, err
	}

	spec := source.Spec{Force: s.Force, Fetcher: f, Progress: progress, Sink: sink}
	switch strings.ToLower(s.Source.Kind) {
	case "", "remote":
		spec.URL = s.Source.URL
	case "bundled":
		spec.BundleDir = s.Source.Bundle
		spec.Resource = s.Source.Resource
	default:
		return setup.Config{}, fmt.Errorf("unknown source kind %q (want remote or bundled)", s.Source.Kind)
	}
	cfg.Source, err = source.FromSpec(spec)
	if err != nil {
		return setup.Config{}, err
	}
	return cfg, nil
}
