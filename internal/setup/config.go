package setup

import (
	"fmt"
	"strings"

	"github.com/pyembed-labs/pyembed/internal/platform"
	"github.com/pyembed-labs/pyembed/internal/source"
)

// PatchMode selects how the path configuration file is made to allow
// package imports.
type PatchMode string

const (
	// PatchRewrite enables "import site" in place and keeps the file.
	PatchRewrite PatchMode = "rewrite"
	// PatchDelete removes the file entirely.
	PatchDelete PatchMode = "delete"
)

// ParsePatchMode accepts "rewrite", "delete" or "" (rewrite).
func ParsePatchMode(s string) (PatchMode, error) {
	switch PatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", PatchRewrite:
		return PatchRewrite, nil
	case PatchDelete:
		return PatchDelete, nil
	}
	return "", fmt.Errorf("%w: unknown patch mode %q", ErrInvalidArgument, s)
}

// Config is everything an Installer needs. It is copied into the Installer
// and never mutated afterwards.
type Config struct {
	// InstallPath is the parent directory of the runtime home. Archives are
	// retrieved into it.
	InstallPath string
	// DirectoryName overrides the runtime home directory name. Empty uses the
	// source's distribution name.
	DirectoryName string
	// Source obtains the runtime archive.
	Source source.Source
	// Layout names files inside the home. Empty fields take host defaults.
	Layout platform.Layout
	// BootstrapURL is the package manager bootstrap script.
	BootstrapURL string
	// PatchMode selects how the path configuration file is patched.
	PatchMode PatchMode
}

func (c Config) validate() error {
	if strings.TrimSpace(c.InstallPath) == "" {
		return fmt.Errorf("%w: install path is empty", ErrInvalidArgument)
	}
	if c.Source == nil {
		return fmt.Errorf("%w: no installation source", ErrInvalidArgument)
	}
	if c.DirectoryName != "" && strings.ContainsAny(c.DirectoryName, `/\`) {
		return fmt.Errorf("%w: directory name %q contains a path separator", ErrInvalidArgument, c.DirectoryName)
	}
	return nil
}
