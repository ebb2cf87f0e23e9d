package setup

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pyembed-labs/pyembed/internal/archive"
	"github.com/pyembed-labs/pyembed/internal/logsink"
	"github.com/pyembed-labs/pyembed/internal/runner"
	"github.com/pyembed-labs/pyembed/internal/source"
)

// bootstrapScript is the file name the bootstrap script is saved under in
// the library directory.
const bootstrapScript = "get-pip.py"

var (
	moduleNamePattern    = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.]*$`)
	moduleVersionPattern = regexp.MustCompile(`^[A-Za-z0-9_.!+*-]+$`)
)

// ModuleName derives a package name from an archive file name: the text
// before the first "-", e.g. "numpy" from "numpy-1.16.3-cp37-cp37m-win_amd64.whl".
func ModuleName(fileName string) (string, error) {
	base := archive.TrimExt(path.Base(filepath.ToSlash(fileName)))
	name, _, _ := strings.Cut(base, "-")
	name = strings.TrimSpace(name)
	if !validModule(name) {
		return "", fmt.Errorf("%w: file name %q does not start with a valid module name", ErrInvalidArgument, fileName)
	}
	return name, nil
}

func validModule(name string) bool {
	return moduleNamePattern.MatchString(name) && !strings.Contains(name, "..")
}

// libDir returns the library directory, creating it if needed.
func (i *Installer) libDir() (string, error) {
	lib := i.path(i.layout.LibDir)
	if err := os.MkdirAll(lib, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", lib, err)
	}
	return lib, nil
}

// InstallPackageArchive installs a wheel-style archive by unpacking it into
// the library directory. It is skipped when a directory named after the
// module already exists (unless force), and extraction is skipped whenever
// every archive entry is already on disk, even under force.
//
// Only a malformed archive file name is returned as an error; every other
// failure is logged and carried in the Outcome.
func (i *Installer) InstallPackageArchive(ctx context.Context, archivePath string, force bool) (Outcome, error) {
	module, err := ModuleName(archivePath)
	if err != nil {
		return Outcome{}, err
	}
	i.op.Lock()
	defer i.op.Unlock()
	return i.installArchive(ctx, module, archivePath, force), nil
}

func (i *Installer) installArchive(ctx context.Context, module, archivePath string, force bool) Outcome {
	out := Outcome{Module: module}
	lib, err := i.libDir()
	if err != nil {
		logsink.Error(i.sink, "cannot prepare library directory", "error", err)
		out.Err = stageErr(StageExtract, err)
		return out
	}

	if !force && dirExists(filepath.Join(lib, module)) {
		logsink.Info(i.sink, "package already installed", "module", module)
		out.Skipped = true
		return out
	}

	present, err := i.extractor.AllPresent(archivePath, lib)
	switch {
	case err != nil:
		logsink.Error(i.sink, "error reading package archive "+archivePath, "error", err)
		out.Err = stageErr(StageExtract, err)
		return out
	case present:
		logsink.Info(i.sink, "all package files already present, skipping extraction", "module", module)
	default:
		stats, err := i.extractor.Extract(ctx, archivePath, lib)
		if err != nil {
			logsink.Error(i.sink, "error extracting package archive "+archivePath, "error", err)
			out.Err = stageErr(StageExtract, err)
			return out
		}
		logsink.Info(i.sink, "package extracted", "module", module, "files", stats.Files)
	}

	if err := i.referenceLibDir(); err != nil {
		logsink.Warn(i.sink, "could not reference library directory", "error", err)
		out.PatchErr = stageErr(StagePatch, err)
	}
	return out
}

// InstallBundledPackage copies a wheel-style archive out of bundle into the
// library directory, installs it, and removes the copy. The entry is the
// first whose identifier contains resourceName. A missing entry or malformed
// name is returned as an error.
func (i *Installer) InstallBundledPackage(ctx context.Context, bundle source.Bundle, resourceName string, force bool) (Outcome, error) {
	entry, module, err := resolveBundledPackage(bundle, resourceName)
	if err != nil {
		return Outcome{}, err
	}

	i.op.Lock()
	defer i.op.Unlock()

	out := Outcome{Module: module}
	lib, err := i.libDir()
	if err != nil {
		out.Err = stageErr(StageFetch, err)
		return out, nil
	}
	if !force && dirExists(filepath.Join(lib, module)) {
		logsink.Info(i.sink, "package already installed", "module", module)
		out.Skipped = true
		return out, nil
	}

	copied := filepath.Join(lib, path.Base(entry))
	if err := source.CopyEntry(bundle, entry, copied); err != nil {
		logsink.Error(i.sink, "unable to copy bundled package", "entry", entry, "error", err)
		out.Err = stageErr(StageFetch, err)
		return out, nil
	}
	defer os.Remove(copied)

	return i.installArchive(ctx, module, copied, force), nil
}

// InstallPackageViaManager installs module with the package manager,
// installing the manager first when it is missing. version pins an exact
// release when non-empty; force reinstalls an installed module.
func (i *Installer) InstallPackageViaManager(ctx context.Context, module, version string, force bool) (Outcome, error) {
	module = strings.TrimSpace(module)
	if !validModule(module) {
		return Outcome{}, fmt.Errorf("%w: invalid module name %q", ErrInvalidArgument, module)
	}
	if version != "" && !moduleVersionPattern.MatchString(version) {
		return Outcome{}, fmt.Errorf("%w: invalid version %q for %s", ErrInvalidArgument, version, module)
	}

	i.op.Lock()
	defer i.op.Unlock()

	out := Outcome{Module: module}
	if _, err := i.tryInstallPackageManager(ctx, false); err != nil {
		out.Err = stageErr(StageCommand, err)
		return out, nil
	}
	if !force && i.IsModuleInstalled(module) {
		logsink.Info(i.sink, "module already installed", "module", module)
		out.Skipped = true
		return out, nil
	}

	spec := module
	if version != "" {
		spec += "==" + version
	}
	if err := i.runPackageManager(ctx, spec, force); err != nil {
		out.Err = stageErr(StageCommand, err)
	}
	return out, nil
}

// InstallBundledPackageViaManager copies a wheel out of bundle into the
// library directory and installs it with the package manager.
func (i *Installer) InstallBundledPackageViaManager(ctx context.Context, bundle source.Bundle, resourceName string, force bool) (Outcome, error) {
	entry, module, err := resolveBundledPackage(bundle, resourceName)
	if err != nil {
		return Outcome{}, err
	}

	i.op.Lock()
	defer i.op.Unlock()

	out := Outcome{Module: module}
	lib, err := i.libDir()
	if err != nil {
		out.Err = stageErr(StageFetch, err)
		return out, nil
	}
	if !force && (dirExists(filepath.Join(lib, module)) || i.IsModuleInstalled(module)) {
		logsink.Info(i.sink, "package already installed", "module", module)
		out.Skipped = true
		return out, nil
	}

	wheel := filepath.Join(lib, path.Base(entry))
	if force || !fileExists(wheel) {
		if err := source.CopyEntry(bundle, entry, wheel); err != nil {
			logsink.Error(i.sink, "unable to copy bundled package", "entry", entry, "error", err)
			out.Err = stageErr(StageFetch, err)
			return out, nil
		}
	}
	defer os.Remove(wheel)

	if _, err := i.tryInstallPackageManager(ctx, false); err != nil {
		out.Err = stageErr(StageCommand, err)
		return out, nil
	}
	if err := i.runPackageManager(ctx, wheel, force); err != nil {
		out.Err = stageErr(StageCommand, err)
	}
	return out, nil
}

// InstallPackageManager downloads the bootstrap script into the library
// directory and runs it with the runtime's own executable. It does not check
// whether the manager is already installed; see TryInstallPackageManager.
func (i *Installer) InstallPackageManager(ctx context.Context) error {
	i.op.Lock()
	defer i.op.Unlock()
	return i.installPackageManager(ctx)
}

func (i *Installer) installPackageManager(ctx context.Context) error {
	lib, err := i.libDir()
	if err != nil {
		return err
	}
	script := filepath.Join(lib, bootstrapScript)

	logsink.Info(i.sink, "downloading package manager bootstrap script", "url", i.cfg.BootstrapURL)
	if err := i.fetcher.Fetch(ctx, i.cfg.BootstrapURL, script, nil); err != nil {
		logsink.Error(i.sink, "bootstrap script download failed", "error", err)
		return fmt.Errorf("downloading bootstrap script: %w", err)
	}

	r := i.runner.With(runner.WithDir(i.home), runner.WithEnv(i.Env()))
	line := r.Quote(i.Executable()) + " " + r.Quote(script)
	return resultErr(r.Run(ctx, line), "bootstrap script")
}

// TryInstallPackageManager installs the package manager when it is missing
// or force is set. attempted reports whether an install ran. The error is
// ErrPackageManagerMissing when the entry point is still absent afterwards.
func (i *Installer) TryInstallPackageManager(ctx context.Context, force bool) (attempted bool, err error) {
	i.op.Lock()
	defer i.op.Unlock()
	return i.tryInstallPackageManager(ctx, force)
}

func (i *Installer) tryInstallPackageManager(ctx context.Context, force bool) (bool, error) {
	if !force && i.IsPackageManagerInstalled() {
		return false, nil
	}
	installErr := i.installPackageManager(ctx)
	if i.IsPackageManagerInstalled() {
		return true, nil
	}
	if installErr != nil {
		return true, fmt.Errorf("%w: %w", ErrPackageManagerMissing, installErr)
	}
	return true, fmt.Errorf("%w: %s not found after bootstrap", ErrPackageManagerMissing, i.layout.PackageManager)
}

func (i *Installer) runPackageManager(ctx context.Context, target string, force bool) error {
	r := i.runner.With(runner.WithDir(i.home), runner.WithEnv(i.Env()))
	line := r.Quote(i.PackageManagerPath()) + " install " + r.Quote(target)
	if force {
		line += " --force-reinstall"
	}
	return resultErr(r.Run(ctx, line), "package manager")
}

func resolveBundledPackage(bundle source.Bundle, resourceName string) (entry, module string, err error) {
	if bundle == nil {
		return "", "", fmt.Errorf("%w: no bundle", ErrInvalidArgument)
	}
	entry, err = source.ResolveEntry(bundle, resourceName)
	if err != nil {
		return "", "", err
	}
	module, err = ModuleName(resourceName)
	if err != nil {
		return "", "", err
	}
	return entry, module, nil
}

// resultErr converts a runner result into an error for an Outcome.
func resultErr(res runner.Result, what string) error {
	switch {
	case res.Cancelled:
		return fmt.Errorf("%s: %w", what, runner.ErrCancelled)
	case res.Err != nil:
		return fmt.Errorf("%s: %w: %w", what, ErrCommandFailed, res.Err)
	case res.ExitCode != 0:
		return fmt.Errorf("%s: %w: exit code %d", what, ErrCommandFailed, res.ExitCode)
	}
	return nil
}
