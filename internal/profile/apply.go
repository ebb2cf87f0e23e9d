package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/pyembed-labs/pyembed/internal/fetch"
	"github.com/pyembed-labs/pyembed/internal/logsink"
	"github.com/pyembed-labs/pyembed/internal/runner"
	"github.com/pyembed-labs/pyembed/internal/setup"
	"github.com/pyembed-labs/pyembed/internal/source"
)

// Result records what Apply did.
type Result struct {
	Report *setup.Report
	// PackageManagerAttempted is true when a package manager install ran.
	PackageManagerAttempted bool
	Packages                []setup.Outcome
}

// SetupConfig overlays the profile's runtime selection onto base. r runs the
// curl fetcher when the profile asks for it.
func (p *Profile) SetupConfig(base setup.Config, r *runner.Runner, sink logsink.Sink) (setup.Config, error) {
	f, err := fetch.ByName(p.Runtime.Fetcher, r, sink)
	if err != nil {
		return setup.Config{}, err
	}
	src, err := source.FromSpec(source.Spec{
		URL:       p.Runtime.URL,
		BundleDir: p.Bundle,
		Resource:  p.Runtime.Resource,
		Force:     p.Runtime.Force,
		Fetcher:   f,
		Sink:      sink,
	})
	if err != nil {
		return setup.Config{}, err
	}
	cfg := base
	cfg.Source = src
	if p.Runtime.DirectoryName != "" {
		cfg.DirectoryName = p.Runtime.DirectoryName
	}
	return cfg, nil
}

// Apply checks the runtime version constraint, sets up the runtime, and
// installs every package in order. A failing package does not stop the
// ones after it; all failures are joined into the returned error.
func Apply(ctx context.Context, p *Profile, inst *setup.Installer, sink logsink.Sink) (*Result, error) {
	version, ok := inst.Ref().RuntimeVersion()
	if err := p.CheckRuntime(version, ok); err != nil {
		return nil, err
	}

	res := &Result{}
	logsink.Info(sink, "applying profile", "profile", p.Name, "home", inst.Home())
	res.Report = inst.SetupRuntime(ctx, p.Runtime.Force)
	if !res.Report.OK() {
		return res, fmt.Errorf("setting up runtime: %w", res.Report.Err)
	}

	var errs []error
	if p.PackageManager {
		attempted, err := inst.TryInstallPackageManager(ctx, false)
		res.PackageManagerAttempted = attempted
		if err != nil {
			errs = append(errs, err)
		}
	}

	var bundle source.Bundle
	if p.Bundle != "" {
		bundle = source.NewDirBundle(p.Bundle)
	}

	for _, pkg := range p.Packages {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		out, err := installPackage(ctx, inst, bundle, pkg)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", pkg.Kind(), pkg.Target(), err))
			continue
		}
		res.Packages = append(res.Packages, out)
		if out.Err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", pkg.Kind(), pkg.Target(), out.Err))
		}
	}
	return res, errors.Join(errs...)
}

func installPackage(ctx context.Context, inst *setup.Installer, bundle source.Bundle, pkg Package) (setup.Outcome, error) {
	switch pkg.Kind() {
	case "archive":
		return inst.InstallPackageArchive(ctx, pkg.Archive, pkg.Force)
	case "bundled":
		if pkg.ViaManager {
			return inst.InstallBundledPackageViaManager(ctx, bundle, pkg.Bundled, pkg.Force)
		}
		return inst.InstallBundledPackage(ctx, bundle, pkg.Bundled, pkg.Force)
	case "module":
		return inst.InstallPackageViaManager(ctx, pkg.Module, pkg.Version, pkg.Force)
	}
	return setup.Outcome{}, fmt.Errorf("%w: package entry sets no archive, bundled or module", setup.ErrInvalidArgument)
}
