package setup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pyembed-labs/pyembed/internal/archive"
	"github.com/pyembed-labs/pyembed/internal/fetch"
	"github.com/pyembed-labs/pyembed/internal/logsink"
	"github.com/pyembed-labs/pyembed/internal/platform"
	"github.com/pyembed-labs/pyembed/internal/runner"
	"github.com/pyembed-labs/pyembed/internal/source"
)

// DefaultBootstrapURL is used when Config.BootstrapURL is empty.
const DefaultBootstrapURL = "https://bootstrap.pypa.io/get-pip.py"

// Extractor unpacks archives. The default uses package archive.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) (archive.Stats, error)
	AllPresent(archivePath, destDir string) (bool, error)
}

type archiveExtractor struct{}

func (archiveExtractor) Extract(ctx context.Context, archivePath, destDir string) (archive.Stats, error) {
	return archive.Extract(ctx, archivePath, destDir)
}

func (archiveExtractor) AllPresent(archivePath, destDir string) (bool, error) {
	return archive.AllPresent(archivePath, destDir)
}

// Installer manages one runtime installation.
type Installer struct {
	cfg    Config
	ref    source.Ref
	home   string
	layout platform.Layout

	sink      logsink.Sink
	runner    *runner.Runner
	extractor Extractor
	fetcher   fetch.Fetcher

	// op serializes install operations on this Installer.
	op sync.Mutex

	mu    sync.Mutex
	state State
}

// Option configures an Installer.
type Option func(*Installer)

// WithSink sets where progress lines are logged.
func WithSink(s logsink.Sink) Option {
	return func(i *Installer) {
		i.sink = logsink.OrDiscard(s)
	}
}

// WithRunner sets the command runner used for package manager commands.
func WithRunner(r *runner.Runner) Option {
	return func(i *Installer) {
		i.runner = r
	}
}

// WithExtractor replaces the archive extractor (useful for testing).
func WithExtractor(e Extractor) Option {
	return func(i *Installer) {
		i.extractor = e
	}
}

// WithFetcher sets how the package manager bootstrap script is downloaded.
// The default shells out to curl through the runner.
func WithFetcher(f fetch.Fetcher) Option {
	return func(i *Installer) {
		i.fetcher = f
	}
}

// New validates cfg and returns an Installer for it. Source resolution errors
// (a malformed URL, an empty resource name) are returned here.
func New(cfg Config, opts ...Option) (*Installer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	ref, err := source.Describe(cfg.Source)
	if err != nil {
		return nil, err
	}
	if cfg.BootstrapURL == "" {
		cfg.BootstrapURL = DefaultBootstrapURL
	}
	if cfg.PatchMode == "" {
		cfg.PatchMode = PatchRewrite
	}

	dirName := cfg.DirectoryName
	if dirName == "" {
		dirName = ref.DistributionName
	}

	i := &Installer{
		cfg:       cfg,
		ref:       ref,
		home:      filepath.Join(cfg.InstallPath, dirName),
		layout:    cfg.Layout.WithDefaults(),
		sink:      logsink.Discard,
		extractor: archiveExtractor{},
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.runner == nil {
		i.runner = runner.New(runner.WithSink(i.sink))
	}
	if i.fetcher == nil {
		i.fetcher = fetch.NewCommand(i.runner)
	}
	return i, nil
}

// Home returns the runtime home directory.
func (i *Installer) Home() string { return i.home }

// Ref returns the distribution the source provides.
func (i *Installer) Ref() source.Ref { return i.ref }

// VersionTag returns the short runtime version tag, e.g. "python37".
func (i *Installer) VersionTag() (string, bool) { return i.ref.VersionTag() }

// Layout returns the resolved layout.
func (i *Installer) Layout() platform.Layout { return i.layout }

// Executable returns the absolute path of the interpreter binary.
func (i *Installer) Executable() string { return i.path(i.layout.Executable) }

// PackageManagerPath returns the absolute path of the package manager entry point.
func (i *Installer) PackageManagerPath() string { return i.path(i.layout.PackageManager) }

// Env returns the process environment with the runtime home and its scripts
// directory prepended to PATH. Package manager commands run with it.
func (i *Installer) Env() []string {
	return runner.Environ(i.home, i.path(i.layout.ScriptsDir))
}

// State returns the current state machine state.
func (i *Installer) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Installer) setState(s State) {
	i.mu.Lock()
	prev := i.state
	i.state = s
	i.mu.Unlock()
	logsink.Debug(i.sink, "setup state", "from", prev, "to", s)
}

func (i *Installer) path(rel string) string {
	return platform.Join(i.home, rel)
}

// IsRuntimeInstalled reports whether the runtime executable exists in the home.
func (i *Installer) IsRuntimeInstalled() bool {
	return fileExists(i.Executable())
}

// IsPackageManagerInstalled reports whether the package manager entry point exists.
func (i *Installer) IsPackageManagerInstalled() bool {
	return fileExists(i.PackageManagerPath())
}

// IsModuleInstalled reports whether module has a package directory holding
// the module marker, either in the library directory (archive installs) or in
// site-packages (package manager installs).
func (i *Installer) IsModuleInstalled(module string) bool {
	if module == "" || !i.IsRuntimeInstalled() {
		return false
	}
	for _, dir := range []string{i.layout.SitePackagesDir, i.layout.LibDir} {
		if fileExists(filepath.Join(i.path(dir), module, i.layout.ModuleMarker)) {
			return true
		}
	}
	return false
}

// SetupRuntime installs the runtime unless it is already present. force
// re-extracts over an existing install; whether the archive itself is
// fetched again is governed by the source's own Force flag.
//
// SetupRuntime never returns an error: failures are logged and reported in
// the returned Report, whose State is Ready or Failed.
func (i *Installer) SetupRuntime(ctx context.Context, force bool) *Report {
	i.op.Lock()
	defer i.op.Unlock()

	rep := &Report{}
	fail := func(stage Stage, msg string, err error) *Report {
		logsink.Error(i.sink, msg, "home", i.home, "error", err)
		rep.State = Failed
		rep.Err = stageErr(stage, err)
		i.setState(Failed)
		return rep
	}

	i.setState(Checking)
	if !force && i.IsRuntimeInstalled() {
		logsink.Info(i.sink, "runtime already installed", "home", i.home)
		rep.Skipped = true
		rep.State = Ready
		i.setState(Ready)
		return rep
	}

	i.setState(Fetching)
	logsink.Info(i.sink, "retrieving runtime archive", "archive", i.ref.ArchiveFileName)
	archivePath, err := i.cfg.Source.RetrieveArchive(ctx, i.cfg.InstallPath)
	if err == nil && archivePath == "" {
		err = errors.New("source returned no archive path")
	}
	if err != nil {
		return fail(StageFetch, "error obtaining archive from installation source", err)
	}
	rep.ArchivePath = archivePath

	i.setState(Extracting)
	stats, err := i.extractor.Extract(ctx, archivePath, i.home)
	if err != nil {
		return fail(StageExtract, "error extracting archive "+archivePath, err)
	}
	rep.Extracted = stats
	logsink.Info(i.sink, "runtime extracted", "home", i.home, "files", stats.Files)
	if !i.IsRuntimeInstalled() {
		return fail(StageExtract, "runtime executable missing after extraction",
			fmt.Errorf("%w: %s not in archive %s", ErrExecutableMissing, i.layout.Executable, i.ref.ArchiveFileName))
	}
	if err := platform.MakeExecutable(i.Executable()); err != nil {
		logsink.Warn(i.sink, "could not mark runtime executable", "error", err)
	}

	i.setState(Patching)
	tag, ok := i.ref.VersionTag()
	if !ok {
		logsink.Warn(i.sink, "unknown runtime version tag, skipping path configuration patch",
			"distribution", i.ref.DistributionName)
		rep.PatchSkipped = true
	} else if err := i.patchPth(tag); err != nil {
		logsink.Warn(i.sink, "could not patch path configuration file", "error", err)
		rep.PatchErr = stageErr(StagePatch, err)
	}

	rep.State = Ready
	i.setState(Ready)
	logsink.Info(i.sink, "runtime ready", "home", i.home)
	return rep
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
