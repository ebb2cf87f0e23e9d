//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pyembed-labs/pyembed/internal/branding"
	"github.com/pyembed-labs/pyembed/internal/fetch"
	"github.com/pyembed-labs/pyembed/internal/logsink"
	"github.com/pyembed-labs/pyembed/internal/setup"
	"github.com/pyembed-labs/pyembed/internal/source"
)

// runtimeURLEnv overrides the runtime downloaded by these tests. python.org
// only publishes embeddable distributions for Windows, so other hosts must
// point it at a compatible archive.
const runtimeURLEnv = "PYEMBED_IT_RUNTIME_URL"

const defaultRuntimeURL = "https://www.python.org/ftp/python/3.8.10/python-3.8.10-embed-amd64.zip"

// testEnv holds paths to isolated test directories.
type testEnv struct {
	ConfigDir   string // PYEMBED_HOME
	InstallPath string // parent of the runtime home
	Log         *logsink.Recorder
}

// setupTestEnv creates isolated temp directories and points the config
// directory at one of them. The env var is restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		ConfigDir:   t.TempDir(),
		InstallPath: t.TempDir(),
		Log:         &logsink.Recorder{},
	}
	t.Setenv(branding.EnvVar("HOME"), env.ConfigDir)
	return env
}

// runtimeURL returns the archive to install, skipping when none is usable.
func runtimeURL(t *testing.T) string {
	t.Helper()
	if url := os.Getenv(runtimeURLEnv); url != "" {
		return url
	}
	if runtime.GOOS != "windows" {
		t.Skipf("set %s to an embeddable runtime archive for %s", runtimeURLEnv, runtime.GOOS)
	}
	return defaultRuntimeURL
}

// newInstaller builds an installer for the real runtime download.
func newInstaller(t *testing.T, env *testEnv) *setup.Installer {
	t.Helper()
	inst, err := setup.New(setup.Config{
		InstallPath: env.InstallPath,
		Source:      &source.Remote{URL: runtimeURL(t), Fetcher: fetch.New(fetch.WithSink(env.Log)), Sink: env.Log},
	}, setup.WithSink(env.Log))
	if err != nil {
		t.Fatalf("setup.New: %v", err)
	}
	return inst
}

// installRuntime runs SetupRuntime and fails the test unless it succeeds.
func installRuntime(t *testing.T, env *testEnv) *setup.Installer {
	t.Helper()
	inst := newInstaller(t, env)
	rep := inst.SetupRuntime(t.Context(), false)
	if !rep.OK() {
		t.Fatalf("SetupRuntime: %v\nlog:\n%v", rep.Err, env.Log.Messages())
	}
	return inst
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %s to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("expected %s to be a file, got directory", path)
	}
}

func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %s to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", path)
	}
}

func pthFile(t *testing.T, inst *setup.Installer) string {
	t.Helper()
	tag, ok := inst.VersionTag()
	if !ok {
		t.Fatalf("no version tag for %s", inst.Ref().DistributionName)
	}
	return filepath.Join(inst.Home(), source.PthFileName(tag))
}

// newBundledInstaller builds an installer reading the runtime from a bundle
// directory.
func newBundledInstaller(t *testing.T, env *testEnv, dir, resource string) *setup.Installer {
	t.Helper()
	src, err := source.FromSpec(source.Spec{BundleDir: dir, Resource: resource, Sink: env.Log})
	if err != nil {
		t.Fatalf("source.FromSpec: %v", err)
	}
	inst, err := setup.New(setup.Config{InstallPath: env.InstallPath, Source: src}, setup.WithSink(env.Log))
	if err != nil {
		t.Fatalf("setup.New: %v", err)
	}
	return inst
}
