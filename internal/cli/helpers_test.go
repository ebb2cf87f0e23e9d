package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pyembed-labs/pyembed/internal/branding"
	"github.com/pyembed-labs/pyembed/internal/testutil"
)

const runtimeArchive = "python-3.8.5-embed-amd64.zip"

var runtimeFiles = map[string]string{
	"bin/python3":   "#!/bin/sh\n",
	"python.exe":    "MZ",
	"python38.zip":  "",
	"python38._pth": "python38.zip\n.\n\n# Uncomment to run site.main() automatically\n#import site\n",
}

// useConfigDir points the config directory at a fresh temp dir.
func useConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(branding.EnvVar("HOME"), dir)
	return dir
}

// execute runs the command tree with fresh flag values.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// runtimeServer serves the runtime archive and 404s everything else.
func runtimeServer(t *testing.T) string {
	t.Helper()
	body := testutil.ZipBytes(t, runtimeFiles)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+runtimeArchive {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/" + runtimeArchive
}

// setupRuntime installs the test runtime under a temp install path and
// returns the install path and URL flags to reuse.
func setupRuntime(t *testing.T) []string {
	t.Helper()
	useConfigDir(t)
	flags := []string{"--install-path", t.TempDir(), "--url", runtimeServer(t)}
	if _, stderr, err := execute(t, append([]string{"setup"}, flags...)...); err != nil {
		t.Fatalf("setup: %v\n%s", err, stderr)
	}
	return flags
}

func runtimeHome(flags []string) string {
	return filepath.Join(flags[1], "python-3.8.5-embed-amd64")
}
