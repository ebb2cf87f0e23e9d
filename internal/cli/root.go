package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pyembed-labs/pyembed/internal/branding"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configPath   string
	installPath  string
	runtimeURL   string
	fetcherName  string
	directory    string
	logLevelFlag string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default "+branding.HomeDir()+"/config.yaml)")
	flags.StringVar(&installPath, "install-path", "", "Directory the runtime is installed under")
	flags.StringVar(&runtimeURL, "url", "", "Runtime archive URL")
	flags.StringVar(&fetcherName, "fetcher", "", "Download with http or curl")
	flags.StringVar(&directory, "dir-name", "", "Runtime directory name (default: distribution name)")
	flags.StringVar(&logLevelFlag, "log-level", "", "Minimum log level: debug, info, warn, error")
}

// flagKeys maps persistent flags to the config keys they override.
var flagKeys = map[string]string{
	"install-path": "install_path",
	"url":          "source.url",
	"fetcher":      "source.fetcher",
	"dir-name":     "directory_name",
	"log-level":    "log_level",
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs a self-contained embeddable Python runtime into a per-user
directory, enables package imports, and installs packages from wheel archives
or with pip.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startSession(cmd)
	},
}

// Execute runs the root command with build info injected via ldflags.
// Ctrl-C cancels the running operation.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// run executes args against the command tree and tears down the session.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	current.close(stderr)
	current = nil
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}
