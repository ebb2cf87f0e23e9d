package cli

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyembed-labs/pyembed/internal/branding"
	"github.com/pyembed-labs/pyembed/internal/logsink"
	"github.com/pyembed-labs/pyembed/internal/runner"
)

var envJSON bool

func init() {
	envCmd.Flags().BoolVar(&envJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(envCmd)
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print environment variables for running the embedded runtime",
	Long: `Print the runtime home, interpreter path, and a PATH with the runtime's
directories prepended, as shell assignments a host program or script can
evaluate, e.g. eval "$(pyembed env)".`,
	Args: cobra.NoArgs,
	RunE: runEnv,
}

func runEnv(cmd *cobra.Command, args []string) error {
	inst, err := current.newInstaller()
	if err != nil {
		return err
	}

	vars := [][2]string{
		{branding.EnvVar("RUNTIME_HOME"), inst.Home()},
		{branding.EnvVar("PYTHON"), inst.Executable()},
	}
	for _, e := range inst.Env() {
		if k, v, ok := strings.Cut(e, "="); ok && strings.EqualFold(k, "PATH") {
			vars = append(vars, [2]string{k, v})
			break
		}
	}

	out := cmd.OutOrStdout()
	if envJSON {
		m := make(map[string]string, len(vars))
		for _, kv := range vars {
			m[kv[0]] = kv[1]
		}
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling environment: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	shell := runner.DetectShell()
	for _, kv := range vars {
		if runtime.GOOS == "windows" {
			fmt.Fprintf(out, "set %s=%s\n", kv[0], kv[1])
			continue
		}
		fmt.Fprintf(out, "export %s=%s\n", kv[0], shell.Quote(kv[1]))
	}
	if !inst.IsRuntimeInstalled() {
		logsink.Warn(current.bus, "runtime not installed", "home", inst.Home(), "hint", branding.CLIName()+" setup")
	}
	return nil
}
