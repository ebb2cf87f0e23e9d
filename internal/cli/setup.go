package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pyembed-labs/pyembed/internal/setup"
)

var setupForce bool

func init() {
	setupCmd.Flags().BoolVar(&setupForce, "force", false, "Reinstall even if the runtime is present")
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the embeddable runtime",
	Long: `Download or copy the runtime archive, extract it into the install directory,
and enable site imports in the interpreter's path configuration file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := current.newInstaller()
		if err != nil {
			return err
		}
		force := setupForce || current.settings.Force
		return printReport(cmd, inst, inst.SetupRuntime(cmd.Context(), force))
	},
}

func printReport(cmd *cobra.Command, inst *setup.Installer, rep *setup.Report) error {
	out := cmd.OutOrStdout()
	switch {
	case !rep.OK():
		return fmt.Errorf("runtime setup failed: %w", rep.Err)
	case rep.Skipped:
		fmt.Fprintf(out, "Runtime already installed at %s\n", inst.Home())
	default:
		fmt.Fprintf(out, "Installed runtime at %s (%d files, %s)\n",
			inst.Home(), rep.Extracted.Files, humanize.Bytes(uint64(rep.Extracted.Bytes)))
	}
	if rep.PatchErr != nil {
		fmt.Fprintf(out, "Warning: site imports not enabled: %v\n", rep.PatchErr)
	}
	if rep.PatchSkipped {
		fmt.Fprintln(out, "Warning: unknown runtime version, path configuration left unchanged")
	}
	return nil
}
