package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	pipVersion        string
	pipForce          bool
	pipForceBootstrap bool
)

func init() {
	pipCmd.Flags().StringVar(&pipVersion, "version", "", "Pin the module to this version (single module only)")
	pipCmd.Flags().BoolVar(&pipForce, "force", false, "Reinstall modules that are already present")
	installPipCmd.Flags().BoolVar(&pipForceBootstrap, "force", false, "Run the bootstrap script even if pip is present")
	rootCmd.AddCommand(pipCmd)
	rootCmd.AddCommand(installPipCmd)
}

var pipCmd = &cobra.Command{
	Use:   "pip <module>...",
	Short: "Install modules with the runtime's package manager",
	Long: `Run "pip install" inside the runtime for each module. Modules that are
already importable are skipped unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pipVersion != "" && len(args) > 1 {
			return errors.New("--version applies to a single module")
		}
		inst, err := current.newInstaller()
		if err != nil {
			return err
		}

		var errs []error
		for _, module := range args {
			out, err := inst.InstallPackageViaManager(cmd.Context(), module, pipVersion, pipForce)
			if err == nil {
				err = out.Err
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", module, err))
				continue
			}
			printOutcome(cmd, out)
		}
		return errors.Join(errs...)
	},
}

var installPipCmd = &cobra.Command{
	Use:   "install-pip",
	Short: "Install the package manager into the runtime",
	Long: `Download the package manager bootstrap script into the runtime's library
directory and run it with the embedded interpreter.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := current.newInstaller()
		if err != nil {
			return err
		}
		attempted, err := inst.TryInstallPackageManager(cmd.Context(), pipForceBootstrap)
		if err != nil {
			return err
		}
		if attempted {
			fmt.Fprintf(cmd.OutOrStdout(), "Installed package manager at %s\n", inst.PackageManagerPath())
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Package manager already installed at %s\n", inst.PackageManagerPath())
		}
		return nil
	},
}
