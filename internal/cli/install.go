package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyembed-labs/pyembed/internal/setup"
	"github.com/pyembed-labs/pyembed/internal/source"
)

var (
	installForce      bool
	installBundle     string
	installViaManager bool
)

func init() {
	installCmd.Flags().BoolVar(&installForce, "force", false, "Reinstall packages that are already present")
	installCmd.Flags().StringVar(&installBundle, "bundle", "", "Resolve arguments as resource names in this directory")
	installCmd.Flags().BoolVar(&installViaManager, "via-manager", false, "Install bundled archives with pip instead of unpacking them")
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install <archive>...",
	Short: "Install package archives into the runtime",
	Long: `Unpack wheel or zip archives into the runtime's library directory and
reference it from the path configuration file. With --bundle, each argument
names a resource in the bundle directory instead of a file path; the first
entry whose name contains it is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	if installViaManager && installBundle == "" {
		return errors.New("--via-manager requires --bundle")
	}
	inst, err := current.newInstaller()
	if err != nil {
		return err
	}

	var bundle source.Bundle
	if installBundle != "" {
		bundle = source.NewDirBundle(installBundle)
	}

	ctx := cmd.Context()
	var errs []error
	for _, arg := range args {
		var out setup.Outcome
		switch {
		case bundle == nil:
			out, err = inst.InstallPackageArchive(ctx, arg, installForce)
		case installViaManager:
			out, err = inst.InstallBundledPackageViaManager(ctx, bundle, arg, installForce)
		default:
			out, err = inst.InstallBundledPackage(ctx, bundle, arg, installForce)
		}
		if err == nil {
			err = out.Err
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", arg, err))
			continue
		}
		printOutcome(cmd, out)
	}
	return errors.Join(errs...)
}

func printOutcome(cmd *cobra.Command, out setup.Outcome) {
	w := cmd.OutOrStdout()
	if out.Skipped {
		fmt.Fprintf(w, "%s already installed\n", out.Module)
	} else {
		fmt.Fprintf(w, "Installed %s\n", out.Module)
	}
	if out.PatchErr != nil {
		fmt.Fprintf(w, "Warning: %s: library directory not referenced: %v\n", out.Module, out.PatchErr)
	}
}
