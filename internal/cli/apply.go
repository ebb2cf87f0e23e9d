package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyembed-labs/pyembed/internal/profile"
	"github.com/pyembed-labs/pyembed/internal/runner"
	"github.com/pyembed-labs/pyembed/internal/setup"
)

var applyCheck bool

func init() {
	applyCmd.Flags().BoolVar(&applyCheck, "check", false, "Validate the profile without installing anything")
	rootCmd.AddCommand(applyCmd)
}

var applyCmd = &cobra.Command{
	Use:   "apply <profile.yaml>",
	Short: "Set up a runtime and its packages from a profile",
	Long: `Read a profile describing the runtime source, whether to install the
package manager, and the packages to install, then bring the runtime to that
state. Install path, layout and patch mode come from the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p, err := profile.Load(args[0])
	if err != nil {
		var invalid *profile.InvalidError
		if errors.As(err, &invalid) {
			for _, issue := range invalid.Issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
			return fmt.Errorf("profile %s has %d problem(s)", args[0], len(invalid.Issues))
		}
		return err
	}
	if applyCheck {
		fmt.Fprintf(out, "Profile %s is valid (%d packages)\n", p.Name, len(p.Packages))
		return nil
	}

	r := runner.New(runner.WithSink(current.bus))
	base, err := current.settings.InstallConfig()
	if err != nil {
		return err
	}
	cfg, err := p.SetupConfig(base, r, current.bus)
	if err != nil {
		return err
	}
	inst, err := setup.New(cfg, setup.WithSink(current.bus), setup.WithRunner(r))
	if err != nil {
		return err
	}

	res, applyErr := profile.Apply(cmd.Context(), p, inst, current.bus)
	if res != nil && res.Report != nil {
		if err := printReport(cmd, inst, res.Report); err != nil {
			return err
		}
		if res.PackageManagerAttempted {
			fmt.Fprintln(out, "Installed package manager")
		}
		for _, o := range res.Packages {
			if o.OK() {
				printOutcome(cmd, o)
			}
		}
	}
	return applyErr
}
