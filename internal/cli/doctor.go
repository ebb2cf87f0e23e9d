package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair problems that can be fixed locally")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the runtime installation",
	Long: `Check the config file, the install directory, the interpreter, and the
path configuration file. With --fix, repair what can be repaired without
downloading anything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Config check:")
		if _, err := os.Stat(current.store.Path()); err != nil {
			fmt.Fprintf(out, "  [ -- ] %s not found; using defaults\n", current.store.Path())
		} else {
			fmt.Fprintf(out, "  [ OK ] %s\n", current.store.Path())
		}

		inst, err := current.newInstaller()
		if err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			return fmt.Errorf("configuration is invalid: %w", err)
		}
		if n := inst.Doctor(out, doctorFix); n > 0 {
			return fmt.Errorf("%d problem(s) found", n)
		}
		return nil
	},
}
