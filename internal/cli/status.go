package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pyembed-labs/pyembed/internal/setup"
)

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status [module...]",
	Short: "Report what is installed",
	Long: `Report whether the runtime and the package manager are installed, and
whether each named module is importable from the runtime.`,
	RunE: runStatus,
}

// statusInfo is the status report.
type statusInfo struct {
	Home                    string          `json:"home"`
	Distribution            string          `json:"distribution"`
	VersionTag              string          `json:"version_tag,omitempty"`
	RuntimeVersion          string          `json:"runtime_version,omitempty"`
	Installed               bool            `json:"installed"`
	PackageManagerInstalled bool            `json:"package_manager_installed"`
	Modules                 map[string]bool `json:"modules,omitempty"`
}

func collectStatus(inst *setup.Installer, modules []string) statusInfo {
	info := statusInfo{
		Home:                    inst.Home(),
		Distribution:            inst.Ref().DistributionName,
		Installed:               inst.IsRuntimeInstalled(),
		PackageManagerInstalled: inst.IsPackageManagerInstalled(),
	}
	info.VersionTag, _ = inst.VersionTag()
	if v, ok := inst.Ref().RuntimeVersion(); ok {
		info.RuntimeVersion = v.String()
	}
	if len(modules) > 0 {
		info.Modules = make(map[string]bool, len(modules))
		for _, m := range modules {
			info.Modules[m] = inst.IsModuleInstalled(m)
		}
	}
	return info
}

func runStatus(cmd *cobra.Command, args []string) error {
	inst, err := current.newInstaller()
	if err != nil {
		return err
	}
	info := collectStatus(inst, args)

	if statusJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling status: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Home\t%s\n", info.Home)
	fmt.Fprintf(w, "Distribution\t%s\n", info.Distribution)
	if info.RuntimeVersion != "" {
		fmt.Fprintf(w, "Version\t%s\n", info.RuntimeVersion)
	}
	fmt.Fprintf(w, "Runtime\t%s\n", installedWord(info.Installed))
	fmt.Fprintf(w, "Package manager\t%s\n", installedWord(info.PackageManagerInstalled))
	for _, m := range args {
		fmt.Fprintf(w, "Module %s\t%s\n", m, installedWord(info.Modules[m]))
	}
	return w.Flush()
}

func installedWord(ok bool) string {
	if ok {
		return "installed"
	}
	return "missing"
}
