package setup

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"runtime"
	"strings"

	"github.com/pyembed-labs/pyembed/internal/platform"
)

// Doctor checks the installation and prints one line per check. When fix is
// true it repairs what can be repaired locally: a missing install path, a
// non-executable interpreter, a path configuration file with site imports
// disabled, and a library directory that is not referenced. It returns the
// number of problems left unresolved.
func (i *Installer) Doctor(w io.Writer, fix bool) int {
	i.op.Lock()
	defer i.op.Unlock()

	fmt.Fprintln(w, "Runtime check:")
	problems := 0
	miss := func(format string, args ...any) {
		problems++
		fmt.Fprintf(w, "  [MISS] "+format+"\n", args...)
	}
	warn := func(format string, args ...any) {
		problems++
		fmt.Fprintf(w, "  [WARN] "+format+"\n", args...)
	}
	fixed := func(format string, args ...any) {
		problems--
		fmt.Fprintf(w, "  [FIX ] "+format+"\n", args...)
	}
	failed := func(what string, err error) {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", what, err)
	}

	if dirExists(i.cfg.InstallPath) {
		fmt.Fprintf(w, "  [ OK ] %s exists\n", i.cfg.InstallPath)
	} else {
		miss("%s does not exist", i.cfg.InstallPath)
		if fix {
			if err := os.MkdirAll(i.cfg.InstallPath, 0755); err != nil {
				failed("creating "+i.cfg.InstallPath, err)
			} else {
				fixed("Created %s", i.cfg.InstallPath)
			}
		}
	}

	exe := i.Executable()
	info, err := os.Stat(exe)
	if err != nil {
		miss("%s not found; run setup", exe)
		return problems
	}
	fmt.Fprintf(w, "  [ OK ] %s\n", exe)
	if runtime.GOOS != "windows" && info.Mode().Perm()&0100 == 0 {
		warn("%s is not executable", exe)
		if fix {
			if err := platform.MakeExecutable(exe); err != nil {
				failed("chmod "+exe, err)
			} else {
				fixed("Marked %s executable", exe)
			}
		}
	}

	problems += i.checkPth(w, fix)

	if i.IsPackageManagerInstalled() {
		fmt.Fprintf(w, "  [ OK ] %s\n", i.PackageManagerPath())
	} else {
		// Optional; not counted.
		fmt.Fprintf(w, "  [ -- ] %s not installed\n", i.PackageManagerPath())
		if _, err := exec.LookPath("curl"); err != nil {
			fmt.Fprintln(w, "  [ -- ] curl not on PATH; install-pip needs it to download the bootstrap script")
		}
	}
	return problems
}

// checkPth reports on the path configuration file and returns the number of
// unresolved problems.
func (i *Installer) checkPth(w io.Writer, fix bool) int {
	tag, ok := i.ref.VersionTag()
	if !ok {
		fmt.Fprintf(w, "  [ -- ] no version in %q; path configuration not checked\n", i.ref.DistributionName)
		return 0
	}
	pth := i.pthPath(tag)
	data, err := os.ReadFile(pth)
	if os.IsNotExist(err) {
		if i.cfg.PatchMode == PatchDelete {
			fmt.Fprintf(w, "  [ OK ] %s removed\n", pth)
		} else {
			fmt.Fprintf(w, "  [ -- ] %s not present; site imports use defaults\n", pth)
		}
		return 0
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", pth, err)
		return 1
	}

	problems := 0
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if hasLine(lines, siteImportLine) {
		fmt.Fprintf(w, "  [ OK ] %s enables site imports\n", pth)
	} else {
		problems++
		fmt.Fprintf(w, "  [WARN] %s does not enable site imports\n", pth)
		if fix {
			if err := i.patchPth(tag); err != nil {
				fmt.Fprintf(w, "  [FAIL] patching %s: %v\n", pth, err)
			} else {
				problems--
				fmt.Fprintf(w, "  [FIX ] Enabled site imports in %s\n", pth)
			}
		}
	}

	entry := "./" + path.Clean(i.layout.LibDir)
	if !i.hasArchivePackages() || hasLine(lines, entry) {
		return problems
	}
	problems++
	fmt.Fprintf(w, "  [WARN] %s does not reference %s\n", pth, entry)
	if fix {
		if err := i.referenceLibDir(); err != nil {
			fmt.Fprintf(w, "  [FAIL] referencing %s: %v\n", entry, err)
		} else {
			problems--
			fmt.Fprintf(w, "  [FIX ] Referenced %s in %s\n", entry, pth)
		}
	}
	return problems
}

func hasLine(lines []string, want string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) == want {
			return true
		}
	}
	return false
}

// hasArchivePackages reports whether the library directory holds any package
// directory besides site-packages.
func (i *Installer) hasArchivePackages() bool {
	entries, err := os.ReadDir(i.path(i.layout.LibDir))
	if err != nil {
		return false
	}
	site := path.Base(i.layout.SitePackagesDir)
	for _, e := range entries {
		if e.IsDir() && e.Name() != site {
			return true
		}
	}
	return false
}
