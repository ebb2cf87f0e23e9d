//go:build !windows

package runner

import (
	"os/exec"
	"strings"
	"syscall"
)

// configureProcess starts the shell in its own process group so that
// cancellation also reaches the tools it spawned.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		_ = cmd.Process.Kill()
		return nil
	}
}

func cutEnv(e string) (string, string, bool) {
	return strings.Cut(e, "=")
}

func isPathKey(key string) bool {
	return key == "PATH"
}
