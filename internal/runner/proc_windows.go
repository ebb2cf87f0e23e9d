//go:build windows

package runner

import (
	"os/exec"
	"strings"
)

func configureProcess(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		_ = cmd.Process.Kill()
		return nil
	}
}

func cutEnv(e string) (string, string, bool) {
	// Windows keeps per-drive cwd entries like "=C:=C:\"; skip them.
	if strings.HasPrefix(e, "=") {
		return "", "", false
	}
	return strings.Cut(e, "=")
}

func isPathKey(key string) bool {
	return strings.EqualFold(key, "PATH")
}
