package runner

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Shell is the interpreter a command line is handed to.
type Shell struct {
	// Path is the shell binary.
	Path string
	// Args precede the command line, e.g. ["-c"] or ["/C"].
	Args []string
	// POSIX reports whether the shell uses POSIX quoting rules.
	POSIX bool
}

// DetectShell picks the shell for the host OS: cmd.exe on Windows, bash when
// it is on PATH, /bin/sh otherwise.
func DetectShell() Shell {
	if runtime.GOOS == "windows" {
		comspec := os.Getenv("ComSpec")
		if comspec == "" {
			comspec = "cmd.exe"
		}
		return Shell{Path: comspec, Args: []string{"/C"}}
	}
	if bash, err := exec.LookPath("bash"); err == nil {
		return Shell{Path: bash, Args: []string{"-c"}, POSIX: true}
	}
	return Shell{Path: "/bin/sh", Args: []string{"-c"}, POSIX: true}
}

// Quote returns arg quoted so the shell passes it through as one word.
func (s Shell) Quote(arg string) string {
	if !s.POSIX {
		if arg == "" || strings.ContainsAny(arg, " \t&|<>^()") {
			return `"` + strings.ReplaceAll(arg, `"`, `""`) + `"`
		}
		return arg
	}
	q, err := syntax.Quote(arg, syntax.LangBash)
	if err != nil {
		return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return q
}

// Check parses a POSIX command line and reports syntax errors such as an
// unterminated quote before anything is launched. Non-POSIX shells are not
// checked.
func (s Shell) Check(commandLine string) error {
	if !s.POSIX {
		return nil
	}
	_, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(commandLine), "")
	return err
}

func (s Shell) argv(commandLine string) []string {
	args := make([]string, 0, len(s.Args)+1)
	args = append(args, s.Args...)
	return append(args, commandLine)
}
