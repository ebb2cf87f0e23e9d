package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/pyembed-labs/pyembed/internal/logsink"
)

// DefaultWaitDelay bounds how long Run waits for output pipes to drain after
// the child has been killed.
const DefaultWaitDelay = 5 * time.Second

// ErrCancelled is reported in Result.Err when the context ended before the
// command finished.
var ErrCancelled = errors.New("command cancelled")

// Result describes how a command ended.
type Result struct {
	// ExitCode is the child's exit status, or -1 when it never ran or was killed.
	ExitCode int
	// Err is set when the command could not be launched or was cancelled.
	// A non-zero exit alone leaves Err nil.
	Err error
	// Cancelled reports whether the context ended before the command did.
	Cancelled bool
	// Duration is the wall time from launch to exit.
	Duration time.Duration
}

// Success reports whether the command ran and exited with status 0.
func (r Result) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Runner executes command lines through a shell.
type Runner struct {
	sink      logsink.Sink
	shell     Shell
	dir       string
	env       []string
	waitDelay time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithSink sets where command output and status lines are logged.
func WithSink(s logsink.Sink) Option {
	return func(r *Runner) {
		r.sink = logsink.OrDiscard(s)
	}
}

// WithShell overrides the detected shell.
func WithShell(s Shell) Option {
	return func(r *Runner) {
		r.shell = s
	}
}

// WithDir sets the working directory for every command.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithEnv sets the environment for every command. Nil inherits the parent's.
func WithEnv(env []string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.waitDelay = d
	}
}

// New creates a Runner using the host shell.
func New(opts ...Option) *Runner {
	r := &Runner{
		sink:      logsink.Discard,
		shell:     DetectShell(),
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Shell returns the shell commands run under.
func (r *Runner) Shell() Shell {
	return r.shell
}

// Quote quotes arg for the runner's shell.
func (r *Runner) Quote(arg string) string {
	return r.shell.Quote(arg)
}

// With returns a copy of r with opts applied on top.
func (r *Runner) With(opts ...Option) *Runner {
	cp := *r
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// RunSync runs commandLine without cancellation and blocks until it exits.
func (r *Runner) RunSync(commandLine string) Result {
	return r.Run(context.Background(), commandLine)
}

// Run executes commandLine and blocks until it exits or ctx ends. When ctx
// ends the child is killed; kill failures are ignored because the process may
// already be gone.
func (r *Runner) Run(ctx context.Context, commandLine string) Result {
	argv := r.shell.argv(commandLine)
	r.sink.Log(logsink.InfoLevel, fmt.Sprintf("> %s %s", r.shell.Path, commandLine))

	if err := r.shell.Check(commandLine); err != nil {
		r.sink.Log(logsink.ErrorLevel, "invalid command line", "command", commandLine, "error", err)
		return Result{ExitCode: -1, Err: fmt.Errorf("parsing command line: %w", err)}
	}
	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1, Err: ErrCancelled, Cancelled: true}
	}

	stdout := newLineWriter(r.sink, logsink.InfoLevel, "stdout")
	stderr := newLineWriter(r.sink, logsink.WarnLevel, "stderr")

	cmd := exec.CommandContext(ctx, r.shell.Path, argv...)
	cmd.Dir = r.dir
	if r.env != nil {
		cmd.Env = r.env
	}
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = r.waitDelay
	configureProcess(cmd)

	start := time.Now()
	err := cmd.Run()
	cancelled := err != nil && ctx.Err() != nil
	stdout.Flush()
	stderr.Flush()

	res := Result{Duration: time.Since(start)}

	// Only a cancel that interrupted the child counts. One arriving after
	// the exit status is known does not change the outcome.
	if cancelled {
		res.ExitCode = -1
		res.Cancelled = true
		res.Err = ErrCancelled
		r.sink.Log(logsink.WarnLevel, "command cancelled", "command", commandLine)
		return res
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			r.sink.Log(logsink.WarnLevel, fmt.Sprintf(" => exit code %d", res.ExitCode), "command", commandLine)
			return res
		}
		res.ExitCode = -1
		res.Err = err
		r.sink.Log(logsink.ErrorLevel, "error with command", "command", commandLine, "error", err)
		return res
	}

	return res
}

// Environ returns the parent environment with dirs prepended to PATH.
func Environ(dirs ...string) []string {
	env := os.Environ()
	if len(dirs) == 0 {
		return env
	}
	prefix := ""
	for _, d := range dirs {
		prefix += d + string(os.PathListSeparator)
	}
	for i, e := range env {
		if key, val, ok := cutEnv(e); ok && isPathKey(key) {
			env[i] = key + "=" + prefix + val
			return env
		}
	}
	return append(env, "PATH="+prefix[:len(prefix)-1])
}
