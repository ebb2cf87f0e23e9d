package setup

import (
	"errors"

	"github.com/pyembed-labs/pyembed/internal/archive"
)

// State is a position in the runtime setup state machine.
type State int

const (
	Unconfigured State = iota
	Checking
	Fetching
	Extracting
	Patching
	Ready
	Failed
)

var stateNames = [...]string{
	Unconfigured: "unconfigured",
	Checking:     "checking",
	Fetching:     "fetching",
	Extracting:   "extracting",
	Patching:     "patching",
	Ready:        "ready",
	Failed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Report is the outcome of one SetupRuntime call.
type Report struct {
	// State is Ready or Failed.
	State State
	// Skipped is true when the runtime was already installed and nothing ran.
	Skipped bool
	// ArchivePath is where the source placed the archive.
	ArchivePath string
	// Extracted summarizes the unpacked files.
	Extracted archive.Stats
	// Err is a *StageError when State is Failed.
	Err error
	// PatchErr is a non-fatal failure to patch the path configuration file.
	// The runtime is still considered installed.
	PatchErr error
	// PatchSkipped is true when the version tag was unknown.
	PatchSkipped bool
}

// OK reports whether the runtime ended Ready.
func (r *Report) OK() bool {
	return r.State == Ready
}

// FailedStage returns the stage that failed, or "" when none did.
func (r *Report) FailedStage() Stage {
	var se *StageError
	if errors.As(r.Err, &se) {
		return se.Stage
	}
	return ""
}

// Outcome is the result of one package operation.
type Outcome struct {
	// Module is the package name the operation targeted.
	Module string
	// Skipped is true when the package was already installed.
	Skipped bool
	// Err is a *StageError when a step failed.
	Err error
	// PatchErr is a non-fatal failure to reference the library directory.
	PatchErr error
}

// OK reports whether the operation completed without a stage failure.
func (o Outcome) OK() bool {
	return o.Err == nil
}
