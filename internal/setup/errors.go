package setup

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned synchronously for malformed input such as
	// an archive file name that does not start with a module name.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPackageManagerMissing is returned when the package manager entry point
	// is still absent after an install attempt.
	ErrPackageManagerMissing = errors.New("package manager is not installed")
	// ErrCommandFailed wraps a package manager or bootstrap command that
	// could not launch or exited non-zero.
	ErrCommandFailed = errors.New("command failed")
	// ErrExecutableMissing is reported when an extracted runtime archive does
	// not contain the layout's executable.
	ErrExecutableMissing = errors.New("runtime executable missing")
)

// Stage names one step of an install operation.
type Stage string

const (
	StageCheck   Stage = "check"
	StageFetch   Stage = "fetch"
	StageExtract Stage = "extract"
	StagePatch   Stage = "patch"
	StageCommand Stage = "command"
)

// StageError records which stage of an operation failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
