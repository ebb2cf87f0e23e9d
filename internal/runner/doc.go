// Package runner executes external command lines through the host shell.
// Every stdout and stderr line is forwarded to a logsink.Sink as it arrives,
// cancellation kills the child, and the outcome comes back as a Result value
// rather than an error: a non-zero exit or a launch failure is logged and
// reported, never raised.
package runner
