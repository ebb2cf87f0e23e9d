// Package logsink is the logging boundary of the installer core. Components
// receive a Sink at construction and write human-readable progress lines to
// it; they never print directly. A Broadcaster multicasts entries to any
// number of subscribers without ever blocking the emitter, and Charm renders
// entries through charmbracelet/log for the CLI.
package logsink
