// Package cli implements the pyembed command tree. Every command loads the
// user configuration, subscribes a terminal renderer to the installer's log
// stream for its own duration, and drives one setup.Installer.
package cli
