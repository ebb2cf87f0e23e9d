// Package source defines where a runtime archive comes from. A Source either
// downloads the archive (Remote) or copies it out of data bundled with the
// application (Bundled). Both short-circuit when the archive is already at
// the destination unless Force is set.
//
// Ref derives the metadata the installer needs from the archive file name:
// the distribution name (file name without extension, used as the default
// install directory) and the version tag that names the runtime's ._pth file.
package source
