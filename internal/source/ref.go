package source

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/pyembed-labs/pyembed/internal/archive"
)

var (
	versionTagPattern = regexp.MustCompile(`(?i)python-(\d)\.(\d+)`)
	versionPattern    = regexp.MustCompile(`-(\d+\.\d+(?:\.\d+)?)`)
)

// Ref identifies one installable runtime distribution. It is derived from
// the archive file name and never persisted.
type Ref struct {
	// ArchiveFileName is the base name of the archive, e.g. "python-3.7.3-embed-amd64.zip".
	ArchiveFileName string
	// DistributionName is ArchiveFileName without its extension.
	DistributionName string

	versionTag string
	hasTag     bool
}

// NewRef builds a Ref from an archive file name.
func NewRef(archiveFileName string) Ref {
	dist := archive.TrimExt(archiveFileName)
	tag, ok := ParseVersionTag(dist)
	return Ref{
		ArchiveFileName:  archiveFileName,
		DistributionName: dist,
		versionTag:       tag,
		hasTag:           ok,
	}
}

// VersionTag returns the short version tag, e.g. "python37". ok is false when
// the distribution name does not carry a recognizable version.
func (r Ref) VersionTag() (tag string, ok bool) {
	return r.versionTag, r.hasTag
}

// RuntimeVersion parses the full version out of the distribution name,
// e.g. 3.7.3 from "python-3.7.3-embed-amd64".
func (r Ref) RuntimeVersion() (*semver.Version, bool) {
	m := versionPattern.FindStringSubmatch(r.DistributionName)
	if m == nil {
		return nil, false
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, false
	}
	return v, true
}

// ParseVersionTag matches "python-MAJOR.MINOR" in a distribution name and
// returns "python" followed by the major and minor digits.
func ParseVersionTag(distributionName string) (string, bool) {
	m := versionTagPattern.FindStringSubmatch(distributionName)
	if m == nil {
		return "", false
	}
	return "python" + m[1] + m[2], true
}

// PthFileName returns the path-configuration file name for a version tag.
func PthFileName(tag string) string {
	return strings.ToLower(tag) + "._pth"
}
