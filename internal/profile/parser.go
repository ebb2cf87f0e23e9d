package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.yaml.in/yaml/v3"
)

// ErrVersionMismatch is returned when the runtime version does not satisfy
// the profile's requires constraint.
var ErrVersionMismatch = errors.New("runtime version does not satisfy profile")

// InvalidError reports schema or semantic problems in a profile.
type InvalidError struct {
	Path   string
	Issues []ValidationIssue
}

func (e *InvalidError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("invalid profile %s: %s", e.Path, strings.Join(parts, "; "))
}

// Load validates and parses the profile at path. Relative archive and bundle
// paths are resolved against the profile's directory.
func Load(path string) (*Profile, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	issues, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("validating profile %s: %w", path, err)
	}
	if len(issues) > 0 {
		return nil, &InvalidError{Path: path, Issues: issues}
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if issues = p.check(); len(issues) > 0 {
		return nil, &InvalidError{Path: path, Issues: issues}
	}
	p.resolvePaths(filepath.Dir(path))
	return p, nil
}

// Parse unmarshals profile YAML without schema validation.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// check reports problems the schema cannot express.
func (p *Profile) check() []ValidationIssue {
	var issues []ValidationIssue
	if p.Runtime.Requires != "" {
		if _, err := semver.NewConstraint(p.Runtime.Requires); err != nil {
			issues = append(issues, ValidationIssue{Path: "/runtime/requires", Message: err.Error(), Keyword: "semver"})
		}
	}
	if p.Runtime.Resource != "" && p.Bundle == "" {
		issues = append(issues, ValidationIssue{Path: "/runtime/resource", Message: "a bundled runtime needs a bundle directory", Keyword: "bundle"})
	}
	for i, pkg := range p.Packages {
		if pkg.Kind() == "bundled" && p.Bundle == "" {
			issues = append(issues, ValidationIssue{
				Path:    fmt.Sprintf("/packages/%d/bundled", i),
				Message: "a bundled package needs a bundle directory",
				Keyword: "bundle",
			})
		}
		if pkg.ViaManager && pkg.Kind() != "bundled" {
			issues = append(issues, ValidationIssue{
				Path:    fmt.Sprintf("/packages/%d/via_manager", i),
				Message: "via_manager applies only to bundled packages",
				Keyword: "via_manager",
			})
		}
	}
	return issues
}

func (p *Profile) resolvePaths(dir string) {
	abs := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(dir, path)
	}
	p.Bundle = abs(p.Bundle)
	for i := range p.Packages {
		p.Packages[i].Archive = abs(p.Packages[i].Archive)
	}
}

// CheckRuntime reports whether version satisfies the requires constraint.
// ok false means the version could not be determined, which only matters when
// a constraint is set.
func (p *Profile) CheckRuntime(version *semver.Version, ok bool) error {
	if p.Runtime.Requires == "" {
		return nil
	}
	c, err := semver.NewConstraint(p.Runtime.Requires)
	if err != nil {
		return fmt.Errorf("parsing constraint %q: %w", p.Runtime.Requires, err)
	}
	if !ok || version == nil {
		return fmt.Errorf("%w: runtime version unknown, requires %s", ErrVersionMismatch, p.Runtime.Requires)
	}
	if !c.Check(version) {
		return fmt.Errorf("%w: %s does not match %s", ErrVersionMismatch, version, p.Runtime.Requires)
	}
	return nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
