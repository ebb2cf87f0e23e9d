// Package profile handles parsing, validation, and application of install
// profiles: YAML files that name a runtime source, an optional semver
// constraint on the runtime version, and the packages to layer on top.
// Profiles are validated against the embedded JSON schema before use.
package profile
