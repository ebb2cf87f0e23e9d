// Package config manages user-level settings stored at ~/.pyembed/config.yaml
// (or $PYEMBED_HOME/config.yaml). Values resolve flag > PYEMBED_* environment
// variable > file > default, and are turned into an immutable setup.Config
// for each command.
package config
