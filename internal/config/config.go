package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/pyembed-labs/pyembed/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys lists every setting the config file accepts.
var Keys = []string{
	"install_path",
	"directory_name",
	"source.kind",
	"source.url",
	"source.bundle",
	"source.resource",
	"source.fetcher",
	"force",
	"layout.executable",
	"layout.package_manager",
	"bootstrap_url",
	"patch_mode",
	"log_level",
}

// Dir returns the config directory: $PYEMBED_HOME when set, else ~/.pyembed.
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("HOME")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// ensureDir creates dir if it does not exist.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// DefaultInstallPath is the per-user application data directory the runtime
// is installed under when install_path is not set.
func DefaultInstallPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, branding.CLIName())
	}
	return filepath.Join(Dir(), "runtimes")
}

// Store is a loaded configuration.
type Store struct {
	v    *viper.Viper
	path string
}

// Load reads the config file at FilePath.
func Load() (*Store, error) {
	return LoadFile(FilePath())
}

// LoadFile reads the config file at path. A missing file is not an error.
func LoadFile(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return &Store{v: v, path: path}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("install_path", DefaultInstallPath())
	v.SetDefault("directory_name", "")
	v.SetDefault("source.kind", "remote")
	v.SetDefault("source.url", branding.DefaultRuntimeURL())
	v.SetDefault("source.bundle", "")
	v.SetDefault("source.resource", "")
	v.SetDefault("source.fetcher", "http")
	v.SetDefault("force", false)
	v.SetDefault("layout.executable", "")
	v.SetDefault("layout.package_manager", "")
	v.SetDefault("bootstrap_url", branding.BootstrapURL())
	v.SetDefault("patch_mode", "rewrite")
	v.SetDefault("log_level", "info")
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Viper exposes the underlying instance so commands can bind flags.
func (s *Store) Viper() *viper.Viper { return s.v }

// Path returns the config file path.
func (s *Store) Path() string { return s.path }

// Get returns a config value by key. Returns empty string if not set.
func (s *Store) Get(key string) string {
	return s.v.GetString(key)
}

// Set writes a key-value pair to the config file. Only the file's own
// contents are written back, never defaults or environment overrides.
func (s *Store) Set(key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	if err := ensureDir(filepath.Dir(s.path)); err != nil {
		return err
	}

	file := viper.New()
	file.SetConfigFile(s.path)
	file.SetConfigType(fileType)
	if err := file.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("reading config file %s: %w", s.path, err)
	}
	file.Set(key, value)
	if err := file.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	s.v.Set(key, value)
	return nil
}
