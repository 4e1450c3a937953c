// Package config loads keel.toml project files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"gopkg.keel-lang.org/keelc/internal/exc"
)

// Version is the version of the compiler checked against project.keel.
const Version = "0.1.0"

// FileName is the project file looked up when no path is given.
const FileName = "keel.toml"

// Config holds the complete project configuration
type Config struct {
	Project ProjectConfig `toml:"project"`
	Build   BuildConfig   `toml:"build"`
	Log     LogConfig     `toml:"log"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// ProjectConfig names the project and the compiler versions it accepts
type ProjectConfig struct {
	Name string `toml:"name"`
	Keel string `toml:"keel"`
}

// BuildConfig holds search roots and parser settings
type BuildConfig struct {
	Roots          []string `toml:"roots"`
	MaxConcurrency int      `toml:"max_concurrency"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"`
	Trace bool   `toml:"trace"`
}

// Load reads the configuration at path. A missing file yields the defaults
// for the directory the file would have been in.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := &Config{}
		cfg.applyDefaults(filepath.Dir(path))
		return cfg, nil
	}
	if err != nil {
		return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeInvalidConfig, err)
	}
	return Decode(string(data), path)
}

// Decode parses the content of the configuration file at path. Relative roots
// are resolved against the directory of path.
func Decode(data string, path string) (*Config, error) {
	cfg := &Config{Path: path}
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, invalid(path, "failed to parse config: %s", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, invalid(path, "unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults(dir string) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}
	if c.Project.Name == "" {
		c.Project.Name = filepath.Base(absDir)
	}
	if len(c.Build.Roots) == 0 {
		c.Build.Roots = []string{"."}
	}
	for offset, root := range c.Build.Roots {
		root = os.ExpandEnv(root)
		if !filepath.IsAbs(root) {
			root = filepath.Join(absDir, root)
		}
		c.Build.Roots[offset] = root
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) validate() error {
	if c.Build.MaxConcurrency < 0 {
		return invalid(c.Path, "build.max_concurrency must not be negative, got %d", c.Build.MaxConcurrency)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return invalid(c.Path, "%s", err)
	}
	return CheckVersion(c.Project.Keel, Version, c.Path)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.Log.Level)
	return level
}

// ParseLevel converts one of debug, info, warn or error into a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// CheckVersion reports whether version satisfies the constraint. An empty
// constraint admits every version.
func CheckVersion(constraint string, version string, path string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return invalid(path, "invalid keel version constraint %q: %s", constraint, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return invalid(path, "invalid compiler version %q: %s", version, err)
	}
	if ok, errs := c.Validate(v); !ok {
		reasons := make([]string, 0, len(errs))
		for _, e := range errs {
			reasons = append(reasons, e.Error())
		}
		return invalid(path, "compiler version %s does not satisfy %q: %s", version, constraint, strings.Join(reasons, "; "))
	}
	return nil
}

func invalid(path string, format string, args ...any) error {
	return exc.New(exc.Location{URI: path}, exc.CodeInvalidConfig, fmt.Sprintf(format, args...))
}
