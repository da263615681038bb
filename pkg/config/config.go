// Package config handles classvm.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file FindAndLoad looks for.
const FileName = "classvm.toml"

// Config represents a classvm.toml file.
type Config struct {
	VM  VM  `toml:"vm"`
	Log Log `toml:"log"`

	// Path is the file the configuration was read from, empty for
	// defaults (set at load time).
	Path string `toml:"-"`
}

// VM configures class loading and execution.
type VM struct {
	ClassPath    []string `toml:"classpath"`
	MaxFrames    int      `toml:"max_frames"`
	ArchiveCache int      `toml:"archive_cache"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		VM: VM{
			ClassPath:    []string{"."},
			MaxFrames:    1024,
			ArchiveCache: 256,
		},
		Log: Log{Level: "info"},
	}
}

// Load parses the configuration file at path. Keys the file omits keep
// their defaults. Relative class path entries are resolved against the
// file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	dir := filepath.Dir(c.Path)
	for i, elem := range c.VM.ClassPath {
		if !filepath.IsAbs(elem) {
			c.VM.ClassPath[i] = filepath.Join(dir, elem)
		}
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a classvm.toml file and
// loads it. Without one it returns the defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate reports settings no VM can run with.
func (c *Config) Validate() error {
	if c.VM.MaxFrames <= 0 {
		return fmt.Errorf("vm.max_frames must be positive, got %d", c.VM.MaxFrames)
	}
	if c.VM.ArchiveCache <= 0 {
		return fmt.Errorf("vm.archive_cache must be positive, got %d", c.VM.ArchiveCache)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// ClassPathList joins the class path with the OS list separator, the form
// vm.ParseClassPath takes.
func (c *Config) ClassPathList() string {
	return strings.Join(c.VM.ClassPath, string(os.PathListSeparator))
}
