// Package config handles stackvm.toml configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/stackvm/vm"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "stackvm.toml"

// Config represents a stackvm.toml file.
type Config struct {
	VM     VMConfig     `toml:"vm"`
	Log    LogConfig    `toml:"log"`
	Output OutputConfig `toml:"output"`

	// Path is the file the configuration was read from (set at load time).
	Path string `toml:"-"`
}

// VMConfig configures the interpreter.
type VMConfig struct {
	MaxSteps int  `toml:"max-steps"`
	Trace    bool `toml:"trace"`
}

// LogConfig configures the commonlog backend.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// OutputConfig controls what the CLI prints after a run.
type OutputConfig struct {
	ShowStack   bool `toml:"show-stack"`
	ShowGlobals bool `toml:"show-globals"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		VM:     VMConfig{MaxSteps: vm.DefaultMaxSteps},
		Output: OutputConfig{ShowStack: true, ShowGlobals: true},
	}
}

// Load parses the stackvm.toml file in dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path. Keys missing from the
// file keep their Default values; unknown keys are an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("config: parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot resolve path %s: %w", path, err)
	}

	// Defaults
	if c.VM.MaxSteps <= 0 {
		c.VM.MaxSteps = vm.DefaultMaxSteps
	}

	return c, nil
}

// FindAndLoad walks up from startDir to find a stackvm.toml file, then
// loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// VMOptions converts the [vm] table into interpreter options writing to out.
func (c *Config) VMOptions(out io.Writer) vm.Options {
	return vm.Options{
		Output:   out,
		MaxSteps: c.VM.MaxSteps,
		Trace:    c.VM.Trace,
	}
}

// LogPath returns the log file for commonlog.Configure, or nil for stderr.
func (c *Config) LogPath() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	if c.Path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(c.Path), path)
	}
	return &path
}
