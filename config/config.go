// ABOUTME: Typed flowviz.yaml configuration with defaults, strict parsing, and validation.
// ABOUTME: Precedence is defaults < file < flags; flags are overlaid by the CLI after Load.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up at the project root.
const DefaultFile = "flowviz.yaml"

// Duration wraps time.Duration so YAML values can be written as "250ms".
type Duration time.Duration

// UnmarshalYAML parses a duration string like "250ms" or "2s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back in time.Duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Server configures the static dev server.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Root string `yaml:"root"`
}

// Addr returns the host:port listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Watch configures the source file watcher.
type Watch struct {
	Paths      []string `yaml:"paths"`
	Extensions []string `yaml:"extensions"`
	Debounce   Duration `yaml:"debounce"`
	Ignore     []string `yaml:"ignore"`
}

// Build configures the bundler invocation.
type Build struct {
	Bundler   string            `yaml:"bundler"`
	Entry     string            `yaml:"entry"`
	Outfile   string            `yaml:"outfile"`
	Sourcemap bool              `yaml:"sourcemap"`
	Minify    bool              `yaml:"minify"`
	Define    map[string]string `yaml:"define"`
}

// Data locates the analyzer's visualization data directory.
type Data struct {
	Dir string `yaml:"dir"`
}

// History configures the build history store.
type History struct {
	File string `yaml:"file"`
	Keep int    `yaml:"keep"`
}

// Config is the full flowviz configuration.
type Config struct {
	Server  Server  `yaml:"server"`
	Watch   Watch   `yaml:"watch"`
	Build   Build   `yaml:"build"`
	Data    Data    `yaml:"data"`
	History History `yaml:"history"`
}

// Default returns the configuration used when no flowviz.yaml exists.
// Development mode throughout: sourcemaps on, minification off.
func Default() *Config {
	return &Config{
		Server: Server{
			Host: "127.0.0.1",
			Port: 8080,
			Root: ".",
		},
		Watch: Watch{
			Paths:      []string{"src"},
			Extensions: []string{".tsx"},
			Debounce:   Duration(250 * time.Millisecond),
			Ignore:     []string{"node_modules", "dist", ".git"},
		},
		Build: Build{
			Bundler:   "esbuild",
			Entry:     "src/index.tsx",
			Outfile:   "dist/bundle.js",
			Sourcemap: true,
			Minify:    false,
		},
		Data: Data{
			Dir: "data",
		},
		History: History{
			File: filepath.Join(".flowviz", "builds.db"),
			Keep: 200,
		},
	}
}

// Load reads a flowviz.yaml and overlays it on the defaults. Unknown keys are
// errors so typos fail loudly instead of being silently ignored.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the given path, or DefaultFile when path is empty. A
// missing file is not an error: the defaults are returned.
func LoadOrDefault(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}

	cfg, err := Load(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// decode parses YAML from r on top of the defaults with strict field checking.
func decode(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil // empty file means all defaults
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the toolchain cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Root == "" {
		return errors.New("server.root must not be empty")
	}
	if len(c.Watch.Paths) == 0 {
		return errors.New("watch.paths must list at least one directory")
	}
	if len(c.Watch.Extensions) == 0 {
		return errors.New("watch.extensions must list at least one extension")
	}
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("watch extension %q must start with a dot", ext)
		}
	}
	if c.Watch.Debounce.Std() <= 0 {
		return errors.New("watch.debounce must be positive")
	}
	if c.Build.Bundler == "" {
		return errors.New("build.bundler must not be empty")
	}
	if c.Build.Entry == "" {
		return errors.New("build.entry must not be empty")
	}
	if c.Build.Outfile == "" {
		return errors.New("build.outfile must not be empty")
	}
	if c.Data.Dir == "" {
		return errors.New("data.dir must not be empty")
	}
	if filepath.IsAbs(c.Data.Dir) {
		return fmt.Errorf("data.dir %q must be relative to the project root", c.Data.Dir)
	}
	if c.History.Keep < 0 {
		return fmt.Errorf("history.keep must not be negative, got %d", c.History.Keep)
	}
	return nil
}
