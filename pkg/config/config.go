// Package config loads the optional upf.yaml project file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/logging"
)

// FileName is the project file looked up in a project directory.
const FileName = "upf.yaml"

// Defaults applied by Resolve.
const (
	DefaultVersion      = "v1.0.0"
	DefaultWidth        = 800
	DefaultHeight       = 600
	DefaultFrameSamples = 120
)

// Config represents the optional upf.yaml configuration.
type Config struct {
	// Version is the semantic version of the file format. Only v1 is
	// understood.
	Version     string            `yaml:"version,omitempty"`
	App         AppConfig         `yaml:"app"`
	Logging     LoggingConfig     `yaml:"logging"`
	Viewport    ViewportConfig    `yaml:"viewport"`
	Stylesheets []string          `yaml:"stylesheets,omitempty"`
	Content     ContentConfig     `yaml:"content"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
	// Layout is the content identifier of the root layout document.
	Layout string `yaml:"layout,omitempty"`
	// Theme is "light" or "dark" to load a built-in base stylesheet
	// before Stylesheets. Empty loads none.
	Theme string `yaml:"theme,omitempty"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level   string `yaml:"level,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// ViewportConfig is the initial presenter size.
type ViewportConfig struct {
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// ContentConfig locates content files.
type ContentConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// DiagnosticsConfig controls the frame trace and debug server.
type DiagnosticsConfig struct {
	// DebugServerPort enables the HTTP debug server when non-zero.
	DebugServerPort int `yaml:"debugServerPort,omitempty"`
	// FrameSamples is the frame trace capacity.
	FrameSamples int `yaml:"frameSamples,omitempty"`
}

// Resolved contains validated configuration with defaults applied and
// paths made absolute.
type Resolved struct {
	Root            string
	ModulePath      string
	Version         string
	AppName         string
	Layout          string
	Theme           string
	LogLevel        slog.Level
	Verbose         bool
	Viewport        layout.Size
	Stylesheets     []string
	ContentDir      string
	DebugServerPort int
	FrameSamples    int
}

// LoadOptional reads upf.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, configError(fmt.Errorf("failed to read %s: %w", FileName, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError(fmt.Errorf("failed to parse %s: %w", FileName, err))
	}
	return &cfg, nil
}

// Resolve loads upf.yaml (if present) from dir and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, configError(err)
	}
	cfg, err := LoadOptional(root)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(root)
}

// Resolve validates c and applies defaults. Relative paths are resolved
// against root.
func (c *Config) Resolve(root string) (*Resolved, error) {
	version, err := checkVersion(c.Version)
	if err != nil {
		return nil, configError(err)
	}

	modulePath := modulePath(root)
	appName := strings.TrimSpace(c.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, root)
	}

	level := logging.ParseLevel(c.Logging.Level)
	if c.Logging.Verbose {
		level = slog.LevelDebug
	}

	viewport := layout.Size{Width: c.Viewport.Width, Height: c.Viewport.Height}
	if viewport.Width == 0 {
		viewport.Width = DefaultWidth
	}
	if viewport.Height == 0 {
		viewport.Height = DefaultHeight
	}
	if viewport.Width < 0 || viewport.Height < 0 {
		return nil, configError(fmt.Errorf("viewport must be positive (got %vx%v)", viewport.Width, viewport.Height))
	}

	themeName := strings.ToLower(strings.TrimSpace(c.App.Theme))
	if themeName != "" && themeName != "light" && themeName != "dark" {
		return nil, configError(fmt.Errorf("app.theme must be light or dark (got %q)", c.App.Theme))
	}

	port := c.Diagnostics.DebugServerPort
	if port < 0 || port > 65535 {
		return nil, configError(fmt.Errorf("diagnostics.debugServerPort out of range (got %d)", port))
	}
	samples := c.Diagnostics.FrameSamples
	if samples == 0 {
		samples = DefaultFrameSamples
	}
	if samples < 0 {
		return nil, configError(fmt.Errorf("diagnostics.frameSamples must be positive (got %d)", samples))
	}

	sheets := make([]string, 0, len(c.Stylesheets))
	for _, s := range c.Stylesheets {
		if s = strings.TrimSpace(s); s != "" {
			sheets = append(sheets, abs(root, s))
		}
	}
	contentDir := strings.TrimSpace(c.Content.Dir)
	if contentDir == "" {
		contentDir = "."
	}

	return &Resolved{
		Root:            root,
		ModulePath:      modulePath,
		Version:         version,
		AppName:         appName,
		Layout:          strings.TrimSpace(c.App.Layout),
		Theme:           themeName,
		LogLevel:        level,
		Verbose:         c.Logging.Verbose,
		Viewport:        viewport,
		Stylesheets:     sheets,
		ContentDir:      abs(root, contentDir),
		DebugServerPort: port,
		FrameSamples:    samples,
	}, nil
}

// FindProjectRoot walks up from dir to the nearest directory holding
// upf.yaml or go.mod.
func FindProjectRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s or go.mod found", FileName)
		}
		dir = parent
	}
}

func checkVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultVersion, nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("version %q is not a semantic version", v)
	}
	if major := semver.Major(v); major != "v1" {
		return "", fmt.Errorf("unsupported %s version %s (want v1)", FileName, major)
	}
	return semver.Canonical(v), nil
}

// modulePath returns the module path from root's go.mod, or "".
func modulePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "upf_app"
	}
	return base
}

func abs(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

func configError(err error) error {
	return uverrors.New("config.Resolve", uverrors.KindConfig, err)
}
