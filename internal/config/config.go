package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
)

// DefaultPath is the config file looked up when none is given on the command line.
const DefaultPath = "assetflow.yaml"

// Config represents the application configuration.
type Config struct {
	Layout    Layout       `yaml:"layout"`
	Filenames Filenames    `yaml:"filenames"`
	UseJQuery *bool        `yaml:"use_jquery,omitempty"`
	Server    ServerConfig `yaml:"server"`
	Styles    StylesConfig `yaml:"styles"`
	Images    ImagesConfig `yaml:"images"`
}

// Layout names the two roots and the subfolders mirrored under each of them.
type Layout struct {
	Dev     string `yaml:"dev"`
	Dist    string `yaml:"dist"`
	Styles  string `yaml:"styles"`
	Sass    string `yaml:"sass"`
	Images  string `yaml:"images"`
	Fonts   string `yaml:"fonts"`
	Scripts string `yaml:"scripts"`
	Libs    string `yaml:"libs"`
	JQuery  string `yaml:"jquery"`
}

// Filenames holds the fixed file names the tasks produce or single out.
type Filenames struct {
	JQuery string `yaml:"jquery"`
	// Bundle is the concatenated script name without extension.
	Bundle string `yaml:"bundle"`
}

// ServerConfig configures the dev server started by the watch stage.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Debounce string `yaml:"debounce"`
}

// StylesConfig configures Sass compilation and CSS post-processing.
type StylesConfig struct {
	// Targets are browser targets for vendor prefixing, e.g. "chrome58".
	Targets []string `yaml:"targets"`
	// DartSass is the path to the Dart Sass binary. Empty means "sass" on PATH.
	DartSass string `yaml:"dart_sass,omitempty"`
}

// ImagesConfig configures image optimization.
type ImagesConfig struct {
	// Cache is the SQLite file backing the compression cache. "off" disables it.
	Cache       string `yaml:"cache"`
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// JQueryEnabled reports whether the third-party script bundle is copied to dist.
func (c *Config) JQueryEnabled() bool {
	return c.UseJQuery == nil || *c.UseJQuery
}

// DebounceDuration parses Server.Debounce; it is validated on load.
func (s ServerConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(s.Debounce)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// Addr returns the host:port the dev server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	if err := applyDefaults(cfg); err != nil {
		panic(err) // appliers never fail on an empty config
	}
	return cfg
}

// Load reads, defaults and validates the configuration at configPath.
// Environment variables are not expanded.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read config file").
			Fatal().WithContext("path", configPath).Build()
	}
	return parse(data, configPath)
}

// LoadOrDefault behaves like Load but returns the defaults when the file does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(configPath)
}

func parse(data []byte, source string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "unmarshal config").
			Fatal().WithContext("path", source).Build()
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes a configuration file containing the defaults.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "marshal config").Fatal().Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write config file").
			WithContext("path", configPath).Build()
	}
	return nil
}
