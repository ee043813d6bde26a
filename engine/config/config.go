// Package config loads the engine configuration. Values are layered: built-in defaults, then the YAML
// config file, then a .env file, then OXY_* environment variables. Keys are dotted (window.width) and map to
// environment variables by upper-casing and replacing dots with underscores (OXY_WINDOW_WIDTH).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "OXY"

// Default file locations, relative to the working directory.
const (
	DefaultConfigFile = "oxy.yaml"
	DefaultEnvFile    = ".env"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("config: invalid value")

// ErrConfigFile is returned when a config or env file exists but cannot be read.
var ErrConfigFile = errors.New("config: cannot read file")

// Config is the complete engine configuration.
type Config struct {
	Window   WindowConfig   `mapstructure:"window"`
	Renderer RendererConfig `mapstructure:"renderer"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Camera   CameraConfig   `mapstructure:"camera"`
	World    WorldConfig    `mapstructure:"world"`
	Log      LogConfig      `mapstructure:"log"`
}

// WindowConfig sizes and titles the platform window. Width and height are the requested framebuffer size
// in pixels; the window may come up larger on high-DPI displays.
type WindowConfig struct {
	Title  string `mapstructure:"title"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// RendererConfig selects the GPU backend and bounds the per-frame instance buffers. Backend is parsed by
// renderer.ParseBackendType and VSync selects renderer.PresentModeVSync over PresentModeUncapped.
type RendererConfig struct {
	Backend      string `mapstructure:"backend"`
	VSync        bool   `mapstructure:"vsync"`
	MaxInstances int    `mapstructure:"max_instances"`
	// ForceSoftware selects the fallback adapter, for machines without a GPU.
	ForceSoftware bool `mapstructure:"force_software"`
}

// EngineConfig sets the fixed update rate in ticks per second and whether frame timings are logged.
type EngineConfig struct {
	TickRate  float64 `mapstructure:"tick_rate"`
	Profiling bool    `mapstructure:"profiling"`
}

// CameraConfig tunes keyboard panning.
type CameraConfig struct {
	// PanSpeed is in world pixels per second.
	PanSpeed float32 `mapstructure:"pan_speed"`
}

// WorldConfig chooses the world shown at startup.
type WorldConfig struct {
	// Path is a JSON map file. Empty loads the demo world.
	Path string `mapstructure:"path"`
}

// LogConfig sets the logrus level and, when File is set, lumberjack rotation for the log file. Sizes are
// in megabytes and ages in days; zero keeps lumberjack's default.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

var defaults = map[string]any{
	"window.title":            "oxy-tiles",
	"window.width":            1280,
	"window.height":           720,
	"renderer.backend":        "wgpu",
	"renderer.vsync":          true,
	"renderer.max_instances":  4096,
	"renderer.force_software": false,
	"engine.tick_rate":        60.0,
	"engine.profiling":        false,
	"camera.pan_speed":        256.0,
	"world.path":              "",
	"log.level":               "info",
	"log.file":                "",
	"log.max_size_mb":         10,
	"log.max_backups":         3,
	"log.max_age_days":        7,
}

type loader struct {
	configFile string
	envFile    string
	required   bool
}

// LoadOption is a functional option for Load.
type LoadOption func(*loader)

// WithConfigFile reads the given YAML file instead of the default. The file must exist.
func WithConfigFile(path string) LoadOption {
	return func(l *loader) {
		l.configFile = path
		l.required = true
	}
}

// WithEnvFile reads the given dotenv file instead of .env. A missing file is ignored.
func WithEnvFile(path string) LoadOption {
	return func(l *loader) {
		l.envFile = path
	}
}

// Load builds the configuration from defaults, the config file, the env file and the environment.
//
// The config file is OXY_CONFIG when set, otherwise oxy.yaml; a missing default file is not an error. The
// env file never overrides variables already present in the environment.
//
// Parameters:
//   - options: functional options overriding file locations
//
// Returns:
//   - Config: the merged configuration
//   - error: ErrConfigFile or ErrInvalidConfig wrapping the cause
func Load(options ...LoadOption) (Config, error) {
	l := &loader{envFile: DefaultEnvFile}
	for _, opt := range options {
		opt(l)
	}

	if err := loadEnvFile(l.envFile); err != nil {
		return Config{}, err
	}
	if l.configFile == "" {
		if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
			l.configFile, l.required = path, true
		} else {
			l.configFile = DefaultConfigFile
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(l.configFile); err == nil {
		v.SetConfigFile(l.configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrConfigFile, l.configFile, err)
		}
	} else if l.required || !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrConfigFile, l.configFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConfigFile, path, err)
	}
	return nil
}

// Validate checks that every numeric value is usable.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Renderer.MaxInstances <= 0:
		return fmt.Errorf("%w: renderer.max_instances %d", ErrInvalidConfig, c.Renderer.MaxInstances)
	case c.Engine.TickRate <= 0:
		return fmt.Errorf("%w: engine.tick_rate %v", ErrInvalidConfig, c.Engine.TickRate)
	case c.Camera.PanSpeed < 0:
		return fmt.Errorf("%w: camera.pan_speed %v", ErrInvalidConfig, c.Camera.PanSpeed)
	case c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0:
		return fmt.Errorf("%w: negative log rotation setting", ErrInvalidConfig)
	}
	return nil
}
